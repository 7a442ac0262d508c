package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/scooter7/BrioCurriculum/internal/shared/telemetry"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 500 * time.Millisecond
)

// InvalidOutputError reports that every attempt produced unparsable output.
// Raw holds the last response text for diagnostics; it is logged, never shown
// to end users.
type InvalidOutputError struct {
	Attempts int
	Raw      string
	Err      error
}

func (e *InvalidOutputError) Error() string {
	return fmt.Sprintf("no valid JSON object after %d attempts: %v", e.Attempts, e.Err)
}

func (e *InvalidOutputError) Unwrap() error { return e.Err }

// StructuredClient drives a generation call that must yield a single JSON
// object. Parse failures retry the entire call with a growing delay; typed
// service failures surface immediately. The client is stateless between calls.
type StructuredClient struct {
	Base        Client
	MaxAttempts int
	BaseDelay   time.Duration
}

// Complete sends the prompt and parses the reply into a JSON object. topKey,
// when non-empty, must be present as a top-level key; schema, when non-nil, is
// validated against the parsed object. Either mismatch counts as a parse
// failure for retry purposes.
func (s StructuredClient) Complete(ctx context.Context, req GenerateRequest, topKey string, schema map[string]any) (map[string]any, error) {
	if s.Base == nil {
		return nil, ErrNotConfigured
	}

	maxAttempts := s.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	baseDelay := s.BaseDelay
	if baseDelay <= 0 {
		baseDelay = defaultBaseDelay
	}

	var lastRaw string
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		raw, err := s.Base.GenerateContent(ctx, req)
		if err != nil {
			if isServiceError(err) {
				return nil, err
			}
			lastErr = err
			lastRaw = ""
		} else {
			lastRaw = raw
			obj, parseErr := parseJSONObject(raw)
			if parseErr == nil {
				if topKey != "" {
					if _, ok := obj[topKey]; !ok {
						parseErr = fmt.Errorf("missing top-level key %q", topKey)
					}
				}
			}
			if parseErr == nil && schema != nil {
				parseErr = validateSchema(schema, obj)
			}
			if parseErr == nil {
				return obj, nil
			}
			lastErr = parseErr
			telemetry.Error("llm.parse_failed", map[string]any{
				"attempt":    attempt,
				"error":      parseErr.Error(),
				"raw_length": len(raw),
			})
		}

		if attempt == maxAttempts {
			break
		}
		select {
		case <-time.After(baseDelay * time.Duration(attempt)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	invalid := &InvalidOutputError{Attempts: maxAttempts, Raw: lastRaw, Err: lastErr}
	telemetry.Error("llm.invalid_output", map[string]any{
		"attempts": maxAttempts,
		"error":    invalid.Error(),
		"raw":      truncate(lastRaw, 2000),
	})
	return nil, invalid
}

func isServiceError(err error) bool {
	return errors.Is(err, ErrNotConfigured) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrQuotaExceeded) ||
		errors.Is(err, ErrModelUnavailable)
}

// parseJSONObject tries, in order: a direct parse of the trimmed text, the
// interior of a fenced code block, and the substring between the first '{'
// and last '}'. The first strategy that parses wins.
func parseJSONObject(raw string) (map[string]any, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, errors.New("empty response")
	}

	if obj, err := tryParse(trimmed); err == nil {
		return obj, nil
	}

	if inner, ok := stripFence(trimmed); ok {
		if obj, err := tryParse(inner); err == nil {
			return obj, nil
		}
	} else {
		start := strings.Index(trimmed, "{")
		end := strings.LastIndex(trimmed, "}")
		if start >= 0 && end > start {
			if obj, err := tryParse(trimmed[start : end+1]); err == nil {
				return obj, nil
			}
		}
	}

	return nil, errors.New("response is not a JSON object")
}

func tryParse(text string) (map[string]any, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errors.New("JSON null")
	}
	return obj, nil
}

func stripFence(text string) (string, bool) {
	if !strings.HasPrefix(text, "```") {
		return "", false
	}
	body := strings.TrimPrefix(text, "```")
	if idx := strings.Index(body, "\n"); idx >= 0 {
		// drop the language tag line, e.g. ```json
		body = body[idx+1:]
	}
	end := strings.LastIndex(body, "```")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(body[:end]), true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
