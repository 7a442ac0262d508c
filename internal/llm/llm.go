package llm

import (
	"context"
	"errors"
)

// Client abstracts the hosted text-generation service. It is constructed once
// at process start from configuration and injected; nothing reads it from
// ambient global state.
type Client interface {
	GenerateContent(ctx context.Context, req GenerateRequest) (string, error)
}

// GenerateRequest captures a single generation call.
type GenerateRequest struct {
	SystemInstruction string
	Prompt            string
	Temperature       float32
	MaxOutputTokens   int
	JSONOnly          bool
}

// Typed failures from the generation service. The structured client must
// distinguish these from ordinary parse failures.
var (
	ErrNotConfigured    = errors.New("generation client not configured")
	ErrUnauthorized     = errors.New("generation service rejected credentials")
	ErrQuotaExceeded    = errors.New("generation service quota exceeded")
	ErrModelUnavailable = errors.New("generation model unavailable")
)

// NotConfiguredClient short-circuits every call without touching the network.
// It is installed when no API key is present.
type NotConfiguredClient struct{}

// GenerateContent returns ErrNotConfigured.
func (NotConfiguredClient) GenerateContent(ctx context.Context, req GenerateRequest) (string, error) {
	_ = ctx
	_ = req
	return "", ErrNotConfigured
}
