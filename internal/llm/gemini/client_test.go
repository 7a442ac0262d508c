package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/scooter7/BrioCurriculum/internal/llm"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient("test-key", "gemini-1.5-flash-latest")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client.WithBaseURL(server.URL), server
}

func TestGenerateContentReturnsCandidateText(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.GenerationConfig.ResponseMimeType != "application/json" {
			t.Errorf("expected json response mime type, got %q", req.GenerationConfig.ResponseMimeType)
		}
		if req.SystemInstruction == nil {
			t.Errorf("expected system instruction")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"ok\":true}"}]}}]}`))
	})

	got, err := client.GenerateContent(context.Background(), llm.GenerateRequest{
		SystemInstruction: "Respond only with JSON.",
		Prompt:            "assess",
		JSONOnly:          true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"ok":true}` {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestGenerateContentStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{name: "unauthorized", status: http.StatusForbidden, want: llm.ErrUnauthorized},
		{name: "quota", status: http.StatusTooManyRequests, want: llm.ErrQuotaExceeded},
		{name: "model missing", status: http.StatusNotFound, want: llm.ErrModelUnavailable},
		{name: "server error", status: http.StatusBadGateway, want: llm.ErrModelUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"error":{"message":"nope"}}`))
			})
			_, err := client.GenerateContent(context.Background(), llm.GenerateRequest{Prompt: "p"})
			if !errors.Is(err, tt.want) {
				t.Fatalf("status %d: expected %v, got %v", tt.status, tt.want, err)
			}
		})
	}
}

func TestGenerateContentEmptyCandidates(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	})
	if _, err := client.GenerateContent(context.Background(), llm.GenerateRequest{Prompt: "p"}); err == nil {
		t.Fatalf("expected error for missing candidates")
	}
}

func TestNewClientRequiresConfig(t *testing.T) {
	if _, err := NewClient("", "model"); err == nil {
		t.Fatalf("expected error for missing api key")
	}
	if _, err := NewClient("key", " "); err == nil {
		t.Fatalf("expected error for missing model")
	}
}
