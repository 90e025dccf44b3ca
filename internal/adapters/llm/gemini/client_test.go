package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/randomtoy/faas-go/internal/domain"
	"github.com/randomtoy/faas-go/internal/ports"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func successBody(text string) string {
	return `{"candidates":[{"content":{"parts":[{"text":` + mustJSON(text) + `}]}}]}`
}

func mustJSON(s string) string {
	raw, _ := json.Marshal(s)
	return string(raw)
}

func TestGenerate_Success(t *testing.T) {
	var captured generateBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/v1beta/models/test-model:generateContent" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("missing api key in query")
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &captured)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(successBody(`{"result":"ok"}`)))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), "test-key", srv.URL, testLogger())
	text, err := c.Generate(context.Background(), ports.GenerateRequest{
		Model:          "test-model",
		Prompt:         "hello",
		Schema:         &ports.Schema{Type: ports.TypeObject},
		ThinkingBudget: 2000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != `{"result":"ok"}` {
		t.Errorf("unexpected text: %s", text)
	}

	if captured.GenerationConfig == nil {
		t.Fatal("generationConfig not sent")
	}
	if captured.GenerationConfig.ResponseMimeType != "application/json" {
		t.Errorf("unexpected mime type: %s", captured.GenerationConfig.ResponseMimeType)
	}
	if captured.GenerationConfig.ResponseSchema == nil {
		t.Error("responseSchema not sent")
	}
	if captured.GenerationConfig.ThinkingConfig == nil || captured.GenerationConfig.ThinkingConfig.ThinkingBudget != 2000 {
		t.Error("thinkingConfig not sent")
	}
}

func TestGenerate_MultiPartCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"foo"},{"text":"bar"}]}}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), "test-key", srv.URL, testLogger())
	text, err := c.Generate(context.Background(), ports.GenerateRequest{Model: "m", Prompt: "p"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "foobar" {
		t.Errorf("expected joined parts, got %s", text)
	}
}

func TestGenerate_MissingKey(t *testing.T) {
	c := NewClient(http.DefaultClient, "", "http://unused", testLogger())

	_, err := c.Generate(context.Background(), ports.GenerateRequest{Model: "m", Prompt: "p"})
	if !errors.Is(err, domain.ErrMissingCredential) {
		t.Errorf("expected ErrMissingCredential, got %v", err)
	}
}

func TestGenerate_MissingModel(t *testing.T) {
	c := NewClient(http.DefaultClient, "key", "http://unused", testLogger())

	_, err := c.Generate(context.Background(), ports.GenerateRequest{Prompt: "p"})
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestGenerate_StatusClassification(t *testing.T) {
	cases := []struct {
		status int
		body   string
		want   error
	}{
		{http.StatusUnauthorized, `{}`, domain.ErrMissingCredential},
		{http.StatusForbidden, `{}`, domain.ErrMissingCredential},
		{http.StatusInternalServerError, `{"error":{"message":"API_KEY_INVALID","status":"INVALID_ARGUMENT"}}`, domain.ErrMissingCredential},
		{http.StatusBadRequest, `{"error":{"message":"bad schema"}}`, domain.ErrInvalidRequest},
		{http.StatusInternalServerError, `{}`, domain.ErrUpstreamUnavailable},
		{http.StatusServiceUnavailable, `{}`, domain.ErrUpstreamUnavailable},
	}

	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte(tc.body))
		}))

		c := NewClient(srv.Client(), "test-key", srv.URL, testLogger())
		_, err := c.Generate(context.Background(), ports.GenerateRequest{Model: "m", Prompt: "p"})
		if !errors.Is(err, tc.want) {
			t.Errorf("status %d: expected %v, got %v", tc.status, tc.want, err)
		}
		srv.Close()
	}
}

func TestGenerate_EmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), "test-key", srv.URL, testLogger())
	_, err := c.Generate(context.Background(), ports.GenerateRequest{Model: "m", Prompt: "p"})
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Errorf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestGenerate_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	srv.Close()

	c := NewClient(http.DefaultClient, "test-key", srv.URL, testLogger())
	_, err := c.Generate(context.Background(), ports.GenerateRequest{Model: "m", Prompt: "p"})
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Errorf("expected ErrUpstreamUnavailable, got %v", err)
	}
}
