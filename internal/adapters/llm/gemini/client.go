// Package gemini implements ports.Generator against the Generative Language
// REST API: POST {model, contents, config} in, {text} out. One network call
// per invocation; failures surface as classified domain errors.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/randomtoy/faas-go/internal/domain"
	"github.com/randomtoy/faas-go/internal/ports"
)

type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	logger     *slog.Logger
}

func NewClient(httpClient *http.Client, apiKey, baseURL string, logger *slog.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

// Wire shapes of the generateContent endpoint.
type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type thinkingConfig struct {
	ThinkingBudget int `json:"thinkingBudget"`
}

type generationConfig struct {
	ThinkingConfig   *thinkingConfig `json:"thinkingConfig,omitempty"`
	ResponseMimeType string          `json:"responseMimeType,omitempty"`
	ResponseSchema   *ports.Schema   `json:"responseSchema,omitempty"`
}

type generateBody struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error struct {
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (c *Client) Generate(ctx context.Context, req ports.GenerateRequest) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: GEMINI_API_KEY is not set", domain.ErrMissingCredential)
	}
	if req.Model == "" || req.Prompt == "" {
		return "", fmt.Errorf("%w: model and prompt are required", domain.ErrInvalidRequest)
	}

	body := generateBody{
		Contents: []content{{Role: "user", Parts: []part{{Text: req.Prompt}}}},
	}
	if req.Schema != nil || req.ThinkingBudget > 0 {
		cfg := &generationConfig{}
		if req.ThinkingBudget > 0 {
			cfg.ThinkingConfig = &thinkingConfig{ThinkingBudget: req.ThinkingBudget}
		}
		if req.Schema != nil {
			cfg.ResponseMimeType = "application/json"
			cfg.ResponseSchema = req.Schema
		}
		body.GenerationConfig = cfg
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.baseURL, url.PathEscape(req.Model), url.QueryEscape(c.apiKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %w", domain.ErrUpstreamUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", c.classifyFailure(resp.StatusCode, respBody)
	}

	var gr generateResponse
	if err := json.Unmarshal(respBody, &gr); err != nil {
		return "", fmt.Errorf("%w: decode response: %w", domain.ErrMalformedResponse, err)
	}

	var sb strings.Builder
	for _, cand := range gr.Candidates {
		for _, p := range cand.Content.Parts {
			sb.WriteString(p.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("%w: empty candidates", domain.ErrUpstreamUnavailable)
	}
	return text, nil
}

func (c *Client) classifyFailure(status int, body []byte) error {
	var gr generateResponse
	_ = json.Unmarshal(body, &gr)
	msg := gr.Error.Message
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden ||
		strings.Contains(msg, "API_KEY") || strings.Contains(msg, "PERMISSION_DENIED"):
		return fmt.Errorf("%w: upstream status %d: %s", domain.ErrMissingCredential, status, msg)
	case status == http.StatusBadRequest:
		return fmt.Errorf("%w: upstream status %d: %s", domain.ErrInvalidRequest, status, msg)
	default:
		c.logger.Warn("generation upstream failure", "status", status, "error", msg)
		return fmt.Errorf("%w: upstream status %d: %s", domain.ErrUpstreamUnavailable, status, msg)
	}
}
