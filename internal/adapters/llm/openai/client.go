// Package openai implements ports.Generator on an OpenAI-compatible chat
// completion API, selected with LLM_PROVIDER=openai. When a response schema
// is supplied the request uses JSON mode and the schema is carried in the
// system message, since the chat API has no responseSchema equivalent.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/randomtoy/faas-go/internal/domain"
	"github.com/randomtoy/faas-go/internal/ports"
)

type Client struct {
	client *goopenai.Client
}

func NewClient(apiKey, baseURL string) *Client {
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{client: goopenai.NewClientWithConfig(cfg)}
}

func (c *Client) Generate(ctx context.Context, req ports.GenerateRequest) (string, error) {
	if req.Model == "" || req.Prompt == "" {
		return "", fmt.Errorf("%w: model and prompt are required", domain.ErrInvalidRequest)
	}

	chatReq := goopenai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: req.Prompt},
		},
	}
	if req.Schema != nil {
		schemaJSON, err := json.Marshal(req.Schema)
		if err != nil {
			return "", fmt.Errorf("marshal schema: %w", err)
		}
		system := "Respond with ONLY a JSON object (no markdown, no code fences) conforming to this schema:\n" + string(schemaJSON)
		chatReq.Messages = append([]goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: system},
		}, chatReq.Messages...)
		chatReq.ResponseFormat = &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", domain.ErrUpstreamUnavailable)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func classify(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %w", domain.ErrMissingCredential, err)
		case http.StatusBadRequest:
			return fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
		}
	}
	return fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
}
