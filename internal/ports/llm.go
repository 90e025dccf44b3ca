package ports

import "context"

// SchemaType mirrors the generation API's OpenAPI-style type enum.
type SchemaType string

const (
	TypeObject SchemaType = "OBJECT"
	TypeString SchemaType = "STRING"
	TypeArray  SchemaType = "ARRAY"
)

// Schema is the output-shape contract sent alongside a prompt. It serializes
// to the generation endpoint's responseSchema format.
type Schema struct {
	Type        SchemaType         `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

// GenerateRequest is one (model, prompt, output-shape) tuple. A nil Schema
// requests free text.
type GenerateRequest struct {
	Model          string
	Prompt         string
	Schema         *Schema
	ThinkingBudget int
}

// Generator sends a single generation request to the remote reasoning
// service. One network call per invocation: no retry, no backoff, no caching.
// Failures are classified via the domain error sentinels.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}
