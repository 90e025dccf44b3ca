// Package app hosts the per-mode divination session machines and the
// services they share: profile state, history, and the session registry.
package app

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/randomtoy/faas-go/internal/domain"
	"github.com/randomtoy/faas-go/internal/ports"
	"github.com/randomtoy/faas-go/internal/prompt"
)

// Env bundles the collaborators shared by every session.
type Env struct {
	Deck     domain.Deck
	Builder  *prompt.Builder
	Gen      ports.Generator
	RNG      domain.RNG
	Profiles *ProfileService
	History  *HistoryService
	Payment  ports.PaymentConfirmer
	Logger   *slog.Logger
}

// VIPOutcome is the result of a VIP unlock attempt.
type VIPOutcome string

const (
	// VIPUnlocked means payment confirmed and the augmented generation ran.
	VIPUnlocked VIPOutcome = "unlocked"
	// VIPProfileRequired means the flow is suspended until the profile
	// collection form resolves (CompleteProfile).
	VIPProfileRequired VIPOutcome = "profile_required"
	// VIPAlreadyUnlocked means the session is already augmented; no charge.
	VIPAlreadyUnlocked VIPOutcome = "already_unlocked"
)

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// decodeResult parses the remote service's text as the mode's structured
// result. Shape conformance beyond JSON parsing is the caller's Validate.
func decodeResult[T any](text string) (T, error) {
	var out T
	trimmed := strings.TrimSpace(text)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if err := json.Unmarshal([]byte(trimmed), &out); err != nil {
		return out, fmt.Errorf("%w: %w", domain.ErrMalformedResponse, err)
	}
	return out, nil
}
