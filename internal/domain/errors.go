package domain

import "errors"

var (
	// ErrValidation marks a missing or invalid user input, caught before any
	// network call. Fully recoverable.
	ErrValidation = errors.New("validation failed")

	// ErrDeckNotFound is returned for an unknown deck id.
	ErrDeckNotFound = errors.New("deck not found")

	// ErrSessionNotFound is returned for an unknown session id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrMissingCredential marks a server misconfiguration: the generation
	// provider credential is absent or rejected. Developer-facing, fatal for
	// the session.
	ErrMissingCredential = errors.New("missing or invalid generation credential")

	// ErrInvalidRequest marks a generation request the provider rejected as
	// malformed. Developer-facing.
	ErrInvalidRequest = errors.New("invalid generation request")

	// ErrUpstreamUnavailable covers non-2xx provider responses, rate limits
	// and network failures. Recovery is user-initiated retry.
	ErrUpstreamUnavailable = errors.New("generation upstream unavailable")

	// ErrMalformedResponse marks a provider response that could not be parsed
	// or failed the mode's output contract.
	ErrMalformedResponse = errors.New("malformed generation response")

	// ErrSuperseded marks a generation result discarded because a newer
	// request was issued or the session was reset while it was in flight.
	ErrSuperseded = errors.New("request superseded")
)
