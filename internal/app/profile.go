package app

import (
	"fmt"
	"sync"

	"github.com/randomtoy/faas-go/internal/domain"
	"github.com/randomtoy/faas-go/internal/ports"
)

// ProfileService owns the single user profile: loaded once at start, every
// update persisted in full. The profile is never deleted, only overwritten.
// An all-empty persisted profile records that onboarding was shown and
// skipped, so the gate is not re-triggered every session.
type ProfileService struct {
	mu      sync.Mutex
	store   ports.ProfileStore
	profile domain.UserProfile
	seen    bool
}

func NewProfileService(store ports.ProfileStore) (*ProfileService, error) {
	profile, ok, err := store.LoadProfile()
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return &ProfileService{store: store, profile: profile, seen: ok}, nil
}

// Current returns the profile as last persisted.
func (s *ProfileService) Current() domain.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// Seen reports whether onboarding has been completed or skipped before.
func (s *ProfileService) Seen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen
}

// Update overwrites and persists the profile.
func (s *ProfileService) Update(profile domain.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.SaveProfile(profile); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	s.profile = profile
	s.seen = true
	return nil
}

// MarkSeen persists the current (possibly empty) profile as the "I've been
// asked" sentinel after an explicit skip.
func (s *ProfileService) MarkSeen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.SaveProfile(s.profile); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	s.seen = true
	return nil
}
