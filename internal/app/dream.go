package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/randomtoy/faas-go/internal/domain"
)

// DreamSession drives dream interpretation: no drawing step, one generation
// per content/style change, VIP following the shared unlock/augment pattern.
type DreamSession struct {
	mu  sync.Mutex
	env *Env
	id  string

	content     string
	style       domain.DreamStyle
	analysis    *domain.DreamAnalysis
	vipUnlocked bool
	pendingVIP  bool
	trackedID   string
	seq         uint64
}

func newDreamSession(id string, env *Env) *DreamSession {
	return &DreamSession{id: id, env: env}
}

func (s *DreamSession) ID() string { return s.id }

// Interpret runs one reading for the given content and school. Repeat calls
// with changed inputs replace the displayed analysis.
func (s *DreamSession) Interpret(ctx context.Context, content string, style domain.DreamStyle) (domain.DreamAnalysis, error) {
	if isBlank(content) {
		return domain.DreamAnalysis{}, fmt.Errorf("%w: dream content must not be empty", domain.ErrValidation)
	}
	if !domain.ValidDreamStyle(style) {
		return domain.DreamAnalysis{}, fmt.Errorf("%w: unknown interpretation style %q", domain.ErrValidation, style)
	}

	s.mu.Lock()
	vip := s.vipUnlocked && !s.pendingVIP
	req := s.env.Builder.Dream(content, style, vip, s.env.Profiles.Current())
	token := s.issue()
	s.mu.Unlock()

	text, err := s.env.Gen.Generate(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq != token {
		return domain.DreamAnalysis{}, domain.ErrSuperseded
	}
	if err != nil {
		return domain.DreamAnalysis{}, err
	}
	result, err := decodeResult[domain.DreamAnalysis](text)
	if err != nil {
		return domain.DreamAnalysis{}, err
	}
	if err := result.Validate(vip); err != nil {
		return domain.DreamAnalysis{}, err
	}
	result.DreamContent = content
	result.Style = style
	s.content = content
	s.style = style
	s.analysis = &result
	return result, nil
}

// UnlockVIP follows the shared pattern; dream gates on birth date + MBTI.
func (s *DreamSession) UnlockVIP(ctx context.Context) (VIPOutcome, error) {
	s.mu.Lock()
	if s.pendingVIP {
		s.mu.Unlock()
		return VIPProfileRequired, nil
	}
	if s.vipUnlocked && (s.analysis == nil || s.analysis.VIPData != nil) {
		s.mu.Unlock()
		return VIPAlreadyUnlocked, nil
	}
	charged := s.vipUnlocked
	s.mu.Unlock()

	if !charged {
		if err := s.env.Payment.Confirm(ctx); err != nil {
			return "", fmt.Errorf("confirm payment: %w", err)
		}
	}

	s.mu.Lock()
	s.vipUnlocked = true
	if !s.env.Profiles.Current().CompleteFor(domain.ModeDream) {
		s.pendingVIP = true
		s.mu.Unlock()
		return VIPProfileRequired, nil
	}
	if s.analysis == nil {
		s.mu.Unlock()
		return VIPUnlocked, nil
	}
	content, style := s.content, s.style
	s.mu.Unlock()

	if _, err := s.Interpret(ctx, content, style); err != nil {
		return "", err
	}
	return VIPUnlocked, nil
}

// CompleteProfile resolves the profile form and resumes a suspended unlock.
func (s *DreamSession) CompleteProfile(ctx context.Context, profile *domain.UserProfile) (VIPOutcome, error) {
	if profile != nil {
		if err := s.env.Profiles.Update(*profile); err != nil {
			return "", err
		}
	} else if err := s.env.Profiles.MarkSeen(); err != nil {
		return "", err
	}

	s.mu.Lock()
	if !s.pendingVIP {
		s.mu.Unlock()
		return "", nil
	}
	s.pendingVIP = false
	resume := s.analysis != nil
	content, style := s.content, s.style
	s.mu.Unlock()

	if !resume {
		return VIPUnlocked, nil
	}
	if _, err := s.Interpret(ctx, content, style); err != nil {
		return "", err
	}
	return VIPUnlocked, nil
}

// Save persists the session to history with the tracked-id semantics.
func (s *DreamSession) Save() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.analysis == nil {
		return "", fmt.Errorf("%w: nothing to save", domain.ErrValidation)
	}
	analysis := *s.analysis
	rec := domain.HistoryRecord{
		Type:  domain.ModeDream,
		Dream: &analysis,
	}
	id, err := s.env.History.Save(s.trackedID, rec)
	if err != nil {
		return "", err
	}
	s.trackedID = id
	return id, nil
}

// Reset clears the analysis and VIP state.
func (s *DreamSession) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	s.content = ""
	s.style = ""
	s.analysis = nil
	s.vipUnlocked = false
	s.pendingVIP = false
	s.trackedID = ""
}

// DreamState is a read-only snapshot of the session.
type DreamState struct {
	ID             string                `json:"id"`
	Analysis       *domain.DreamAnalysis `json:"analysis,omitempty"`
	VIPUnlocked    bool                  `json:"vipUnlocked"`
	ProfilePending bool                  `json:"profilePending"`
	SavedID        string                `json:"savedId,omitempty"`
}

func (s *DreamSession) State() DreamState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := DreamState{
		ID:             s.id,
		VIPUnlocked:    s.vipUnlocked,
		ProfilePending: s.pendingVIP,
		SavedID:        s.trackedID,
	}
	if s.analysis != nil {
		a := *s.analysis
		st.Analysis = &a
	}
	return st
}

func (s *DreamSession) issue() uint64 {
	s.seq++
	return s.seq
}
