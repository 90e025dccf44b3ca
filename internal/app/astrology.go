package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/randomtoy/faas-go/internal/domain"
)

// AstrologySession drives one chart reading: birth inputs map to a fixed
// 12-palace layout, then a generation call fires automatically. Follow-up
// questions and the VIP augment pattern mirror the tarot machine, minus the
// card fan.
type AstrologySession struct {
	mu  sync.Mutex
	env *Env
	id  string

	user        *domain.UserInfo
	chart       []domain.Palace
	analysis    *domain.DestinyAnalysis
	vipUnlocked bool
	pendingVIP  bool
	followups   []domain.FollowupExchange
	trackedID   string
	seq         uint64
}

func newAstrologySession(id string, env *Env) *AstrologySession {
	return &AstrologySession{id: id, env: env}
}

func (s *AstrologySession) ID() string { return s.id }

// Begin validates the birth inputs, computes the deterministic chart and
// fires the interpretation. On a generation failure the chart is retained
// and Interpret retries without recomputing.
func (s *AstrologySession) Begin(ctx context.Context, user domain.UserInfo) ([]domain.Palace, error) {
	if _, err := time.Parse("2006-01-02", user.BirthDate); err != nil {
		return nil, fmt.Errorf("%w: birthDate must be YYYY-MM-DD", domain.ErrValidation)
	}
	if _, err := time.Parse("15:04", user.BirthTime); err != nil {
		return nil, fmt.Errorf("%w: birthTime must be HH:mm", domain.ErrValidation)
	}

	s.mu.Lock()
	if s.user != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: chart already cast", domain.ErrValidation)
	}
	u := user
	s.user = &u
	s.chart = domain.CalculateChart(user)
	chart := s.chart
	s.mu.Unlock()

	if _, err := s.Interpret(ctx); err != nil {
		return chart, err
	}
	return chart, nil
}

// Interpret runs (or retries) the chart reading.
func (s *AstrologySession) Interpret(ctx context.Context) (domain.DestinyAnalysis, error) {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return domain.DestinyAnalysis{}, fmt.Errorf("%w: no chart cast", domain.ErrValidation)
	}
	if s.analysis != nil {
		s.mu.Unlock()
		return domain.DestinyAnalysis{}, fmt.Errorf("%w: chart already interpreted", domain.ErrValidation)
	}
	vip := s.vipUnlocked && !s.pendingVIP
	req := s.env.Builder.Destiny(*s.user, s.chart, vip, s.env.Profiles.Current())
	token := s.issue()
	s.mu.Unlock()

	text, err := s.env.Gen.Generate(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq != token {
		return domain.DestinyAnalysis{}, domain.ErrSuperseded
	}
	if err != nil {
		return domain.DestinyAnalysis{}, err
	}
	result, err := decodeResult[domain.DestinyAnalysis](text)
	if err != nil {
		return domain.DestinyAnalysis{}, err
	}
	if err := result.Validate(vip); err != nil {
		return domain.DestinyAnalysis{}, err
	}
	s.analysis = &result
	return result, nil
}

// UnlockVIP follows the shared pattern; astrology gates on
// constellation + MBTI.
func (s *AstrologySession) UnlockVIP(ctx context.Context) (VIPOutcome, error) {
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
	if !s.env.Profiles.Current().CompleteFor(domain.ModeAstrology) {
		s.pendingVIP = true
		s.mu.Unlock()
		return VIPProfileRequired, nil
	}
	if s.analysis == nil {
		s.mu.Unlock()
		return VIPUnlocked, nil
	}
	s.mu.Unlock()

	if err := s.regenerateVIP(ctx); err != nil {
		return "", err
	}
	return VIPUnlocked, nil
}

// CompleteProfile resolves the profile form and resumes a suspended unlock.
func (s *AstrologySession) CompleteProfile(ctx context.Context, profile *domain.UserProfile) (VIPOutcome, error) {
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
	s.mu.Unlock()

	if !resume {
		return VIPUnlocked, nil
	}
	if err := s.regenerateVIP(ctx); err != nil {
		return "", err
	}
	return VIPUnlocked, nil
}

func (s *AstrologySession) regenerateVIP(ctx context.Context) error {
	s.mu.Lock()
	req := s.env.Builder.Destiny(*s.user, s.chart, true, s.env.Profiles.Current())
	token := s.issue()
	s.mu.Unlock()

	text, err := s.env.Gen.Generate(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq != token {
		return domain.ErrSuperseded
	}
	if err != nil {
		return err
	}
	result, err := decodeResult[domain.DestinyAnalysis](text)
	if err != nil {
		return err
	}
	if err := result.Validate(true); err != nil {
		return err
	}
	s.analysis = &result
	return nil
}

// Followup asks a free-text question grounded in the chart and the existing
// reading.
func (s *AstrologySession) Followup(ctx context.Context, question string) (domain.FollowupExchange, error) {
	s.mu.Lock()
	if s.analysis == nil {
		s.mu.Unlock()
		return domain.FollowupExchange{}, fmt.Errorf("%w: no interpretation to follow up on", domain.ErrValidation)
	}
	if isBlank(question) {
		s.mu.Unlock()
		return domain.FollowupExchange{}, fmt.Errorf("%w: question must not be empty", domain.ErrValidation)
	}
	vip := s.vipUnlocked && !s.pendingVIP
	req := s.env.Builder.DestinyFollowup(*s.user, s.chart, *s.analysis, question, vip, s.env.Profiles.Current())
	token := s.issue()
	s.mu.Unlock()

	answer, err := s.env.Gen.Generate(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq != token {
		return domain.FollowupExchange{}, domain.ErrSuperseded
	}
	if err != nil {
		return domain.FollowupExchange{}, err
	}
	if answer == "" {
		return domain.FollowupExchange{}, domain.ErrMalformedResponse
	}

	exchange := domain.FollowupExchange{
		Question:  question,
		Answer:    answer,
		Timestamp: time.Now(),
	}
	s.followups = append(s.followups, exchange)
	return exchange, nil
}

// Save persists the session to history with the tracked-id semantics.
func (s *AstrologySession) Save() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.analysis == nil {
		return "", fmt.Errorf("%w: nothing to save", domain.ErrValidation)
	}
	analysis := *s.analysis
	rec := domain.HistoryRecord{
		Type:      domain.ModeAstrology,
		UserInfo:  s.user,
		Chart:     append([]domain.Palace(nil), s.chart...),
		Destiny:   &analysis,
		Followups: append([]domain.FollowupExchange(nil), s.followups...),
	}
	id, err := s.env.History.Save(s.trackedID, rec)
	if err != nil {
		return "", err
	}
	s.trackedID = id
	return id, nil
}

// Reset clears the chart, analysis, VIP state and follow-ups.
func (s *AstrologySession) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	s.user = nil
	s.chart = nil
	s.analysis = nil
	s.vipUnlocked = false
	s.pendingVIP = false
	s.followups = nil
	s.trackedID = ""
}

// AstrologyState is a read-only snapshot of the session.
type AstrologyState struct {
	ID             string                    `json:"id"`
	User           *domain.UserInfo          `json:"user,omitempty"`
	Chart          []domain.Palace           `json:"chart,omitempty"`
	Analysis       *domain.DestinyAnalysis   `json:"analysis,omitempty"`
	VIPUnlocked    bool                      `json:"vipUnlocked"`
	ProfilePending bool                      `json:"profilePending"`
	Followups      []domain.FollowupExchange `json:"followups"`
	SavedID        string                    `json:"savedId,omitempty"`
}

func (s *AstrologySession) State() AstrologyState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := AstrologyState{
		ID:             s.id,
		User:           s.user,
		Chart:          append([]domain.Palace(nil), s.chart...),
		VIPUnlocked:    s.vipUnlocked,
		ProfilePending: s.pendingVIP,
		Followups:      append([]domain.FollowupExchange(nil), s.followups...),
		SavedID:        s.trackedID,
	}
	if s.analysis != nil {
		a := *s.analysis
		st.Analysis = &a
	}
	return st
}

func (s *AstrologySession) issue() uint64 {
	s.seq++
	return s.seq
}
