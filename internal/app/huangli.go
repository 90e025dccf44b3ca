package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/randomtoy/faas-go/internal/domain"
)

// HuangliSession drives almanac lookups: one generation per date change,
// VIP following the shared unlock/augment pattern, and a plan-suitability
// check appended to the session's follow-up thread.
type HuangliSession struct {
	mu  sync.Mutex
	env *Env
	id  string

	date          string
	data          *domain.HuangliData
	vipUnlocked   bool
	pendingVIP    bool
	lastPlanTopic string
	followups     []domain.FollowupExchange
	trackedID     string
	seq           uint64
}

func newHuangliSession(id string, env *Env) *HuangliSession {
	return &HuangliSession{id: id, env: env}
}

func (s *HuangliSession) ID() string { return s.id }

// Lookup fetches the almanac for one date. A repeat call with a new date
// replaces the displayed data.
func (s *HuangliSession) Lookup(ctx context.Context, date string) (domain.HuangliData, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return domain.HuangliData{}, fmt.Errorf("%w: date must be YYYY-MM-DD", domain.ErrValidation)
	}

	s.mu.Lock()
	vip := s.vipUnlocked && !s.pendingVIP
	req := s.env.Builder.Huangli(date, vip, s.env.Profiles.Current(), s.lastPlanTopic)
	token := s.issue()
	s.mu.Unlock()

	text, err := s.env.Gen.Generate(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq != token {
		return domain.HuangliData{}, domain.ErrSuperseded
	}
	if err != nil {
		return domain.HuangliData{}, err
	}
	result, err := decodeResult[domain.HuangliData](text)
	if err != nil {
		return domain.HuangliData{}, err
	}
	if err := result.Validate(vip); err != nil {
		return domain.HuangliData{}, err
	}
	result.Date = date
	s.date = date
	s.data = &result
	return result, nil
}

// Plan checks whether a planned activity suits the looked-up date. The
// verdict is free text in a fixed 4-line format and is appended to the
// follow-up thread; the topic also steers later VIP guidance.
func (s *HuangliSession) Plan(ctx context.Context, plan string) (domain.FollowupExchange, error) {
	s.mu.Lock()
	if s.data == nil {
		s.mu.Unlock()
		return domain.FollowupExchange{}, fmt.Errorf("%w: no almanac loaded", domain.ErrValidation)
	}
	if isBlank(plan) {
		s.mu.Unlock()
		return domain.FollowupExchange{}, fmt.Errorf("%w: plan must not be empty", domain.ErrValidation)
	}
	req := s.env.Builder.HuangliPlan(s.date, plan, *s.data)
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

	s.lastPlanTopic = plan
	exchange := domain.FollowupExchange{
		Question:  plan,
		Answer:    answer,
		Timestamp: time.Now(),
	}
	s.followups = append(s.followups, exchange)
	return exchange, nil
}

// UnlockVIP follows the shared pattern; huangli gates on
// constellation + MBTI.
func (s *HuangliSession) UnlockVIP(ctx context.Context) (VIPOutcome, error) {
	s.mu.Lock()
	if s.pendingVIP {
		s.mu.Unlock()
		return VIPProfileRequired, nil
	}
	if s.vipUnlocked && (s.data == nil || s.data.VIPData != nil) {
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
	if !s.env.Profiles.Current().CompleteFor(domain.ModeHuangli) {
		s.pendingVIP = true
		s.mu.Unlock()
		return VIPProfileRequired, nil
	}
	if s.data == nil {
		s.mu.Unlock()
		return VIPUnlocked, nil
	}
	date := s.date
	s.mu.Unlock()

	if _, err := s.Lookup(ctx, date); err != nil {
		return "", err
	}
	return VIPUnlocked, nil
}

// CompleteProfile resolves the profile form and resumes a suspended unlock.
func (s *HuangliSession) CompleteProfile(ctx context.Context, profile *domain.UserProfile) (VIPOutcome, error) {
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
	resume := s.data != nil
	date := s.date
	s.mu.Unlock()

	if !resume {
		return VIPUnlocked, nil
	}
	if _, err := s.Lookup(ctx, date); err != nil {
		return "", err
	}
	return VIPUnlocked, nil
}

// Save persists the session to history with the tracked-id semantics.
func (s *HuangliSession) Save() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return "", fmt.Errorf("%w: nothing to save", domain.ErrValidation)
	}
	data := *s.data
	rec := domain.HistoryRecord{
		Type:      domain.ModeHuangli,
		Huangli:   &data,
		Followups: append([]domain.FollowupExchange(nil), s.followups...),
	}
	id, err := s.env.History.Save(s.trackedID, rec)
	if err != nil {
		return "", err
	}
	s.trackedID = id
	return id, nil
}

// Reset clears the almanac, VIP state and the plan thread.
func (s *HuangliSession) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	s.date = ""
	s.data = nil
	s.vipUnlocked = false
	s.pendingVIP = false
	s.lastPlanTopic = ""
	s.followups = nil
	s.trackedID = ""
}

// HuangliState is a read-only snapshot of the session.
type HuangliState struct {
	ID             string                    `json:"id"`
	Data           *domain.HuangliData       `json:"data,omitempty"`
	VIPUnlocked    bool                      `json:"vipUnlocked"`
	ProfilePending bool                      `json:"profilePending"`
	Followups      []domain.FollowupExchange `json:"followups"`
	SavedID        string                    `json:"savedId,omitempty"`
}

func (s *HuangliSession) State() HuangliState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := HuangliState{
		ID:             s.id,
		VIPUnlocked:    s.vipUnlocked,
		ProfilePending: s.pendingVIP,
		Followups:      append([]domain.FollowupExchange(nil), s.followups...),
		SavedID:        s.trackedID,
	}
	if s.data != nil {
		d := *s.data
		st.Data = &d
	}
	return st
}

func (s *HuangliSession) issue() uint64 {
	s.seq++
	return s.seq
}
