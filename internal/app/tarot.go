package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/randomtoy/faas-go/internal/domain"
)

// TarotPhase is the coarse state of a tarot session.
type TarotPhase string

const (
	TarotIdle      TarotPhase = "IDLE"
	TarotShuffling TarotPhase = "SHUFFLING"
	TarotFan       TarotPhase = "FAN"
	TarotDone      TarotPhase = "DONE"
)

// fanSlots is the number of card backs shown in the fan. The slots are
// visual only: the revealed cards are drawn from the full deck once the
// third slot is picked, decoupling "which slot was clicked" from "which card
// is revealed".
const fanSlots = 11

// spreadSize is the three-card spread.
const spreadSize = 3

// TarotSession drives one tarot reading: question, shuffle, fan pick, draw,
// interpretation, optional VIP augmentation and a repeatable follow-up loop.
//
// Every generation call carries a sequence token; a result is discarded when
// a newer request was issued or the session was reset while it was in flight.
type TarotSession struct {
	mu  sync.Mutex
	env *Env
	id  string

	phase       TarotPhase
	question    string
	gender      domain.Gender
	pickedSlots []int
	cards       []domain.DrawnCard
	dealt       map[string]bool
	analysis    *domain.TarotAnalysis
	vipUnlocked bool
	pendingVIP  bool
	followups   []domain.FollowupExchange
	trackedID   string
	seq         uint64
}

func newTarotSession(id string, env *Env) *TarotSession {
	return &TarotSession{
		id:    id,
		env:   env,
		phase: TarotIdle,
		dealt: make(map[string]bool),
	}
}

func (s *TarotSession) ID() string { return s.id }

// Begin validates the question and starts the shuffle. Rejected at the
// state-machine boundary before any side effect.
func (s *TarotSession) Begin(question string, gender domain.Gender) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != TarotIdle {
		return fmt.Errorf("%w: reading already in progress", domain.ErrValidation)
	}
	if isBlank(question) {
		return fmt.Errorf("%w: question must not be empty", domain.ErrValidation)
	}
	s.question = question
	s.gender = gender
	s.phase = TarotShuffling
	return nil
}

// RevealFan finishes the shuffle animation. Purely presentational; the
// client calls it when the shuffle delay elapses.
func (s *TarotSession) RevealFan() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != TarotShuffling {
		return fmt.Errorf("%w: not shuffling", domain.ErrValidation)
	}
	s.phase = TarotFan
	return nil
}

// Pick selects one fan slot. Picking the third slot triggers the actual
// draw: three pairwise-distinct cards from the full deck, each upright with
// probability 0.7.
func (s *TarotSession) Pick(slot int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != TarotFan {
		return fmt.Errorf("%w: no fan displayed", domain.ErrValidation)
	}
	if slot < 0 || slot >= fanSlots {
		return fmt.Errorf("%w: slot must be between 0 and %d", domain.ErrValidation, fanSlots-1)
	}
	for _, p := range s.pickedSlots {
		if p == slot {
			return fmt.Errorf("%w: slot already picked", domain.ErrValidation)
		}
	}
	s.pickedSlots = append(s.pickedSlots, slot)
	if len(s.pickedSlots) < spreadSize {
		return nil
	}

	cards, err := domain.DrawCards(s.env.Deck, spreadSize, s.env.RNG)
	if err != nil {
		s.pickedSlots = s.pickedSlots[:len(s.pickedSlots)-1]
		return fmt.Errorf("draw spread: %w", err)
	}
	s.cards = cards
	for _, c := range cards {
		s.dealt[c.Name] = true
	}
	s.phase = TarotDone
	return nil
}

// Interpret runs the base reading. On failure the drawn cards and question
// are retained so the user can retry without re-drawing.
func (s *TarotSession) Interpret(ctx context.Context) (domain.TarotAnalysis, error) {
	s.mu.Lock()
	if s.phase != TarotDone || len(s.cards) < spreadSize {
		s.mu.Unlock()
		return domain.TarotAnalysis{}, fmt.Errorf("%w: spread not complete", domain.ErrValidation)
	}
	if s.analysis != nil {
		s.mu.Unlock()
		return domain.TarotAnalysis{}, fmt.Errorf("%w: spread already interpreted", domain.ErrValidation)
	}
	vip := s.vipUnlocked && !s.pendingVIP
	req := s.env.Builder.Tarot(s.question, s.cards, vip, s.env.Profiles.Current(), s.lastFollowupQuestion())
	token := s.issue()
	s.mu.Unlock()

	text, err := s.env.Gen.Generate(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq != token {
		return domain.TarotAnalysis{}, domain.ErrSuperseded
	}
	if err != nil {
		return domain.TarotAnalysis{}, err
	}
	result, err := decodeResult[domain.TarotAnalysis](text)
	if err != nil {
		return domain.TarotAnalysis{}, err
	}
	if err := result.Validate(vip); err != nil {
		return domain.TarotAnalysis{}, err
	}
	result.Question = s.question
	s.analysis = &result
	return result, nil
}

// UnlockVIP confirms payment and, gated on profile completeness, runs one
// vip-flagged regeneration that replaces the displayed analysis. The unlock
// is permanent for the session: no re-charging, and a later retry of a
// failed augmentation skips payment.
func (s *TarotSession) UnlockVIP(ctx context.Context) (VIPOutcome, error) {
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
	if !s.env.Profiles.Current().CompleteFor(domain.ModeTarot) {
		s.pendingVIP = true
		s.mu.Unlock()
		return VIPProfileRequired, nil
	}
	if s.analysis == nil {
		// No base reading yet: the first interpretation will be vip-flagged.
		s.mu.Unlock()
		return VIPUnlocked, nil
	}
	s.mu.Unlock()

	if err := s.regenerateVIP(ctx); err != nil {
		return "", err
	}
	return VIPUnlocked, nil
}

// CompleteProfile resolves the profile-collection form. profile == nil is an
// explicit skip, which still persists the sentinel so the gate does not
// re-trigger. Either way a suspended VIP unlock resumes afterward.
func (s *TarotSession) CompleteProfile(ctx context.Context, profile *domain.UserProfile) (VIPOutcome, error) {
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

// regenerateVIP replaces the displayed analysis with a vip-flagged one. A
// failure leaves the base analysis intact.
func (s *TarotSession) regenerateVIP(ctx context.Context) error {
	s.mu.Lock()
	req := s.env.Builder.Tarot(s.question, s.cards, true, s.env.Profiles.Current(), s.lastFollowupQuestion())
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
	result, err := decodeResult[domain.TarotAnalysis](text)
	if err != nil {
		return err
	}
	if err := result.Validate(true); err != nil {
		return err
	}
	result.Question = s.question
	s.analysis = &result
	return nil
}

// Followup asks another question about the same spread. Each round
// independently draws 0-2 auxiliary cards (p = 0.4/0.4/0.2) without
// replacement from the undealt deck and appends the exchange to the running
// thread; prior exchanges are never discarded.
func (s *TarotSession) Followup(ctx context.Context, question string) (domain.FollowupExchange, error) {
	s.mu.Lock()
	if s.phase != TarotDone || s.analysis == nil {
		s.mu.Unlock()
		return domain.FollowupExchange{}, fmt.Errorf("%w: no interpretation to follow up on", domain.ErrValidation)
	}
	if isBlank(question) {
		s.mu.Unlock()
		return domain.FollowupExchange{}, fmt.Errorf("%w: question must not be empty", domain.ErrValidation)
	}

	n := domain.AuxCardCount(s.env.RNG)
	aux, err := domain.DrawAux(s.env.Deck, s.dealt, n, s.env.RNG)
	if err != nil {
		s.mu.Unlock()
		return domain.FollowupExchange{}, fmt.Errorf("draw auxiliary cards: %w", err)
	}
	vip := s.vipUnlocked && !s.pendingVIP
	req := s.env.Builder.TarotFollowup(s.question, s.cards, question, aux, vip, s.env.Profiles.Current())
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

	for _, c := range aux {
		s.dealt[c.Name] = true
	}
	exchange := domain.FollowupExchange{
		Question:   question,
		Answer:     answer,
		ExtraCards: aux,
		Timestamp:  time.Now(),
	}
	s.followups = append(s.followups, exchange)
	return exchange, nil
}

// Save persists the session to history. The first save appends under a
// fresh id; subsequent saves overwrite that record.
func (s *TarotSession) Save() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.analysis == nil {
		return "", fmt.Errorf("%w: nothing to save", domain.ErrValidation)
	}
	analysis := *s.analysis
	rec := domain.HistoryRecord{
		Type:        domain.ModeTarot,
		PickedCards: append([]domain.DrawnCard(nil), s.cards...),
		Tarot:       &analysis,
		Followups:   append([]domain.FollowupExchange(nil), s.followups...),
	}
	id, err := s.env.History.Save(s.trackedID, rec)
	if err != nil {
		return "", err
	}
	s.trackedID = id
	return id, nil
}

// Reset clears cards, analysis, VIP state and the follow-up thread,
// returning to IDLE. Any in-flight generation result is discarded.
func (s *TarotSession) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	s.phase = TarotIdle
	s.question = ""
	s.gender = domain.Unknown
	s.pickedSlots = nil
	s.cards = nil
	s.dealt = make(map[string]bool)
	s.analysis = nil
	s.vipUnlocked = false
	s.pendingVIP = false
	s.followups = nil
	s.trackedID = ""
}

// TarotState is a read-only snapshot of the session.
type TarotState struct {
	ID             string                    `json:"id"`
	Phase          TarotPhase                `json:"phase"`
	Question       string                    `json:"question"`
	PickedSlots    []int                     `json:"pickedSlots"`
	Cards          []domain.DrawnCard        `json:"cards"`
	Analysis       *domain.TarotAnalysis     `json:"analysis,omitempty"`
	VIPUnlocked    bool                      `json:"vipUnlocked"`
	ProfilePending bool                      `json:"profilePending"`
	Followups      []domain.FollowupExchange `json:"followups"`
	SavedID        string                    `json:"savedId,omitempty"`
}

func (s *TarotSession) State() TarotState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := TarotState{
		ID:             s.id,
		Phase:          s.phase,
		Question:       s.question,
		PickedSlots:    append([]int(nil), s.pickedSlots...),
		Cards:          append([]domain.DrawnCard(nil), s.cards...),
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

func (s *TarotSession) lastFollowupQuestion() string {
	if len(s.followups) == 0 {
		return ""
	}
	return s.followups[len(s.followups)-1].Question
}

func (s *TarotSession) issue() uint64 {
	s.seq++
	return s.seq
}
