package app_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/randomtoy/faas-go/internal/app"
	"github.com/randomtoy/faas-go/internal/domain"
	"github.com/randomtoy/faas-go/internal/ports"
	"github.com/randomtoy/faas-go/internal/prompt"
)

// memStore keeps the profile and history blobs in memory.
type memStore struct {
	mu           sync.Mutex
	profile      *domain.UserProfile
	history      []domain.HistoryRecord
	historySaves int
}

func (m *memStore) LoadProfile() (domain.UserProfile, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.profile == nil {
		return domain.UserProfile{}, false, nil
	}
	return *m.profile, true, nil
}

func (m *memStore) SaveProfile(profile domain.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := profile
	m.profile = &p
	return nil
}

func (m *memStore) LoadHistory() ([]domain.HistoryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.HistoryRecord(nil), m.history...), nil
}

func (m *memStore) SaveHistory(records []domain.HistoryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append([]domain.HistoryRecord(nil), records...)
	m.historySaves++
	return nil
}

// scriptGen replays a scripted sequence of generation results and records
// every request it sees. An optional hook runs while the call is "in flight".
type scriptGen struct {
	mu      sync.Mutex
	results []genResult
	reqs    []ports.GenerateRequest
	hook    func()
}

type genResult struct {
	text string
	err  error
}

func (g *scriptGen) Generate(_ context.Context, req ports.GenerateRequest) (string, error) {
	g.mu.Lock()
	g.reqs = append(g.reqs, req)
	var r genResult
	if len(g.results) > 0 {
		r = g.results[0]
		g.results = g.results[1:]
	}
	hook := g.hook
	g.hook = nil
	g.mu.Unlock()

	if hook != nil {
		hook()
	}
	return r.text, r.err
}

func (g *scriptGen) push(text string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.results = append(g.results, genResult{text: text, err: err})
}

func (g *scriptGen) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.reqs)
}

func (g *scriptGen) lastReq() ports.GenerateRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.reqs[len(g.reqs)-1]
}

// payCounter confirms every payment and counts charges.
type payCounter struct {
	mu sync.Mutex
	n  int
}

func (p *payCounter) Confirm(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.n++
	return nil
}

func (p *payCounter) charges() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.n
}

type pcgRNG struct{ r *rand.Rand }

func (p pcgRNG) Intn(n int) int { return p.r.IntN(n) }

func testDeck() domain.Deck {
	cards := make([]domain.Card, 22)
	for i := range 22 {
		cards[i] = domain.Card{Name: fmt.Sprintf("牌%d", i), Image: fmt.Sprintf("/cards/%d.jpg", i)}
	}
	return domain.Deck{ID: "major_arcana", Name: "Major Arcana", Cards: cards}
}

type fixture struct {
	store    *memStore
	gen      *scriptGen
	pay      *payCounter
	env      *app.Env
	sessions *app.Sessions
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := &memStore{}
	gen := &scriptGen{}
	pay := &payCounter{}

	profiles, err := app.NewProfileService(store)
	require.NoError(t, err)
	history, err := app.NewHistoryService(store)
	require.NoError(t, err)

	env := &app.Env{
		Deck:     testDeck(),
		Builder:  prompt.NewBuilder("pro-model", "flash-model"),
		Gen:      gen,
		RNG:      pcgRNG{r: rand.New(rand.NewPCG(7, 7))},
		Profiles: profiles,
		History:  history,
		Payment:  pay,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return &fixture{
		store:    store,
		gen:      gen,
		pay:      pay,
		env:      env,
		sessions: app.NewSessions(env),
	}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return string(raw)
}

func tarotAnalysisJSON(t *testing.T, vip bool) string {
	t.Helper()
	a := domain.TarotAnalysis{
		Interpretation: "整体解读",
		Advice:         "建议",
		PastPresentFuture: domain.PastPresentFuture{
			Past: "过去", Present: "现在", Future: "未来",
		},
	}
	if vip {
		a.VIPData = testVIPData()
	}
	return mustJSON(t, a)
}

func destinyAnalysisJSON(t *testing.T, vip bool) string {
	t.Helper()
	a := domain.DestinyAnalysis{
		Summary:      "总论",
		Personality:  "性格",
		Career:       "事业",
		Wealth:       "财运",
		Relationship: "感情",
		Health:       "健康",
		Suggestions:  []string{"建议一"},
	}
	if vip {
		a.VIPData = testVIPData()
	}
	return mustJSON(t, a)
}

func dreamAnalysisJSON(t *testing.T, vip bool) string {
	t.Helper()
	a := domain.DreamAnalysis{
		CoreSymbols:   []domain.CoreSymbol{{Symbol: "水", Meaning: "情绪"}},
		MainAnalysis:  "主体分析",
		HiddenMeaning: "潜在含义",
		LifeAdvice:    "生活建议",
	}
	if vip {
		a.VIPData = testVIPData()
	}
	return mustJSON(t, a)
}

func huangliDataJSON(t *testing.T, vip bool) string {
	t.Helper()
	d := domain.HuangliData{
		LunarDate:      "腊月初八",
		Ganzhi:         "甲子年 丙寅月 戊辰日",
		Yi:             []string{"祈福"},
		Ji:             []string{"动土"},
		Wuxing:         "城头土",
		Chong:          "冲狗",
		LuckyDirection: "正东",
		Summary:        "今日宜静不宜动。",
	}
	if vip {
		d.VIPData = testVIPData()
	}
	return mustJSON(t, d)
}

func testVIPData() *domain.VIPData {
	return &domain.VIPData{
		Crystal:      domain.VIPCrystal{Variety: "粉水晶", OutfitTips: "佩戴于左手"},
		HomeTreasure: domain.VIPHomeTreasure{Item: "铜葫芦", Benefit: "聚财", Placement: "玄关"},
		PitfallGuide: "避免冲动决策",
	}
}

func completeProfile() domain.UserProfile {
	return domain.UserProfile{
		Constellation: "双子",
		BirthDate:     "1995-06-15",
		MBTI:          "INFJ",
		City:          "上海",
	}
}
