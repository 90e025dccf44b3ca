package app_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randomtoy/faas-go/internal/domain"
)

func testUser() domain.UserInfo {
	return domain.UserInfo{
		Name:      "张三",
		BirthDate: "1990-01-01",
		BirthTime: "12:30",
		Gender:    domain.Male,
	}
}

func TestAstrology_BeginValidatesInputs(t *testing.T) {
	f := newFixture(t)
	sess := f.sessions.CreateAstrology()

	cases := []domain.UserInfo{
		{BirthDate: "1990/01/01", BirthTime: "12:30"},
		{BirthDate: "1990-01-01", BirthTime: "25:00"},
		{BirthDate: "", BirthTime: "12:30"},
	}
	for _, user := range cases {
		_, err := sess.Begin(context.Background(), user)
		assert.ErrorIs(t, err, domain.ErrValidation, "user %+v", user)
	}
	assert.Zero(t, f.gen.calls())
}

func TestAstrology_BeginComputesChartAndInterprets(t *testing.T) {
	f := newFixture(t)
	sess := f.sessions.CreateAstrology()

	f.gen.push(destinyAnalysisJSON(t, false), nil)
	chart, err := sess.Begin(context.Background(), testUser())
	require.NoError(t, err)
	require.Len(t, chart, 12)

	st := sess.State()
	require.NotNil(t, st.Analysis)
	assert.Equal(t, "总论", st.Analysis.Summary)
	assert.Equal(t, "pro-model", f.gen.lastReq().Model)
	assert.Equal(t, 4000, f.gen.lastReq().ThinkingBudget)

	_, err = sess.Begin(context.Background(), testUser())
	assert.ErrorIs(t, err, domain.ErrValidation, "chart already cast")
}

func TestAstrology_GenerationFailureKeepsChart(t *testing.T) {
	f := newFixture(t)
	sess := f.sessions.CreateAstrology()

	f.gen.push("", domain.ErrUpstreamUnavailable)
	chart, err := sess.Begin(context.Background(), testUser())
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	assert.Len(t, chart, 12, "chart survives the failed generation")

	// Retry interprets without recasting.
	f.gen.push(destinyAnalysisJSON(t, false), nil)
	analysis, err := sess.Interpret(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "总论", analysis.Summary)
}

func TestAstrology_VIPGate(t *testing.T) {
	f := newFixture(t)
	sess := f.sessions.CreateAstrology()

	f.gen.push(destinyAnalysisJSON(t, false), nil)
	_, err := sess.Begin(context.Background(), testUser())
	require.NoError(t, err)

	// Profile has a birth date but no constellation: complete for tarot,
	// not for astrology.
	require.NoError(t, f.env.Profiles.Update(domain.UserProfile{BirthDate: "1995-06-15", MBTI: "INFJ"}))

	outcome, err := sess.UnlockVIP(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "profile_required", string(outcome))

	f.gen.push(destinyAnalysisJSON(t, true), nil)
	p := completeProfile()
	outcome, err = sess.CompleteProfile(context.Background(), &p)
	require.NoError(t, err)
	assert.Equal(t, "unlocked", string(outcome))
	require.NotNil(t, sess.State().Analysis.VIPData)
}

func TestAstrology_Followup(t *testing.T) {
	f := newFixture(t)
	sess := f.sessions.CreateAstrology()

	f.gen.push(destinyAnalysisJSON(t, false), nil)
	_, err := sess.Begin(context.Background(), testUser())
	require.NoError(t, err)

	f.gen.push("近期适合稳守。", nil)
	exchange, err := sess.Followup(context.Background(), "近期适合换工作吗")
	require.NoError(t, err)
	assert.Equal(t, "近期适合换工作吗", exchange.Question)
	assert.Empty(t, exchange.ExtraCards, "chart follow-ups draw no cards")
	assert.Nil(t, f.gen.lastReq().Schema, "follow-up is free text")
}

func TestAstrology_Save(t *testing.T) {
	f := newFixture(t)
	sess := f.sessions.CreateAstrology()

	f.gen.push(destinyAnalysisJSON(t, false), nil)
	_, err := sess.Begin(context.Background(), testUser())
	require.NoError(t, err)

	id, err := sess.Save()
	require.NoError(t, err)
	require.NotEmpty(t, id)

	records := f.env.History.List()
	require.Len(t, records, 1)
	assert.Equal(t, domain.ModeAstrology, records[0].Type)
	require.NotNil(t, records[0].UserInfo)
	assert.Equal(t, "张三", records[0].UserInfo.Name)
	assert.Len(t, records[0].Chart, 12)
	require.NotNil(t, records[0].Destiny)
}

func TestAstrology_ResetAllowsRecast(t *testing.T) {
	f := newFixture(t)
	sess := f.sessions.CreateAstrology()

	f.gen.push(destinyAnalysisJSON(t, false), nil)
	_, err := sess.Begin(context.Background(), testUser())
	require.NoError(t, err)

	sess.Reset()
	st := sess.State()
	assert.Nil(t, st.User)
	assert.Empty(t, st.Chart)
	assert.Nil(t, st.Analysis)

	f.gen.push(destinyAnalysisJSON(t, false), nil)
	_, err = sess.Begin(context.Background(), testUser())
	require.NoError(t, err)
}
