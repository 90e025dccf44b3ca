package app_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randomtoy/faas-go/internal/app"
	"github.com/randomtoy/faas-go/internal/domain"
)

func TestDream_InterpretValidatesInputs(t *testing.T) {
	f := newFixture(t)
	sess := f.sessions.CreateDream()

	_, err := sess.Interpret(context.Background(), "  ", domain.StyleJung)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = sess.Interpret(context.Background(), "梦见大海", "TAROT")
	assert.ErrorIs(t, err, domain.ErrValidation, "unknown style")

	assert.Zero(t, f.gen.calls())
}

func TestDream_Interpret(t *testing.T) {
	f := newFixture(t)
	sess := f.sessions.CreateDream()

	f.gen.push(dreamAnalysisJSON(t, false), nil)
	analysis, err := sess.Interpret(context.Background(), "梦见大海", domain.StyleJung)
	require.NoError(t, err)

	assert.Equal(t, "梦见大海", analysis.DreamContent)
	assert.Equal(t, domain.StyleJung, analysis.Style)
	require.NotEmpty(t, analysis.CoreSymbols)
	assert.Nil(t, analysis.VIPData)
}

func TestDream_RepeatReplacesAnalysis(t *testing.T) {
	f := newFixture(t)
	sess := f.sessions.CreateDream()

	f.gen.push(dreamAnalysisJSON(t, false), nil)
	_, err := sess.Interpret(context.Background(), "梦见大海", domain.StyleJung)
	require.NoError(t, err)

	f.gen.push(dreamAnalysisJSON(t, false), nil)
	analysis, err := sess.Interpret(context.Background(), "梦见坠落", domain.StyleFreud)
	require.NoError(t, err)

	st := sess.State()
	require.NotNil(t, st.Analysis)
	assert.Equal(t, "梦见坠落", st.Analysis.DreamContent)
	assert.Equal(t, domain.StyleFreud, analysis.Style)
}

func TestDream_VIPRegeneratesStoredDream(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.env.Profiles.Update(domain.UserProfile{BirthDate: "1995-06-15", MBTI: "INFJ"}))
	sess := f.sessions.CreateDream()

	f.gen.push(dreamAnalysisJSON(t, false), nil)
	_, err := sess.Interpret(context.Background(), "梦见大海", domain.StyleJung)
	require.NoError(t, err)

	f.gen.push(dreamAnalysisJSON(t, true), nil)
	outcome, err := sess.UnlockVIP(context.Background())
	require.NoError(t, err)
	assert.Equal(t, app.VIPUnlocked, outcome)

	st := sess.State()
	require.NotNil(t, st.Analysis)
	require.NotNil(t, st.Analysis.VIPData)
	assert.Equal(t, "梦见大海", st.Analysis.DreamContent, "regeneration reuses the stored dream")
}

func TestDream_VIPGateOnConstellationOnlyProfile(t *testing.T) {
	f := newFixture(t)
	// Complete for astrology, incomplete for dream.
	require.NoError(t, f.env.Profiles.Update(domain.UserProfile{Constellation: "双子", MBTI: "INFJ"}))
	sess := f.sessions.CreateDream()

	f.gen.push(dreamAnalysisJSON(t, false), nil)
	_, err := sess.Interpret(context.Background(), "梦见大海", domain.StyleZhougong)
	require.NoError(t, err)

	outcome, err := sess.UnlockVIP(context.Background())
	require.NoError(t, err)
	assert.Equal(t, app.VIPProfileRequired, outcome)
}

func TestDream_Save(t *testing.T) {
	f := newFixture(t)
	sess := f.sessions.CreateDream()

	f.gen.push(dreamAnalysisJSON(t, false), nil)
	_, err := sess.Interpret(context.Background(), "梦见大海", domain.StyleJung)
	require.NoError(t, err)

	id, err := sess.Save()
	require.NoError(t, err)
	require.NotEmpty(t, id)

	records := f.env.History.List()
	require.Len(t, records, 1)
	assert.Equal(t, domain.ModeDream, records[0].Type)
	require.NotNil(t, records[0].Dream)
	assert.Equal(t, "梦见大海", records[0].Dream.DreamContent)
}
