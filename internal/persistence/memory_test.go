package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holdfast/yieldscore/internal/domain"
	"github.com/holdfast/yieldscore/internal/weights"
)

func rec(id, ticker string, score float64, at time.Time) *domain.ScoreRecord {
	return &domain.ScoreRecord{
		ID:        id,
		Ticker:    ticker,
		Class:     domain.ClassDividendStock,
		Score:     score,
		Timestamp: at,
	}
}

func TestScoreRepoLatestAndByID(t *testing.T) {
	repo := NewMemoryScoreRepo()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Append(ctx, rec("a", "JNJ", 60, base)))
	require.NoError(t, repo.Append(ctx, rec("b", "JNJ", 72, base.Add(24*time.Hour))))
	require.NoError(t, repo.Append(ctx, rec("c", "PDI", 55, base.Add(48*time.Hour))))

	latest, err := repo.Latest(ctx, "JNJ")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "b", latest.ID)
	assert.Equal(t, 72.0, latest.Score)

	got, err := repo.ByID(ctx, "c")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "PDI", got.Ticker)

	missing, err := repo.Latest(ctx, "NOPE")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestScoreRepoHistoryNewestFirst(t *testing.T) {
	repo := NewMemoryScoreRepo()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, repo.Append(ctx, rec(id, "JNJ", 50, base.AddDate(0, i, 0))))
	}

	hist, err := repo.History(ctx, "JNJ", base.AddDate(0, 1, 0))
	require.NoError(t, err)
	require.Len(t, hist, 3) // the cutoff itself is included
	assert.Equal(t, "d", hist[0].ID)
	assert.Equal(t, "b", hist[2].ID)
}

func TestScoreRepoAppendOnly(t *testing.T) {
	repo := NewMemoryScoreRepo()
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	r := rec("a", "JNJ", 60, at)
	require.NoError(t, repo.Append(ctx, r))
	r.Score = 99 // caller mutation after append must not leak in

	stored, err := repo.ByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 60.0, stored.Score)
}

func TestShadowWindowRealizedOnly(t *testing.T) {
	repo := NewMemoryShadowRepo()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ret := 0.04

	entries := []domain.ShadowEntry{
		{Ticker: "A", PredictedAt: base, RealizedReturn: &ret},
		{Ticker: "B", PredictedAt: base.AddDate(0, 1, 0)}, // not realized yet
		{Ticker: "C", PredictedAt: base.AddDate(0, 2, 0), RealizedReturn: &ret},
		{Ticker: "D", PredictedAt: base.AddDate(0, 6, 0), RealizedReturn: &ret}, // past window
	}
	for _, e := range entries {
		require.NoError(t, repo.Append(ctx, e))
	}

	got, err := repo.Window(ctx, base, base.AddDate(0, 3, 0))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Ticker)
	assert.Equal(t, "C", got[1].Ticker)
}

func TestShadowRecordOutcome(t *testing.T) {
	repo := NewMemoryShadowRepo()
	ctx := context.Background()
	at := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Append(ctx, domain.ShadowEntry{Ticker: "JNJ", PredictedAt: at}))

	realized := at.AddDate(0, 3, 0)
	require.NoError(t, repo.RecordOutcome(ctx, "JNJ", at, 0.07, realized))

	got, err := repo.Window(ctx, at.Add(-time.Hour), at.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].RealizedReturn)
	assert.Equal(t, 0.07, *got[0].RealizedReturn)
	assert.True(t, got[0].RealizedAt.Equal(realized))

	err = repo.RecordOutcome(ctx, "JNJ", at.Add(time.Minute), 0.07, realized)
	assert.Error(t, err, "outcome must match an existing prediction")
}

func TestWeightsRepoVersioning(t *testing.T) {
	repo := NewMemoryWeightsRepo(*weights.DefaultSnapshot())
	ctx := context.Background()

	base, err := repo.CurrentVersion(ctx)
	require.NoError(t, err)

	next := *weights.DefaultSnapshot()
	next.Version = "v2026q2"
	for class, set := range next.Sets {
		set.Version = next.Version
		next.Sets[class] = set
	}
	require.NoError(t, repo.InsertVersion(ctx, next))

	cur, err := repo.CurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v2026q2", cur)

	// Published versions stay loadable forever.
	old, err := repo.Load(ctx, base)
	require.NoError(t, err)
	assert.Equal(t, base, old.Version)

	// Versions are immutable: the same name cannot be published twice.
	assert.Error(t, repo.InsertVersion(ctx, next))

	_, err = repo.Load(ctx, "v1999q9")
	assert.Error(t, err)
}

func TestWeightsRepoRejectsInvalidSnapshot(t *testing.T) {
	repo := NewMemoryWeightsRepo(*weights.DefaultSnapshot())

	bad := *weights.DefaultSnapshot()
	bad.Version = "v2026q3"
	set := bad.Sets[domain.ClassDividendStock]
	set.Weights[weights.Income] += 0.2
	bad.Sets[domain.ClassDividendStock] = set

	assert.Error(t, repo.InsertVersion(context.Background(), bad))
}
