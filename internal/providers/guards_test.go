package providers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holdfast/yieldscore/internal/composite"
	"github.com/holdfast/yieldscore/internal/domain"
)

type countingFeatures struct {
	calls int
	err   error
	bag   domain.FeatureBag
}

func (c *countingFeatures) Features(ctx context.Context, ticker string) (domain.FeatureBag, []string, error) {
	c.calls++
	if c.err != nil {
		return domain.FeatureBag{}, nil, c.err
	}
	return c.bag, []string{"upstream"}, nil
}

type countingSentiment struct {
	calls int
	err   error
}

func (c *countingSentiment) Sentiment(ctx context.Context, ticker string) ([]composite.SentimentSignal, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return []composite.SentimentSignal{{Source: "news", Score: 0.1, Magnitude: 0.5}}, nil
}

func fastGuard(name string) GuardConfig {
	cfg := DefaultGuardConfig(name)
	cfg.RequestsPerSec = 1000
	cfg.Burst = 1000
	return cfg
}

func TestGuardedFeaturesPassThrough(t *testing.T) {
	inner := &countingFeatures{bag: domain.FeatureBag{Values: map[string]float64{domain.FeatYield: 0.04}}}
	g := GuardFeatures(inner, fastGuard("test"))

	bag, sources, err := g.Features(context.Background(), "JNJ")
	require.NoError(t, err)
	assert.Equal(t, 0.04, bag.Values[domain.FeatYield])
	assert.Equal(t, []string{"upstream"}, sources)
	assert.Equal(t, 1, inner.calls)
}

func TestGuardedFeaturesWrapsUpstreamError(t *testing.T) {
	inner := &countingFeatures{err: errors.New("vendor 503")}
	g := GuardFeatures(inner, fastGuard("test"))

	_, _, err := g.Features(context.Background(), "JNJ")
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)

	var dataErr *domain.DataUnavailableError
	require.ErrorAs(t, err, &dataErr)
	assert.Equal(t, "JNJ", dataErr.Ticker)
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	inner := &countingFeatures{err: errors.New("vendor down")}
	g := GuardFeatures(inner, fastGuard("test"))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, _, err := g.Features(ctx, "JNJ")
		assert.Error(t, err)
	}
	assert.Equal(t, 5, inner.calls)

	// The open breaker now rejects without touching the upstream.
	_, _, err := g.Features(ctx, "JNJ")
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)
	assert.Equal(t, 5, inner.calls)
}

func TestGuardedSentimentDegradesToSentinel(t *testing.T) {
	inner := &countingSentiment{err: errors.New("feed timeout")}
	g := GuardSentiment(inner, fastGuard("test"))

	_, err := g.Sentiment(context.Background(), "JNJ")
	assert.ErrorIs(t, err, domain.ErrExternalSignalUnavailable)
}

func TestGuardedSentimentPassThrough(t *testing.T) {
	inner := &countingSentiment{}
	g := GuardSentiment(inner, fastGuard("test"))

	signals, err := g.Sentiment(context.Background(), "JNJ")
	require.NoError(t, err)
	require.Len(t, signals, 1)
	assert.Equal(t, "news", signals[0].Source)
}

func TestGuardHonorsCancelledContext(t *testing.T) {
	cfg := fastGuard("test")
	cfg.RequestsPerSec = 0.001
	cfg.Burst = 1
	inner := &countingFeatures{}
	g := GuardFeatures(inner, cfg)

	ctx := context.Background()
	_, _, err := g.Features(ctx, "JNJ") // consumes the single burst token
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, _, err = g.Features(ctx, "JNJ")
	assert.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}
