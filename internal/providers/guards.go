package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/holdfast/yieldscore/internal/composite"
	"github.com/holdfast/yieldscore/internal/domain"
)

// GuardConfig controls the circuit breaker and rate limiter wrapped around
// an upstream provider.
type GuardConfig struct {
	Name           string
	RequestsPerSec float64
	Burst          int
	BreakerTimeout time.Duration
	FailuresToTrip uint32
	BreakerMaxHalf uint32
}

// DefaultGuardConfig returns sensible guard settings for a market-data
// upstream.
func DefaultGuardConfig(name string) GuardConfig {
	return GuardConfig{
		Name:           name,
		RequestsPerSec: 5,
		Burst:          10,
		BreakerTimeout: 30 * time.Second,
		FailuresToTrip: 5,
		BreakerMaxHalf: 2,
	}
}

func newBreaker(cfg GuardConfig) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.BreakerMaxHalf,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailuresToTrip
		},
	})
}

// GuardedFeatureProvider decorates a FeatureProvider with a rate limiter and
// circuit breaker so one misbehaving upstream cannot stall a batch.
type GuardedFeatureProvider struct {
	inner   FeatureProvider
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// GuardFeatures wraps the provider with the configured guards.
func GuardFeatures(inner FeatureProvider, cfg GuardConfig) *GuardedFeatureProvider {
	return &GuardedFeatureProvider{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), cfg.Burst),
		breaker: newBreaker(cfg),
	}
}

type featureReply struct {
	bag     domain.FeatureBag
	sources []string
}

func (g *GuardedFeatureProvider) Features(ctx context.Context, ticker string) (domain.FeatureBag, []string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return domain.FeatureBag{}, nil, fmt.Errorf("feature provider rate wait: %w", err)
	}
	out, err := g.breaker.Execute(func() (interface{}, error) {
		bag, sources, err := g.inner.Features(ctx, ticker)
		if err != nil {
			return nil, err
		}
		return featureReply{bag: bag, sources: sources}, nil
	})
	if err != nil {
		return domain.FeatureBag{}, nil, &domain.DataUnavailableError{Ticker: ticker, Cause: err}
	}
	reply := out.(featureReply)
	return reply.bag, reply.sources, nil
}

// GuardedSentimentProvider decorates a SentimentProvider. Failures degrade
// to the sentinel error so the pipeline can proceed without signals.
type GuardedSentimentProvider struct {
	inner   SentimentProvider
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// GuardSentiment wraps the provider with the configured guards.
func GuardSentiment(inner SentimentProvider, cfg GuardConfig) *GuardedSentimentProvider {
	return &GuardedSentimentProvider{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), cfg.Burst),
		breaker: newBreaker(cfg),
	}
}

func (g *GuardedSentimentProvider) Sentiment(ctx context.Context, ticker string) ([]composite.SentimentSignal, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, domain.ErrExternalSignalUnavailable
	}
	out, err := g.breaker.Execute(func() (interface{}, error) {
		return g.inner.Sentiment(ctx, ticker)
	})
	if err != nil {
		return nil, domain.ErrExternalSignalUnavailable
	}
	return out.([]composite.SentimentSignal), nil
}
