package simcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holdfast/yieldscore/internal/domain"
	"github.com/holdfast/yieldscore/internal/sim"
)

func params() sim.Parameters {
	return sim.DefaultParameters(0.05, 0.15, 0.002, 0.20)
}

func TestKeyStableAndTickerScoped(t *testing.T) {
	assert.Equal(t, Key("QYLD", params()), Key("QYLD", params()))
	assert.NotEqual(t, Key("QYLD", params()), Key("PDI", params()))
}

func TestKeyChangesWithAnyParameter(t *testing.T) {
	base := Key("QYLD", params())

	p := params()
	p.DistributionDragMonthly = 0.003
	assert.NotEqual(t, base, Key("QYLD", p))

	p = params()
	p.HorizonMonths = 36
	assert.NotEqual(t, base, Key("QYLD", p))

	p = params()
	p.HasOptionOverlay = true
	p.UpsideCapMonthly = 0.02
	assert.NotEqual(t, base, Key("QYLD", p))
}

func TestKeyIgnoresSeed(t *testing.T) {
	a := params()
	a.Seed = 1
	b := params()
	b.Seed = 99
	assert.Equal(t, Key("QYLD", a), Key("QYLD", b),
		"a cached result is valid regardless of which seed produced it")
}

func TestMemoryRoundTrip(t *testing.T) {
	c := NewMemory(time.Hour)
	ctx := context.Background()

	_, ok := c.Get(ctx, "QYLD", params())
	assert.False(t, ok)

	res := &domain.ErosionResult{Probability: 0.12, Tier: domain.TierModerate, HorizonMonths: 24}
	c.Set(ctx, "QYLD", params(), res)

	got, ok := c.Get(ctx, "QYLD", params())
	require.True(t, ok)
	assert.Equal(t, res.Probability, got.Probability)
	assert.Equal(t, res.Tier, got.Tier)

	// Different parameters miss even for the same ticker.
	p := params()
	p.VolatilityAnnual = 0.30
	_, ok = c.Get(ctx, "QYLD", p)
	assert.False(t, ok)
}

func TestMemoryReturnsCopies(t *testing.T) {
	c := NewMemory(time.Hour)
	ctx := context.Background()

	res := &domain.ErosionResult{Probability: 0.12}
	c.Set(ctx, "QYLD", params(), res)
	res.Probability = 0.99 // caller mutates its copy afterwards

	got, ok := c.Get(ctx, "QYLD", params())
	require.True(t, ok)
	assert.Equal(t, 0.12, got.Probability)

	got.Probability = 0.50
	again, ok := c.Get(ctx, "QYLD", params())
	require.True(t, ok)
	assert.Equal(t, 0.12, again.Probability)
}

func TestNewAutoSelectsBackend(t *testing.T) {
	c := NewAuto("", time.Hour)
	_, ok := c.(*memory)
	assert.True(t, ok, "no address configured means the in-process cache")

	c = NewAuto("localhost:6379", time.Hour)
	_, ok = c.(*redisCache)
	assert.True(t, ok, "a configured address selects the redis backend")
}

func TestMemoryExpiry(t *testing.T) {
	c := NewMemory(time.Nanosecond)
	ctx := context.Background()

	c.Set(ctx, "QYLD", params(), &domain.ErosionResult{Probability: 0.12})
	time.Sleep(time.Millisecond)

	_, ok := c.Get(ctx, "QYLD", params())
	assert.False(t, ok)
}
