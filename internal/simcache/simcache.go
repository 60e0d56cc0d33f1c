package simcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/holdfast/yieldscore/internal/domain"
	"github.com/holdfast/yieldscore/internal/sim"
)

// DefaultTTL is how long a simulation result stays valid. Erosion dynamics
// move slowly, so a month of reuse is acceptable.
const DefaultTTL = 30 * 24 * time.Hour

// Cache stores erosion results keyed by ticker plus a fingerprint of the
// simulation parameters. Changing any parameter yields a different key, so
// stale entries are never served for updated inputs.
type Cache interface {
	Get(ctx context.Context, ticker string, params sim.Parameters) (*domain.ErosionResult, bool)
	Set(ctx context.Context, ticker string, params sim.Parameters, res *domain.ErosionResult)
}

// Key derives the cache key for a ticker and parameter set. The fingerprint
// covers every field that influences the simulation output except the seed:
// a cached result is reused regardless of which seed produced it.
func Key(ticker string, params sim.Parameters) string {
	fp := struct {
		Mean      float64              `json:"mean"`
		Vol       float64              `json:"vol"`
		Drag      float64              `json:"drag"`
		Overlay   bool                 `json:"overlay"`
		Cap       float64              `json:"cap"`
		Threshold float64              `json:"threshold"`
		Horizon   int                  `json:"horizon"`
		Sims      int                  `json:"sims"`
		Regimes   [4]sim.RegimeParams  `json:"regimes"`
		Trans     sim.TransitionMatrix `json:"trans"`
	}{
		Mean:      params.ExpectedReturnAnnual,
		Vol:       params.VolatilityAnnual,
		Drag:      params.DistributionDragMonthly,
		Overlay:   params.HasOptionOverlay,
		Cap:       params.UpsideCapMonthly,
		Threshold: params.ErosionThreshold,
		Horizon:   params.HorizonMonths,
		Sims:      params.Simulations,
		Regimes:   params.Regimes,
		Trans:     params.Transitions,
	}
	raw, _ := json.Marshal(fp)
	sum := sha256.Sum256(raw)
	return fmt.Sprintf("sim:%s:%s", ticker, hex.EncodeToString(sum[:16]))
}

type memEntry struct {
	res *domain.ErosionResult
	exp time.Time
}

type memory struct {
	mu  sync.Mutex
	m   map[string]memEntry
	ttl time.Duration
}

// NewMemory returns an in-process cache with the given TTL (DefaultTTL when
// zero).
func NewMemory(ttl time.Duration) Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &memory{m: make(map[string]memEntry), ttl: ttl}
}

func (c *memory) Get(ctx context.Context, ticker string, params sim.Parameters) (*domain.ErosionResult, bool) {
	key := Key(ticker, params)
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.m[key]
	if !ok || time.Now().After(e.exp) {
		delete(c.m, key)
		return nil, false
	}
	cp := *e.res
	return &cp, true
}

func (c *memory) Set(ctx context.Context, ticker string, params sim.Parameters, res *domain.ErosionResult) {
	key := Key(ticker, params)
	cp := *res
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = memEntry{res: &cp, exp: time.Now().Add(c.ttl)}
}

type redisCache struct {
	r   *redis.Client
	ttl time.Duration
}

// NewRedis returns a cache backed by the given Redis client.
func NewRedis(client *redis.Client, ttl time.Duration) Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &redisCache{r: client, ttl: ttl}
}

// NewAuto uses Redis at addr when one is configured and falls back to the
// in-process cache otherwise.
func NewAuto(addr string, ttl time.Duration) Cache {
	if addr != "" {
		return NewRedis(redis.NewClient(&redis.Options{Addr: addr}), ttl)
	}
	return NewMemory(ttl)
}

func (c *redisCache) Get(ctx context.Context, ticker string, params sim.Parameters) (*domain.ErosionResult, bool) {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	raw, err := c.r.Get(ctx, Key(ticker, params)).Bytes()
	if err != nil {
		return nil, false
	}
	var res domain.ErosionResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, false
	}
	return &res, true
}

func (c *redisCache) Set(ctx context.Context, ticker string, params sim.Parameters, res *domain.ErosionResult) {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	raw, err := json.Marshal(res)
	if err != nil {
		return
	}
	_ = c.r.Set(ctx, Key(ticker, params), raw, c.ttl).Err()
}
