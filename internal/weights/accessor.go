package weights

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Store is the externally owned, versioned configuration source. It must
// support "get current version" plus load-by-version; it never mutates a
// published version.
type Store interface {
	CurrentVersion(ctx context.Context) (string, error)
	Load(ctx context.Context, version string) (*Snapshot, error)
}

// Accessor loads immutable weight/threshold snapshots and enforces the
// validation invariant before a snapshot is ever handed to scoring. On a
// failed load or failed validation it falls back to the last known-good
// snapshot rather than serving nothing.
type Accessor struct {
	store Store
	log   zerolog.Logger

	mu        sync.RWMutex
	lastKnown *Snapshot
}

// NewAccessor creates an accessor over a store.
func NewAccessor(store Store, log zerolog.Logger) *Accessor {
	return &Accessor{
		store: store,
		log:   log.With().Str("component", "weights_accessor").Logger(),
	}
}

// Snapshot returns the current validated snapshot. Configuration failures are
// loud: they are logged as errors because they affect every subsequent score,
// but a last known-good snapshot keeps scoring alive.
func (a *Accessor) Snapshot(ctx context.Context) (*Snapshot, error) {
	version, err := a.store.CurrentVersion(ctx)
	if err != nil {
		return a.fallback(fmt.Errorf("resolve current weight version: %w", err))
	}

	snap, err := a.store.Load(ctx, version)
	if err != nil {
		return a.fallback(fmt.Errorf("load weight snapshot %s: %w", version, err))
	}

	if err := snap.Validate(); err != nil {
		return a.fallback(err)
	}

	a.mu.Lock()
	a.lastKnown = snap
	a.mu.Unlock()

	return snap, nil
}

// LastKnownGood returns the most recent snapshot that passed validation, or
// nil if none has loaded yet.
func (a *Accessor) LastKnownGood() *Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastKnown
}

func (a *Accessor) fallback(cause error) (*Snapshot, error) {
	a.mu.RLock()
	last := a.lastKnown
	a.mu.RUnlock()

	if last != nil {
		a.log.Error().Err(cause).
			Str("fallback_version", last.Version).
			Msg("weight snapshot load failed, using last known-good")
		return last, nil
	}
	a.log.Error().Err(cause).Msg("weight snapshot load failed with no fallback available")
	return nil, cause
}
