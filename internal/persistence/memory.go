package persistence

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/holdfast/yieldscore/internal/domain"
	"github.com/holdfast/yieldscore/internal/weights"
)

// MemoryScoreRepo is an in-process ScoreRepo used by the offline CLI mode
// and tests.
type MemoryScoreRepo struct {
	mu   sync.RWMutex
	recs []domain.ScoreRecord
}

func NewMemoryScoreRepo() *MemoryScoreRepo { return &MemoryScoreRepo{} }

func (m *MemoryScoreRepo) Append(ctx context.Context, rec *domain.ScoreRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, *rec)
	return nil
}

func (m *MemoryScoreRepo) Latest(ctx context.Context, ticker string) (*domain.ScoreRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *domain.ScoreRecord
	for i := range m.recs {
		r := &m.recs[i]
		if r.Ticker != ticker {
			continue
		}
		if latest == nil || r.Timestamp.After(latest.Timestamp) {
			latest = r
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (m *MemoryScoreRepo) History(ctx context.Context, ticker string, since time.Time) ([]domain.ScoreRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.ScoreRecord
	for _, r := range m.recs {
		if r.Ticker == ticker && !r.Timestamp.Before(since) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func (m *MemoryScoreRepo) ByID(ctx context.Context, id string) (*domain.ScoreRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.recs {
		if r.ID == id {
			cp := r
			return &cp, nil
		}
	}
	return nil, nil
}

// MemoryShadowRepo is an in-process ShadowRepo.
type MemoryShadowRepo struct {
	mu      sync.RWMutex
	entries []domain.ShadowEntry
}

func NewMemoryShadowRepo() *MemoryShadowRepo { return &MemoryShadowRepo{} }

func (m *MemoryShadowRepo) Append(ctx context.Context, entry domain.ShadowEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *MemoryShadowRepo) Window(ctx context.Context, from, to time.Time) ([]domain.ShadowEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.ShadowEntry
	for _, e := range m.entries {
		if e.RealizedReturn == nil {
			continue
		}
		if e.PredictedAt.Before(from) || !e.PredictedAt.Before(to) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PredictedAt.Before(out[j].PredictedAt) })
	return out, nil
}

func (m *MemoryShadowRepo) RecordOutcome(ctx context.Context, ticker string, predictedAt time.Time, realizedReturn float64, realizedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.entries {
		e := &m.entries[i]
		if e.Ticker == ticker && e.PredictedAt.Equal(predictedAt) {
			rr, ra := realizedReturn, realizedAt
			e.RealizedReturn = &rr
			e.RealizedAt = &ra
			return nil
		}
	}
	return fmt.Errorf("no shadow entry for %s at %s", ticker, predictedAt.Format(time.RFC3339))
}

// MemoryWeightsRepo is an in-process WeightsRepo seeded with the builtin
// snapshot.
type MemoryWeightsRepo struct {
	mu       sync.RWMutex
	versions map[string]weights.Snapshot
	current  string
}

func NewMemoryWeightsRepo(seed weights.Snapshot) *MemoryWeightsRepo {
	return &MemoryWeightsRepo{
		versions: map[string]weights.Snapshot{seed.Version: seed},
		current:  seed.Version,
	}
}

func (m *MemoryWeightsRepo) CurrentVersion(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == "" {
		return "", fmt.Errorf("no weight versions published")
	}
	return m.current, nil
}

func (m *MemoryWeightsRepo) Load(ctx context.Context, version string) (*weights.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.versions[version]
	if !ok {
		return nil, fmt.Errorf("weight version %q not found", version)
	}
	return &snap, nil
}

func (m *MemoryWeightsRepo) InsertVersion(ctx context.Context, snap weights.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return fmt.Errorf("refusing to publish invalid snapshot: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.versions[snap.Version]; exists {
		return fmt.Errorf("weight version %q already exists", snap.Version)
	}
	m.versions[snap.Version] = snap
	m.current = snap.Version
	return nil
}
