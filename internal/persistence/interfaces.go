package persistence

import (
	"context"
	"time"

	"github.com/holdfast/yieldscore/internal/domain"
	"github.com/holdfast/yieldscore/internal/weights"
)

// ScoreRepo is the append-only history of score records. Records are never
// updated in place: a rescore appends a new row under a new ID.
type ScoreRepo interface {
	Append(ctx context.Context, rec *domain.ScoreRecord) error
	Latest(ctx context.Context, ticker string) (*domain.ScoreRecord, error)
	// History returns records for the ticker newer than since, most recent
	// first. The veto engine reads a 24-month coverage window through this.
	History(ctx context.Context, ticker string, since time.Time) ([]domain.ScoreRecord, error)
	ByID(ctx context.Context, id string) (*domain.ScoreRecord, error)
}

// ShadowRepo stores shadow-portfolio predictions and their realized
// outcomes for the quarterly learning loop.
type ShadowRepo interface {
	Append(ctx context.Context, entry domain.ShadowEntry) error
	// Window returns entries predicted inside [from, to) that have a
	// realized outcome recorded.
	Window(ctx context.Context, from, to time.Time) ([]domain.ShadowEntry, error)
	RecordOutcome(ctx context.Context, ticker string, predictedAt time.Time, realizedReturn float64, realizedAt time.Time) error
}

// WeightsRepo stores immutable weight-set versions. Publishing always
// inserts a new version; existing versions are never modified. It satisfies
// weights.Store so the accessor can read straight from it.
type WeightsRepo interface {
	weights.Store
	InsertVersion(ctx context.Context, snap weights.Snapshot) error
}
