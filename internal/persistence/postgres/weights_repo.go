package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/holdfast/yieldscore/internal/domain"
	"github.com/holdfast/yieldscore/internal/persistence"
	"github.com/holdfast/yieldscore/internal/weights"
)

type weightsRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewWeightsRepo creates a PostgreSQL-backed weight version repository.
func NewWeightsRepo(db *sqlx.DB, timeout time.Duration) persistence.WeightsRepo {
	return &weightsRepo{db: db, timeout: timeout}
}

// Stored form of one version row. Weight sets and thresholds live in jsonb
// keyed by class name; weights are keyed by component name so persisted rows
// stay self-describing.
type weightsRow struct {
	Sets       map[string]map[string]float64 `json:"sets"`
	Thresholds map[string]map[string]float64 `json:"thresholds"`
}

func (r *weightsRepo) CurrentVersion(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var version string
	err := r.db.QueryRowxContext(ctx,
		`SELECT version FROM weight_versions ORDER BY created_at DESC LIMIT 1`).Scan(&version)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("no weight versions published")
		}
		return "", fmt.Errorf("current weight version: %w", err)
	}
	return version, nil
}

func (r *weightsRepo) Load(ctx context.Context, version string) (*weights.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var body []byte
	err := r.db.QueryRowxContext(ctx,
		`SELECT body FROM weight_versions WHERE version = $1`, version).Scan(&body)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("weight version %q not found", version)
		}
		return nil, fmt.Errorf("load weight version: %w", err)
	}

	var row weightsRow
	if err := json.Unmarshal(body, &row); err != nil {
		return nil, fmt.Errorf("unmarshal weight version: %w", err)
	}
	return rowToSnapshot(version, row)
}

func (r *weightsRepo) InsertVersion(ctx context.Context, snap weights.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return fmt.Errorf("refusing to publish invalid snapshot: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	body, err := json.Marshal(snapshotToRow(snap))
	if err != nil {
		return fmt.Errorf("marshal weight version: %w", err)
	}

	// Versions are immutable: a duplicate version is a caller bug, surfaced
	// as a unique-constraint error rather than silently overwritten.
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO weight_versions (version, body, created_at) VALUES ($1, $2, $3)`,
		snap.Version, body, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert weight version: %w", err)
	}
	return nil
}

func snapshotToRow(snap weights.Snapshot) weightsRow {
	row := weightsRow{
		Sets:       make(map[string]map[string]float64, len(snap.Sets)),
		Thresholds: make(map[string]map[string]float64, len(snap.Thresholds)),
	}
	for class, set := range snap.Sets {
		vals := make(map[string]float64, len(set.Weights))
		for c, v := range set.Weights {
			vals[string(c)] = v
		}
		row.Sets[string(class)] = vals
	}
	for class, ths := range snap.Thresholds {
		row.Thresholds[string(class)] = ths
	}
	return row
}

func rowToSnapshot(version string, row weightsRow) (*weights.Snapshot, error) {
	snap := &weights.Snapshot{
		Version:    version,
		Sets:       make(map[domain.AssetClass]weights.WeightSet, len(row.Sets)),
		Thresholds: make(map[domain.AssetClass]map[string]float64, len(row.Thresholds)),
	}
	comps := weights.Components()
	for class, vals := range row.Sets {
		w := make(map[weights.Component]float64, len(comps))
		for _, c := range comps {
			v, ok := vals[string(c)]
			if !ok {
				return nil, fmt.Errorf("version %q class %q: missing %q weight",
					version, class, c)
			}
			w[c] = v
		}
		snap.Sets[domain.AssetClass(class)] = weights.WeightSet{
			Version: version,
			Class:   domain.AssetClass(class),
			Weights: w,
		}
	}
	for class, ths := range row.Thresholds {
		snap.Thresholds[domain.AssetClass(class)] = ths
	}
	return snap, nil
}
