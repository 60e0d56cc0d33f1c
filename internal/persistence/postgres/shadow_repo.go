package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/holdfast/yieldscore/internal/domain"
	"github.com/holdfast/yieldscore/internal/persistence"
)

type shadowRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewShadowRepo creates a PostgreSQL-backed shadow portfolio repository.
func NewShadowRepo(db *sqlx.DB, timeout time.Duration) persistence.ShadowRepo {
	return &shadowRepo{db: db, timeout: timeout}
}

func (r *shadowRepo) Append(ctx context.Context, entry domain.ShadowEntry) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	subs, err := json.Marshal(entry.SubScores)
	if err != nil {
		return fmt.Errorf("marshal sub scores: %w", err)
	}

	query := `
		INSERT INTO shadow_entries
		(ticker, class, predicted_score, sub_scores, weight_version, predicted_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = r.db.ExecContext(ctx, query,
		entry.Ticker, string(entry.Class), entry.PredictedScore,
		subs, entry.WeightVersion, entry.PredictedAt)
	if err != nil {
		return fmt.Errorf("append shadow entry: %w", err)
	}
	return nil
}

func (r *shadowRepo) Window(ctx context.Context, from, to time.Time) ([]domain.ShadowEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT ticker, class, predicted_score, sub_scores, weight_version,
		       predicted_at, realized_return, realized_at
		FROM shadow_entries
		WHERE predicted_at >= $1 AND predicted_at < $2
		  AND realized_return IS NOT NULL
		ORDER BY predicted_at`

	rows, err := r.db.QueryxContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("shadow window: %w", err)
	}
	defer rows.Close()

	var out []domain.ShadowEntry
	for rows.Next() {
		var (
			entry domain.ShadowEntry
			class string
			subs  []byte
		)
		if err := rows.Scan(&entry.Ticker, &class, &entry.PredictedScore, &subs,
			&entry.WeightVersion, &entry.PredictedAt, &entry.RealizedReturn, &entry.RealizedAt); err != nil {
			return nil, fmt.Errorf("scan shadow entry: %w", err)
		}
		entry.Class = domain.AssetClass(class)
		if err := json.Unmarshal(subs, &entry.SubScores); err != nil {
			return nil, fmt.Errorf("unmarshal sub scores: %w", err)
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func (r *shadowRepo) RecordOutcome(ctx context.Context, ticker string, predictedAt time.Time, realizedReturn float64, realizedAt time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		UPDATE shadow_entries
		SET realized_return = $3, realized_at = $4
		WHERE ticker = $1 AND predicted_at = $2`

	res, err := r.db.ExecContext(ctx, query, ticker, predictedAt, realizedReturn, realizedAt)
	if err != nil {
		return fmt.Errorf("record shadow outcome: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("record shadow outcome: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("no shadow entry for %s at %s", ticker, predictedAt.Format(time.RFC3339))
	}
	return nil
}
