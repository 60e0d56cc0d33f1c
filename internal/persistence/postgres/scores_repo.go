package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/holdfast/yieldscore/internal/domain"
	"github.com/holdfast/yieldscore/internal/persistence"
)

type scoresRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewScoresRepo creates a PostgreSQL-backed score history repository.
func NewScoresRepo(db *sqlx.DB, timeout time.Duration) persistence.ScoreRepo {
	return &scoresRepo{db: db, timeout: timeout}
}

func (r *scoresRepo) Append(ctx context.Context, rec *domain.ScoreRecord) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal score record: %w", err)
	}

	query := `
		INSERT INTO score_records
		(id, ticker, class, schema_version, score, veto_triggered, degraded,
		 provenance, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = r.db.ExecContext(ctx, query,
		rec.ID, rec.Ticker, string(rec.Class), rec.SchemaVersion,
		rec.Score, rec.Veto.Triggered, rec.Degraded,
		pq.Array(rec.Provenance), body, rec.Timestamp)
	if err != nil {
		return fmt.Errorf("append score record: %w", err)
	}
	return nil
}

func (r *scoresRepo) Latest(ctx context.Context, ticker string) (*domain.ScoreRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT body FROM score_records
		WHERE ticker = $1
		ORDER BY created_at DESC
		LIMIT 1`

	var body []byte
	if err := r.db.QueryRowxContext(ctx, query, ticker).Scan(&body); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("latest score record: %w", err)
	}
	return unmarshalRecord(body)
}

func (r *scoresRepo) History(ctx context.Context, ticker string, since time.Time) ([]domain.ScoreRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT body FROM score_records
		WHERE ticker = $1 AND created_at >= $2
		ORDER BY created_at DESC`

	rows, err := r.db.QueryxContext(ctx, query, ticker, since)
	if err != nil {
		return nil, fmt.Errorf("score history: %w", err)
	}
	defer rows.Close()

	var out []domain.ScoreRecord
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan score record: %w", err)
		}
		rec, err := unmarshalRecord(body)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (r *scoresRepo) ByID(ctx context.Context, id string) (*domain.ScoreRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var body []byte
	err := r.db.QueryRowxContext(ctx, `SELECT body FROM score_records WHERE id = $1`, id).Scan(&body)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("score record by id: %w", err)
	}
	return unmarshalRecord(body)
}

func unmarshalRecord(body []byte) (*domain.ScoreRecord, error) {
	var rec domain.ScoreRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal score record: %w", err)
	}
	return &rec, nil
}
