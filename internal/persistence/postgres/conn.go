package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Schema is the DDL for the scoring tables. Applied idempotently at startup;
// a real deployment would run this through its migration tooling instead.
const Schema = `
CREATE TABLE IF NOT EXISTS score_records (
    id              TEXT PRIMARY KEY,
    ticker          TEXT NOT NULL,
    class           TEXT NOT NULL,
    schema_version  TEXT NOT NULL,
    score           DOUBLE PRECISION NOT NULL,
    veto_triggered  BOOLEAN NOT NULL,
    degraded        BOOLEAN NOT NULL,
    provenance      TEXT[] NOT NULL DEFAULT '{}',
    body            JSONB NOT NULL,
    created_at      TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_score_records_ticker_ts
    ON score_records (ticker, created_at DESC);

CREATE TABLE IF NOT EXISTS shadow_entries (
    ticker          TEXT NOT NULL,
    class           TEXT NOT NULL,
    predicted_score DOUBLE PRECISION NOT NULL,
    sub_scores      JSONB NOT NULL,
    weight_version  TEXT NOT NULL,
    predicted_at    TIMESTAMPTZ NOT NULL,
    realized_return DOUBLE PRECISION,
    realized_at     TIMESTAMPTZ,
    PRIMARY KEY (ticker, predicted_at)
);

CREATE TABLE IF NOT EXISTS weight_versions (
    version    TEXT PRIMARY KEY,
    body       JSONB NOT NULL,
    created_at TIMESTAMPTZ NOT NULL
);
`

// Connect opens and pings a PostgreSQL pool with bounded settings.
func Connect(ctx context.Context, dsn string, maxOpen, maxIdle int) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}

// EnsureSchema applies the DDL above.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
