package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema is the idempotent DDL for the backing store. The unique index on
// (name, line, city) is what makes CreateIfAbsent a single atomic statement.
const Schema = `
CREATE TABLE IF NOT EXISTS stops (
	id                 TEXT PRIMARY KEY,
	name               TEXT NOT NULL,
	type               TEXT NOT NULL,
	city               TEXT NOT NULL,
	line               TEXT NOT NULL,
	distance_from_city DOUBLE PRECISION NOT NULL,
	zone               INTEGER,
	lat                DOUBLE PRECISION,
	lng                DOUBLE PRECISION,
	accessibility      BOOLEAN,
	code               TEXT,
	created_at         TIMESTAMPTZ NOT NULL,
	UNIQUE (name, line, city)
);

CREATE INDEX IF NOT EXISTS stops_city_line_idx ON stops (city, line);

CREATE TABLE IF NOT EXISTS cafes (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	stop_id       TEXT NOT NULL,
	stop_type     TEXT NOT NULL,
	best_hours    JSONB NOT NULL DEFAULT '[]',
	food          TEXT[] NOT NULL DEFAULT '{}',
	price         TEXT NOT NULL,
	ideal_work    TEXT[] NOT NULL DEFAULT '{}',
	amenities     TEXT[] NOT NULL DEFAULT '{}',
	opening_hours JSONB NOT NULL,
	created_by    TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS cafes_stop_idx ON cafes (stop_id);

CREATE TABLE IF NOT EXISTS users (
	user_id      TEXT PRIMARY KEY,
	home_stop_id TEXT,
	favorites    TEXT[] NOT NULL DEFAULT '{}',
	created_at   TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS visits (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	cafe_id    TEXT NOT NULL,
	visited_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS visits_user_idx ON visits (user_id, visited_at DESC);
`

// EnsureSchema applies the schema. Safe to run on every start.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
