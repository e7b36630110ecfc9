package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS candidates (
	id         BIGSERIAL PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	lat        DOUBLE PRECISION NOT NULL,
	lng        DOUBLE PRECISION NOT NULL,
	radius_km  DOUBLE PRECISION NOT NULL CHECK (radius_km > 0),
	is_active  BOOLEAN NOT NULL DEFAULT TRUE,
	windows    JSONB NOT NULL DEFAULT '[]'::jsonb,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS candidates_active_idx ON candidates (is_active);

CREATE TABLE IF NOT EXISTS delivery_orders (
	id         TEXT PRIMARY KEY,
	buyer_id   TEXT NOT NULL,
	seller_id  TEXT NOT NULL,
	courier_id TEXT,
	dest_lat   DOUBLE PRECISION NOT NULL,
	dest_lng   DOUBLE PRECISION NOT NULL,
	status     TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	deadline   TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS delivery_orders_open_idx
	ON delivery_orders (deadline, id)
	WHERE status NOT IN ('delivered', 'cancelled');
`

// Migrate creates the tables if they do not exist yet.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
