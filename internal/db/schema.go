package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema statements are idempotent so Migrate can run on every startup.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS a100_index_prices (
		id                    BIGSERIAL PRIMARY KEY,
		recorded_at           TIMESTAMPTZ NOT NULL,
		index_price           NUMERIC(10,4) NOT NULL,
		hyperscaler_component NUMERIC(10,4),
		neocloud_component    NUMERIC(10,4),
		hyperscaler_count     INTEGER,
		neocloud_count        INTEGER,
		previous_price        NUMERIC(10,4),
		price_change_percent  NUMERIC(6,2),
		validation_passed     BOOLEAN NOT NULL DEFAULT TRUE,
		raw_data              JSONB,
		created_at            TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_a100_index_prices_created_at
		ON a100_index_prices (created_at DESC)`,

	// Partial index serving the validated-only history query.
	`CREATE INDEX IF NOT EXISTS idx_a100_index_prices_validated
		ON a100_index_prices (created_at DESC)
		WHERE validation_passed`,

	`CREATE OR REPLACE VIEW a100_latest_price AS
		SELECT * FROM a100_index_prices ORDER BY created_at DESC LIMIT 1`,
}

func Migrate(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
