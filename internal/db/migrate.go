package db

import (
	"context"

	"github.com/jmoiron/sqlx"
)

func RunMigrations(ctx context.Context, db *sqlx.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS storage_slots (
    key TEXT PRIMARY KEY,
    value BYTEA NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
	_, err := db.ExecContext(ctx, schema)
	if err != nil {
		return err
	}

	alters := `
DO $$ BEGIN
    IF NOT EXISTS (
        SELECT 1 FROM information_schema.columns WHERE table_name='storage_slots' AND column_name='version'
    ) THEN
        ALTER TABLE storage_slots ADD COLUMN version BIGINT NOT NULL DEFAULT 0;
    END IF;
END $$;`
	_, err = db.ExecContext(ctx, alters)
	return err
}
