package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"mindjournal/internal/storage"
)

// Open connects to Postgres through the pgx stdlib driver and applies migrations.
func Open(ctx context.Context, databaseURL string) (*sqlx.DB, error) {
	conn, err := sqlx.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	conn.SetMaxOpenConns(10)
	conn.SetConnMaxLifetime(2 * time.Hour)
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if err := RunMigrations(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return conn, nil
}

// Slots stores each snapshot as one row of storage_slots.
type Slots struct {
	db *sqlx.DB
}

func NewSlots(db *sqlx.DB) *Slots {
	return &Slots{db: db}
}

var _ storage.Slots = (*Slots)(nil)

func (s *Slots) Load(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.GetContext(ctx, &value, `SELECT value FROM storage_slots WHERE key=$1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load slot %s: %w", key, err)
	}
	return value, nil
}

func (s *Slots) Save(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO storage_slots (key, value, updated_at)
	                      VALUES ($1, $2, NOW())
	                      ON CONFLICT (key)
	                      DO UPDATE SET
	                        value = EXCLUDED.value,
	                        version = storage_slots.version + 1,
	                        updated_at = NOW()`, key, value)
	if err != nil {
		return fmt.Errorf("save slot %s: %w", key, err)
	}
	return nil
}
