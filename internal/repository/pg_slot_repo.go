package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresSlotRepository struct {
	DB *pgxpool.Pool
}

func NewPostgresSlotRepository(db *pgxpool.Pool) *PostgresSlotRepository {
	return &PostgresSlotRepository{DB: db}
}

// EnsureSchema creates the slots table when it does not exist yet.
func (r *PostgresSlotRepository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS storefront_slots (
			slotkey    TEXT PRIMARY KEY,
			payload    BYTEA NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	_, err := r.DB.Exec(ctx, query)
	return err
}

func (r *PostgresSlotRepository) Load(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	query := `SELECT payload FROM storefront_slots WHERE slotkey=$1`
	if err := r.DB.QueryRow(ctx, query, key).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	return payload, nil
}

// Save upserts the whole value for key
func (r *PostgresSlotRepository) Save(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO storefront_slots (slotkey, payload, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (slotkey)
		DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
	`
	_, err := r.DB.Exec(ctx, query, key, value)
	return err
}

func (r *PostgresSlotRepository) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM storefront_slots WHERE slotkey=$1`
	_, err := r.DB.Exec(ctx, query, key)
	return err
}
