package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// SQLiteSlotRepository keeps slots in a single local database file.
type SQLiteSlotRepository struct {
	DB *sql.DB
}

func NewSQLiteSlotRepository(db *sql.DB) *SQLiteSlotRepository {
	return &SQLiteSlotRepository{DB: db}
}

func (r *SQLiteSlotRepository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS storefront_slots (
			slotkey    TEXT PRIMARY KEY,
			payload    BLOB NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`
	_, err := r.DB.ExecContext(ctx, query)
	return err
}

func (r *SQLiteSlotRepository) Load(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	query := `SELECT payload FROM storefront_slots WHERE slotkey=?`
	if err := r.DB.QueryRowContext(ctx, query, key).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	return payload, nil
}

func (r *SQLiteSlotRepository) Save(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO storefront_slots (slotkey, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (slotkey)
		DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
	`
	_, err := r.DB.ExecContext(ctx, query, key, value, time.Now().UnixMilli())
	return err
}

func (r *SQLiteSlotRepository) Delete(ctx context.Context, key string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM storefront_slots WHERE slotkey=?`, key)
	return err
}
