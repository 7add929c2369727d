package repository

import (
	"context"
	"path/filepath"
	"testing"

	"MusicStoreAPI/internal/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteRepo(t *testing.T) *SQLiteSlotRepository {
	t.Helper()
	conn, err := db.OpenSQLite(filepath.Join(t.TempDir(), "slots.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	repo := NewSQLiteSlotRepository(conn)
	require.NoError(t, repo.EnsureSchema(context.Background()))
	return repo
}

func TestSQLiteSlotRepository(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)

	_, err := repo.Load(ctx, "s:cart")
	assert.ErrorIs(t, err, ErrSlotNotFound)

	require.NoError(t, repo.Save(ctx, "s:cart", []byte("a")))
	require.NoError(t, repo.Save(ctx, "s:cart", []byte("b")))

	v, err := repo.Load(ctx, "s:cart")
	require.NoError(t, err)
	assert.Equal(t, "b", string(v))

	require.NoError(t, repo.Delete(ctx, "s:cart"))
	_, err = repo.Load(ctx, "s:cart")
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestSQLiteSlotRepository_Envelope(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)

	require.NoError(t, SaveJSON(ctx, repo, "s:lastOrder", sample{Name: "order", Qty: 1}))

	var out sample
	require.NoError(t, LoadJSON(ctx, repo, "s:lastOrder", &out))
	assert.Equal(t, sample{Name: "order", Qty: 1}, out)
}
