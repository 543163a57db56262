package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lokapasar/lokapasar-backend/pkg/db/models"
)

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:cart_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	ddl := []string{
		`CREATE TABLE products (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  category_id INTEGER,
  name TEXT NOT NULL,
  description TEXT,
  image_path TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE units (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  product_id INTEGER NOT NULL,
  name TEXT NOT NULL,
  qty_per_unit INTEGER NOT NULL DEFAULT 1,
  price TEXT NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE cart_items (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL,
  unit_id INTEGER NOT NULL,
  quantity INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (user_id, unit_id)
);`,
	}
	for _, stmt := range ddl {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

func TestRepositoryUpsertIncrementsExistingLine(t *testing.T) {
	conn := setupCartTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &models.CartItem{UserID: 1, UnitID: 5, Quantity: 2}))
	require.NoError(t, repo.Upsert(ctx, &models.CartItem{UserID: 1, UnitID: 5, Quantity: 3}))

	rows, err := repo.ListByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 5, rows[0].Quantity)

	// a different unit gets its own line
	require.NoError(t, repo.Upsert(ctx, &models.CartItem{UserID: 1, UnitID: 6, Quantity: 1}))
	rows, err = repo.ListByUser(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestRepositoryLinesAreUserScoped(t *testing.T) {
	conn := setupCartTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &models.CartItem{UserID: 1, UnitID: 5, Quantity: 2}))
	require.NoError(t, repo.Upsert(ctx, &models.CartItem{UserID: 2, UnitID: 5, Quantity: 7}))

	mine, err := repo.ListByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	// user 2 cannot touch user 1's line
	_, err = repo.FindLine(ctx, 2, mine[0].ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.ClearByUser(ctx, 1))

	mine, err = repo.ListByUser(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, mine)

	theirs, err := repo.ListByUser(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, theirs, 1, "clearing one user's cart must not touch another's")
}

func TestRepositoryUpdateAndRemove(t *testing.T) {
	conn := setupCartTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &models.CartItem{UserID: 1, UnitID: 5, Quantity: 2}))
	rows, err := repo.ListByUser(ctx, 1)
	require.NoError(t, err)
	lineID := rows[0].ID

	require.NoError(t, repo.UpdateQuantity(ctx, 1, lineID, 9))
	line, err := repo.FindLine(ctx, 1, lineID)
	require.NoError(t, err)
	assert.Equal(t, 9, line.Quantity)

	require.NoError(t, repo.Remove(ctx, 1, lineID))
	_, err = repo.FindLine(ctx, 1, lineID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
