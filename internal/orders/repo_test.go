package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lokapasar/lokapasar-backend/pkg/db/models"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:orders_" + uuid.NewString() + "?mode=memory&cache=shared"
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
		`CREATE TABLE payment_methods (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  account_number TEXT,
  account_holder TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE orders (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL,
  order_number TEXT NOT NULL UNIQUE,
  total_amount TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'menunggu',
  payment_id INTEGER NOT NULL,
  payment_status TEXT NOT NULL DEFAULT 'belum_bayar',
  shipping_type TEXT NOT NULL DEFAULT 'pickup',
  shipping_address TEXT,
  notes TEXT,
  payment_proof TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE order_items (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  order_id INTEGER NOT NULL,
  unit_id INTEGER NOT NULL,
  product_name TEXT NOT NULL,
  unit_name TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price TEXT NOT NULL,
  discount_amount TEXT NOT NULL DEFAULT '0',
  total_price TEXT NOT NULL,
  created_at DATETIME
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

func seedUnit(t *testing.T, conn *gorm.DB, productName, unitName string, price int64, stock int) *models.Unit {
	t.Helper()
	product := &models.Product{Name: productName, IsActive: true}
	require.NoError(t, conn.Create(product).Error)
	unit := &models.Unit{
		ProductID:  product.ID,
		Name:       unitName,
		QtyPerUnit: 1,
		Price:      decimal.NewFromInt(price),
		Stock:      stock,
	}
	require.NoError(t, conn.Create(unit).Error)
	unit.Product = product
	return unit
}

func TestDecrementStockConditional(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	unit := seedUnit(t, conn, "Keripik", "250g", 10000, 3)

	ok, err := repo.DecrementStock(ctx, unit.ID, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	var stock int
	require.NoError(t, conn.Model(&models.Unit{}).Where("id = ?", unit.ID).Pluck("stock", &stock).Error)
	assert.Equal(t, 1, stock)

	// requesting more than remains must not touch the row
	ok, err = repo.DecrementStock(ctx, unit.ID, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, conn.Model(&models.Unit{}).Where("id = ?", unit.ID).Pluck("stock", &stock).Error)
	assert.Equal(t, 1, stock)

	// draining the last piece succeeds exactly once
	ok, err = repo.DecrementStock(ctx, unit.ID, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.DecrementStock(ctx, unit.ID, 1)
	require.NoError(t, err)
	assert.False(t, ok, "stock must never go negative")
}

func TestRepositoryCreateAndFind(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	payment := &models.PaymentMethod{Name: "Transfer BCA", IsActive: true}
	require.NoError(t, conn.Create(payment).Error)
	unit := seedUnit(t, conn, "Kopi", "100g", 25000, 10)

	order := &models.Order{
		UserID:       7,
		OrderNumber:  "ORD-20250601120000-abc123",
		TotalAmount:  decimal.NewFromInt(50000),
		Status:       "menunggu",
		PaymentID:    payment.ID,
		ShippingType: "pickup",
		Items: []models.OrderItem{{
			UnitID:      unit.ID,
			ProductName: "Kopi",
			UnitName:    "100g",
			Quantity:    2,
			UnitPrice:   decimal.NewFromInt(25000),
			TotalPrice:  decimal.NewFromInt(50000),
		}},
	}

	created, err := repo.Create(ctx, order)
	require.NoError(t, err)

	fetched, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, fetched.Items, 1)
	assert.Equal(t, "Kopi", fetched.Items[0].ProductName)
	require.NotNil(t, fetched.Payment)
	assert.Equal(t, "Transfer BCA", fetched.Payment.Name)

	mine, err := repo.ListByUser(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	other, err := repo.ListByUser(ctx, 8)
	require.NoError(t, err)
	assert.Empty(t, other)
}
