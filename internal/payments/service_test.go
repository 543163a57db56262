package payments

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lokapasar/lokapasar-backend/internal/orders"
	"github.com/lokapasar/lokapasar-backend/pkg/db/models"
	"github.com/lokapasar/lokapasar-backend/pkg/enums"
	pkgerrors "github.com/lokapasar/lokapasar-backend/pkg/errors"
)

func setupPaymentsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:payments_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	ddl := []string{
		`CREATE TABLE payment_methods (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE,
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
	}
	for _, stmt := range ddl {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

type stubProofStore struct {
	saved []string
	path  string
}

func (s *stubProofStore) SaveDataURL(dataURL, prefix string) (string, error) {
	s.saved = append(s.saved, dataURL)
	return s.path, nil
}

func newTestService(t *testing.T) (Service, *gorm.DB, *stubProofStore) {
	t.Helper()
	conn := setupPaymentsTestDB(t)
	proofs := &stubProofStore{path: "uploads/proof/test.png"}
	svc, err := NewService(NewRepository(conn), orders.NewRepository(conn), proofs)
	require.NoError(t, err)
	return svc, conn, proofs
}

func seedMethod(t *testing.T, conn *gorm.DB, name string, active bool) *models.PaymentMethod {
	t.Helper()
	method := &models.PaymentMethod{Name: name, IsActive: active}
	require.NoError(t, conn.Create(method).Error)
	return method
}

func seedOrder(t *testing.T, conn *gorm.DB, userID, paymentID int64, status enums.PaymentStatus) *models.Order {
	t.Helper()
	order := &models.Order{
		UserID:        userID,
		OrderNumber:   "ORD-test-" + uuid.NewString()[:8],
		TotalAmount:   decimal.NewFromInt(10000),
		Status:        enums.OrderStatusPending,
		PaymentID:     paymentID,
		PaymentStatus: status,
		ShippingType:  enums.ShippingTypePickup,
	}
	require.NoError(t, conn.Create(order).Error)
	return order
}

func TestMethodCRUD(t *testing.T) {
	svc, conn, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, MethodInput{Name: "Transfer BCA", IsActive: true})
	require.NoError(t, err)
	assert.False(t, created.IsCash)

	_, err = svc.Create(ctx, MethodInput{Name: "Transfer BCA", IsActive: true})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())

	holder := "Toko Lokapasar"
	updated, err := svc.Update(ctx, created.ID, MethodInput{
		Name: "Transfer BCA", AccountHolder: &holder, IsActive: false,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.AccountHolder)
	assert.Equal(t, holder, *updated.AccountHolder)
	assert.False(t, updated.IsActive)

	seedMethod(t, conn, "Tunai di tempat", true)
	all, err := svc.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := svc.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Tunai di tempat", active[0].Name)
	assert.True(t, active[0].IsCash)
}

func TestDeleteBlockedByOrderHistory(t *testing.T) {
	svc, conn, _ := newTestService(t)
	ctx := context.Background()

	used := seedMethod(t, conn, "Transfer BCA", true)
	unused := seedMethod(t, conn, "QRIS", true)
	seedOrder(t, conn, 1, used.ID, enums.PaymentStatusUnpaid)

	err := svc.Delete(ctx, used.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())

	require.NoError(t, svc.Delete(ctx, unused.ID))

	err = svc.Delete(ctx, unused.ID)
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestUploadProof(t *testing.T) {
	proof := "data:image/png;base64,aGVsbG8="

	t.Run("moves unpaid order to awaiting confirmation", func(t *testing.T) {
		svc, conn, proofs := newTestService(t)
		method := seedMethod(t, conn, "Transfer BCA", true)
		order := seedOrder(t, conn, 1, method.ID, enums.PaymentStatusUnpaid)

		path, err := svc.UploadProof(context.Background(), 1, order.ID, proof)
		require.NoError(t, err)
		require.NotNil(t, path)
		assert.Equal(t, "uploads/proof/test.png", *path)
		assert.Len(t, proofs.saved, 1)

		var row models.Order
		require.NoError(t, conn.First(&row, "id = ?", order.ID).Error)
		assert.Equal(t, enums.PaymentStatusConfirmation, row.PaymentStatus)
		require.NotNil(t, row.PaymentProof)
	})

	t.Run("re-upload before confirmation replaces proof", func(t *testing.T) {
		svc, conn, _ := newTestService(t)
		method := seedMethod(t, conn, "Transfer BCA", true)
		order := seedOrder(t, conn, 1, method.ID, enums.PaymentStatusConfirmation)

		_, err := svc.UploadProof(context.Background(), 1, order.ID, proof)
		require.NoError(t, err)
	})

	t.Run("rejected for paid orders", func(t *testing.T) {
		svc, conn, _ := newTestService(t)
		method := seedMethod(t, conn, "Transfer BCA", true)
		order := seedOrder(t, conn, 1, method.ID, enums.PaymentStatusPaid)

		_, err := svc.UploadProof(context.Background(), 1, order.ID, proof)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
	})

	t.Run("rejected for cash methods", func(t *testing.T) {
		svc, conn, proofs := newTestService(t)
		method := seedMethod(t, conn, "Tunai di tempat", true)
		order := seedOrder(t, conn, 1, method.ID, enums.PaymentStatusUnpaid)

		_, err := svc.UploadProof(context.Background(), 1, order.ID, proof)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
		assert.Empty(t, proofs.saved)
	})

	t.Run("rejected for another user's order", func(t *testing.T) {
		svc, conn, _ := newTestService(t)
		method := seedMethod(t, conn, "Transfer BCA", true)
		order := seedOrder(t, conn, 1, method.ID, enums.PaymentStatusUnpaid)

		_, err := svc.UploadProof(context.Background(), 2, order.ID, proof)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, pkgerrors.CodeForbidden, typed.Code())
	})
}

func TestIsCashMethod(t *testing.T) {
	assert.True(t, isCashMethod("Cash on Delivery"))
	assert.True(t, isCashMethod("Bayar TUNAI"))
	assert.False(t, isCashMethod("Transfer BCA"))
	assert.False(t, isCashMethod("QRIS"))
}
