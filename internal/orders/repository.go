package orders

import (
	"context"

	"gorm.io/gorm"

	"github.com/lokapasar/lokapasar-backend/pkg/db/models"
	"github.com/lokapasar/lokapasar-backend/pkg/enums"
)

// Repository wires order persistence plus the stock decrement that keeps
// the stock >= 0 invariant under concurrent placement.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts the order and its line items in one statement batch.
func (r *Repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// DecrementStock subtracts quantity from the unit's stock only when enough
// remains. A false return means another order consumed the stock since the
// pre-check, and the caller must fail the transaction.
func (r *Repository) DecrementStock(ctx context.Context, unitID int64, quantity int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Unit{}).
		Where("id = ? AND stock >= ?", unitID, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// FindByID loads one order with line items and payment method.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Preload("Payment").
		First(&order, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListByUser returns the user's orders, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Preload("Payment").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).
		Error
	return rows, err
}

// List returns every order, newest first.
func (r *Repository) List(ctx context.Context) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Preload("Payment").
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).
		Error
	return rows, err
}

// UpdateStatus writes the fulfillment status.
func (r *Repository) UpdateStatus(ctx context.Context, orderID int64, status enums.OrderStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("status", status).
		Error
}

// UpdatePaymentStatus writes the payment status.
func (r *Repository) UpdatePaymentStatus(ctx context.Context, orderID int64, status enums.PaymentStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("payment_status", status).
		Error
}

// SetPaymentProof records the stored proof image path and moves the order
// into awaiting-confirmation in one update.
func (r *Repository) SetPaymentProof(ctx context.Context, orderID int64, path string) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"payment_proof":  path,
			"payment_status": enums.PaymentStatusConfirmation,
		}).
		Error
}
