package cart

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lokapasar/lokapasar-backend/pkg/db/models"
)

// Repository wires cart line persistence.
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

// Upsert adds quantity to the user's line for the unit, inserting the row
// on first add. The (user_id, unit_id) unique index backs the conflict
// clause.
func (r *Repository) Upsert(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "unit_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity":   gorm.Expr("cart_items.quantity + ?", item.Quantity),
				"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
			}),
		}).
		Create(item).
		Error
}

// FindLine loads one cart line scoped to the user.
func (r *Repository) FindLine(ctx context.Context, userID, lineID int64) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		First(&item, "id = ? AND user_id = ?", lineID, userID).
		Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListByUser returns the user's cart lines with units and parent products
// preloaded, oldest line first.
func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]models.CartItem, error) {
	var rows []models.CartItem
	err := r.db.WithContext(ctx).
		Preload("Unit").
		Preload("Unit.Product").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&rows).
		Error
	return rows, err
}

// UpdateQuantity sets the quantity on one of the user's lines.
func (r *Repository) UpdateQuantity(ctx context.Context, userID, lineID int64, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ? AND user_id = ?", lineID, userID).
		Update("quantity", quantity).
		Error
}

// Remove deletes one of the user's lines.
func (r *Repository) Remove(ctx context.Context, userID, lineID int64) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", lineID, userID).
		Delete(&models.CartItem{}).
		Error
}

// ClearByUser deletes every line belonging to the user.
func (r *Repository) ClearByUser(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartItem{}).
		Error
}

// ClearInTx clears the user's cart inside the caller's transaction. Order
// placement uses this so a cart-sourced order and its cart clear commit or
// roll back together.
func (r *Repository) ClearInTx(ctx context.Context, tx *gorm.DB, userID int64) error {
	return r.WithTx(tx).ClearByUser(ctx, userID)
}
