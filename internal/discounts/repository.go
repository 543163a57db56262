package discount

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/lokapasar/lokapasar-backend/pkg/db/models"
)

// Repository wires discount persistence, including tiers and the derived
// is_active_now flag.
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

func tierOrder(db *gorm.DB) *gorm.DB {
	return db.Order("priority ASC").Order("id ASC")
}

// Create inserts the discount together with its tiers.
func (r *Repository) Create(ctx context.Context, discount *models.Discount) (*models.Discount, error) {
	if err := r.db.WithContext(ctx).Create(discount).Error; err != nil {
		return nil, err
	}
	return discount, nil
}

// Update saves the discount row. Tiers are handled by ReplaceTiers.
func (r *Repository) Update(ctx context.Context, discount *models.Discount) (*models.Discount, error) {
	if err := r.db.WithContext(ctx).Omit("Tiers").Save(discount).Error; err != nil {
		return nil, err
	}
	return discount, nil
}

// Delete removes the discount; tier rows go with it via FK cascade.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Discount{}).Error
}

// FindByID loads one discount with its tiers in selection order.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Discount, error) {
	var discount models.Discount
	err := r.db.WithContext(ctx).
		Preload("Tiers", tierOrder).
		First(&discount, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &discount, nil
}

// List returns every discount ordered by id ascending, tiers preloaded.
func (r *Repository) List(ctx context.Context) ([]models.Discount, error) {
	var rows []models.Discount
	err := r.db.WithContext(ctx).
		Preload("Tiers", tierOrder).
		Order("id ASC").
		Find(&rows).
		Error
	return rows, err
}

// ListActive returns discounts whose manual flag is on and whose schedule
// window contains now, ordered by id ascending. This ordering is the
// stacking order the pricing resolver applies, so it stays explicit here.
func (r *Repository) ListActive(ctx context.Context, now time.Time) ([]models.Discount, error) {
	var rows []models.Discount
	err := r.db.WithContext(ctx).
		Preload("Tiers", tierOrder).
		Where("active = ?", true).
		Where("start_at IS NULL OR start_at <= ?", now).
		Where("end_at IS NULL OR end_at >= ?", now).
		Order("id ASC").
		Find(&rows).
		Error
	return rows, err
}

// ReplaceTiers deletes and re-inserts the tier set for a discount. Tiers
// are never patched in place.
func (r *Repository) ReplaceTiers(ctx context.Context, discountID int64, tiers []models.DiscountTier) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("discount_id = ?", discountID).Delete(&models.DiscountTier{}).Error; err != nil {
		return err
	}
	if len(tiers) == 0 {
		return nil
	}
	return tx.Create(&tiers).Error
}

// RefreshActiveNow recomputes the persisted is_active_now flag for every
// discount against now. Read paths call this so the stored flag keeps
// tracking the schedule without a background job.
func (r *Repository) RefreshActiveNow(ctx context.Context, now time.Time) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Model(&models.Discount{}).
		Update("is_active_now", gorm.Expr(
			"active AND (start_at IS NULL OR start_at <= ?) AND (end_at IS NULL OR end_at >= ?)",
			now, now,
		)).
		Error
}
