package payments

import (
	"context"

	"gorm.io/gorm"

	"github.com/lokapasar/lokapasar-backend/pkg/db/models"
)

// Repository persists payment methods.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, method *models.PaymentMethod) (*models.PaymentMethod, error) {
	if err := r.db.WithContext(ctx).Create(method).Error; err != nil {
		return nil, err
	}
	return method, nil
}

func (r *Repository) Update(ctx context.Context, method *models.PaymentMethod) (*models.PaymentMethod, error) {
	if err := r.db.WithContext(ctx).Save(method).Error; err != nil {
		return nil, err
	}
	return method, nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.PaymentMethod{}, "id = ?", id).Error
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*models.PaymentMethod, error) {
	var method models.PaymentMethod
	if err := r.db.WithContext(ctx).First(&method, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &method, nil
}

// List returns payment methods, optionally only the active ones for the
// storefront checkout surface.
func (r *Repository) List(ctx context.Context, activeOnly bool) ([]models.PaymentMethod, error) {
	query := r.db.WithContext(ctx).Order("name ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var methods []models.PaymentMethod
	if err := query.Find(&methods).Error; err != nil {
		return nil, err
	}
	return methods, nil
}

// CountOrdersByMethod reports how many orders reference the method.
func (r *Repository) CountOrdersByMethod(ctx context.Context, methodID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("payment_id = ?", methodID).
		Count(&count).Error
	return count, err
}
