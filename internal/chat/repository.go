package chat

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/lokapasar/lokapasar-backend/pkg/db/models"
)

// Repository persists chat messages. A thread is keyed by the storefront
// user id; admin replies land in the same thread with from_admin set.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, message *models.ChatMessage) (*models.ChatMessage, error) {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return nil, err
	}
	return message, nil
}

// ListThread returns the user's thread oldest first.
func (r *Repository) ListThread(ctx context.Context, userID int64) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkRead stamps every unread message on one side of the thread. fromAdmin
// selects which sender's messages the reader is acknowledging.
func (r *Repository) MarkRead(ctx context.Context, userID int64, fromAdmin bool, readAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.ChatMessage{}).
		Where("user_id = ? AND from_admin = ? AND read_at IS NULL", userID, fromAdmin).
		Update("read_at", readAt).Error
}

// CountUnread counts unread messages on one side of the thread.
func (r *Repository) CountUnread(ctx context.Context, userID int64, fromAdmin bool) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ChatMessage{}).
		Where("user_id = ? AND from_admin = ? AND read_at IS NULL", userID, fromAdmin).
		Count(&count).Error
	return count, err
}

// ListThreadUserIDs returns the user ids with at least one message, most
// recent activity first, for the admin inbox.
func (r *Repository) ListThreadUserIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&models.ChatMessage{}).
		Select("user_id").
		Group("user_id").
		Order("MAX(id) DESC").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
