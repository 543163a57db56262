package models

import "time"

// ChatMessage is one message in the thread between a user and the store
// admin. Delivery/push is out of scope; rows are plain storage.
type ChatMessage struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserID    int64     `gorm:"column:user_id;not null;index"`
	SenderID  int64     `gorm:"column:sender_id;not null"`
	FromAdmin bool      `gorm:"column:from_admin;not null;default:false"`
	Body      string    `gorm:"column:body;not null"`
	ReadAt    *time.Time `gorm:"column:read_at"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
