package chat

import (
	"time"

	"github.com/lokapasar/lokapasar-backend/pkg/db/models"
)

// MessageDTO is the wire shape for one chat message.
type MessageDTO struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	SenderID  int64      `json:"sender_id"`
	FromAdmin bool       `json:"from_admin"`
	Body      string     `json:"body"`
	ReadAt    *time.Time `json:"read_at"`
	CreatedAt time.Time  `json:"created_at"`
}

// ThreadDTO is one user's full thread.
type ThreadDTO struct {
	UserID   int64        `json:"user_id"`
	Messages []MessageDTO `json:"messages"`
}

// ThreadSummaryDTO is one row of the admin inbox.
type ThreadSummaryDTO struct {
	UserID      int64  `json:"user_id"`
	UserName    string `json:"user_name"`
	UnreadCount int64  `json:"unread_count"`
}

func NewMessageDTO(message *models.ChatMessage) *MessageDTO {
	return &MessageDTO{
		ID:        message.ID,
		UserID:    message.UserID,
		SenderID:  message.SenderID,
		FromAdmin: message.FromAdmin,
		Body:      message.Body,
		ReadAt:    message.ReadAt,
		CreatedAt: message.CreatedAt,
	}
}
