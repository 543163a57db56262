package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/lokapasar/lokapasar-backend/pkg/db/models"
	pkgerrors "github.com/lokapasar/lokapasar-backend/pkg/errors"
)

const maxMessageLength = 2000

type userFinder interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

// Service stores and reads the per-user chat thread with the store admin.
// Delivery and push are out of scope; polling reads the thread.
type Service interface {
	Send(ctx context.Context, input SendInput) (*MessageDTO, error)
	Thread(ctx context.Context, userID int64) (*ThreadDTO, error)
	MarkRead(ctx context.Context, userID int64, asAdmin bool) error
	Inbox(ctx context.Context) ([]ThreadSummaryDTO, error)
}

// SendInput carries one outgoing message. AsAdmin marks an admin reply into
// the user's thread; SenderID is the actual author either way.
type SendInput struct {
	UserID   int64
	SenderID int64
	AsAdmin  bool
	Body     string
}

type service struct {
	repo  *Repository
	users userFinder
	now   func() time.Time
}

// NewService constructs the chat service.
func NewService(repo *Repository, users userFinder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("chat repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("user finder required")
	}
	return &service{repo: repo, users: users, now: time.Now}, nil
}

func (s *service) Send(ctx context.Context, input SendInput) (*MessageDTO, error) {
	body := strings.TrimSpace(input.Body)
	if body == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message body required")
	}
	if len(body) > maxMessageLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("message exceeds %d characters", maxMessageLength))
	}
	if !input.AsAdmin && input.SenderID != input.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot write into another user's thread")
	}
	if _, err := s.users.FindByID(ctx, input.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	created, err := s.repo.Create(ctx, &models.ChatMessage{
		UserID:    input.UserID,
		SenderID:  input.SenderID,
		FromAdmin: input.AsAdmin,
		Body:      body,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert chat message")
	}
	return NewMessageDTO(created), nil
}

func (s *service) Thread(ctx context.Context, userID int64) (*ThreadDTO, error) {
	messages, err := s.repo.ListThread(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list chat thread")
	}
	dtos := make([]MessageDTO, 0, len(messages))
	for i := range messages {
		dtos = append(dtos, *NewMessageDTO(&messages[i]))
	}
	return &ThreadDTO{UserID: userID, Messages: dtos}, nil
}

// MarkRead acknowledges the other side's messages: a user reading marks
// admin messages, an admin reading marks the user's.
func (s *service) MarkRead(ctx context.Context, userID int64, asAdmin bool) error {
	if err := s.repo.MarkRead(ctx, userID, !asAdmin, s.now()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: mark chat read")
	}
	return nil
}

// Inbox lists every active thread for the admin, most recent first, with
// the unread count of user messages.
func (s *service) Inbox(ctx context.Context) ([]ThreadSummaryDTO, error) {
	ids, err := s.repo.ListThreadUserIDs(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list chat threads")
	}
	summaries := make([]ThreadSummaryDTO, 0, len(ids))
	for _, id := range ids {
		unread, err := s.repo.CountUnread(ctx, id, false)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count unread")
		}
		summary := ThreadSummaryDTO{UserID: id, UnreadCount: unread}
		if user, err := s.users.FindByID(ctx, id); err == nil {
			summary.UserName = user.Name
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}
