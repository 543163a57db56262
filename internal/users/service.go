package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/lokapasar/lokapasar-backend/pkg/db/models"
	pkgerrors "github.com/lokapasar/lokapasar-backend/pkg/errors"
)

// Service exposes the user identity surface.
type Service interface {
	Get(ctx context.Context, id int64) (*UserDTO, error)
	List(ctx context.Context) ([]UserDTO, error)
	UpdateProfile(ctx context.Context, id int64, input ProfileInput) (*UserDTO, error)
}

// ProfileInput carries the user-editable profile fields.
type ProfileInput struct {
	Name    string
	Phone   *string
	Address *string
}

type service struct {
	repo *Repository
}

// NewService constructs the user service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, id int64) (*UserDTO, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewUserDTO(user), nil
}

func (s *service) List(ctx context.Context) ([]UserDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list users")
	}
	dtos := make([]UserDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *NewUserDTO(&rows[i]))
	}
	return dtos, nil
}

func (s *service) UpdateProfile(ctx context.Context, id int64, input ProfileInput) (*UserDTO, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Name = strings.TrimSpace(input.Name)
	user.Phone = input.Phone
	user.Address = input.Address
	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update profile")
	}
	return NewUserDTO(user), nil
}

func (s *service) load(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}
