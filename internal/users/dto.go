package users

import "github.com/lokapasar/lokapasar-backend/pkg/db/models"

// UserDTO is the wire shape for a user profile.
type UserDTO struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	IsAdmin bool    `json:"is_admin"`
}

func NewUserDTO(user *models.User) *UserDTO {
	return &UserDTO{
		ID:      user.ID,
		Name:    user.Name,
		Email:   user.Email,
		Phone:   user.Phone,
		Address: user.Address,
		IsAdmin: user.IsAdmin,
	}
}
