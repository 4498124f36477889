package users

import (
	"time"

	"github.com/angelmondragon/ordersync-backend/pkg/db/models"
	"github.com/google/uuid"
)

type CreateUserRequest struct {
	Email           string `json:"email" validate:"required,email"`
	DeliveryAddress string `json:"delivery_address" validate:"required"`
}

type UpdateUserRequest struct {
	Email           *string `json:"email,omitempty" validate:"omitempty,email"`
	DeliveryAddress *string `json:"delivery_address,omitempty"`
}

type UserDTO struct {
	ID              uuid.UUID `json:"id"`
	Email           string    `json:"email"`
	DeliveryAddress string    `json:"delivery_address"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// UpdateUserResult carries the two-phase outcome: the committed record
// plus whether the contact event actually went out, so callers can see
// (and reconcile) publish drift instead of having it hidden.
type UpdateUserResult struct {
	UserDTO
	EventPublished bool `json:"event_published"`
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:              u.ID,
		Email:           u.Email,
		DeliveryAddress: u.DeliveryAddress,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}
