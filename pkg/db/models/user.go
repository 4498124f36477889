package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the contact record owned by the user service. Changes to the
// contact fields are what the event pipeline propagates downstream.
type User struct {
	ID              uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email           string    `gorm:"type:text;not null;uniqueIndex"`
	DeliveryAddress string    `gorm:"column:delivery_address;type:text;not null"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
