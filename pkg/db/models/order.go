package models

import (
	"time"

	dbtypes "github.com/angelmondragon/ordersync-backend/pkg/db/types"
	"github.com/google/uuid"
)

// Order denormalizes the owning user's contact details; the contact-sync
// pipeline rewrites them whenever the user service reports a change.
type Order struct {
	ID              uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID          `gorm:"type:uuid;column:user_id;not null;index"`
	Email           string             `gorm:"type:text;not null"`
	DeliveryAddress string             `gorm:"column:delivery_address;type:text;not null"`
	Items           dbtypes.OrderItems `gorm:"type:jsonb;not null;default:'[]'"`
	Status          string             `gorm:"type:text;not null;default:'processing';index"`
	CreatedAt       time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
