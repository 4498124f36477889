package orders

import (
	"time"

	"github.com/angelmondragon/ordersync-backend/pkg/db/models"
	dbtypes "github.com/angelmondragon/ordersync-backend/pkg/db/types"
	"github.com/google/uuid"
)

type OrderItemInput struct {
	SKU      string `json:"sku" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

type CreateOrderRequest struct {
	UserID          string           `json:"user_id" validate:"required,uuid"`
	Email           string           `json:"email" validate:"required,email"`
	DeliveryAddress string           `json:"delivery_address" validate:"required"`
	Items           []OrderItemInput `json:"items" validate:"required,min=1,dive"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateContactRequest is the bulk sync payload. Either contact field may
// be absent; at least one must be present.
type UpdateContactRequest struct {
	UserID          string  `json:"user_id" validate:"required,uuid"`
	Email           *string `json:"email,omitempty" validate:"omitempty,email"`
	DeliveryAddress *string `json:"delivery_address,omitempty"`
}

type OrderDTO struct {
	ID              uuid.UUID          `json:"id"`
	UserID          uuid.UUID          `json:"user_id"`
	Email           string             `json:"email"`
	DeliveryAddress string             `json:"delivery_address"`
	Items           dbtypes.OrderItems `json:"items"`
	Status          string             `json:"status"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// ContactSyncResult echoes the updated set plus the modified count.
type ContactSyncResult struct {
	UpdatedCount int64      `json:"updated_count"`
	Orders       []OrderDTO `json:"orders"`
}

func FromModel(o *models.Order) *OrderDTO {
	if o == nil {
		return nil
	}
	items := o.Items
	if items == nil {
		items = dbtypes.OrderItems{}
	}
	return &OrderDTO{
		ID:              o.ID,
		UserID:          o.UserID,
		Email:           o.Email,
		DeliveryAddress: o.DeliveryAddress,
		Items:           items,
		Status:          o.Status,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func fromModels(orders []models.Order) []OrderDTO {
	dtos := make([]OrderDTO, 0, len(orders))
	for i := range orders {
		dtos = append(dtos, *FromModel(&orders[i]))
	}
	return dtos
}

func (r CreateOrderRequest) toItems() dbtypes.OrderItems {
	items := make(dbtypes.OrderItems, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, dbtypes.OrderItem{
			SKU:      item.SKU,
			Name:     item.Name,
			Quantity: item.Quantity,
		})
	}
	return items
}
