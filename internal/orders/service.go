package orders

import (
	"context"
	"errors"

	"github.com/angelmondragon/ordersync-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/ordersync-backend/pkg/errors"
	"github.com/angelmondragon/ordersync-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultStatus = "processing"

// Service implements the dependent side of the contact pipeline: order
// CRUD plus the bulk contact rewrite the sync worker calls into.
type Service interface {
	Create(ctx context.Context, req CreateOrderRequest) (*OrderDTO, error)
	List(ctx context.Context, status string) ([]OrderDTO, error)
	UpdateStatus(ctx context.Context, rawID string, req UpdateStatusRequest) (*OrderDTO, error)
	UpdateContact(ctx context.Context, req UpdateContactRequest) (*ContactSyncResult, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, errors.New("orders repository is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, req CreateOrderRequest) (*OrderDTO, error) {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user_id must be a UUID")
	}

	order := &models.Order{
		UserID:          userID,
		Email:           req.Email,
		DeliveryAddress: req.DeliveryAddress,
		Items:           req.toItems(),
		Status:          defaultStatus,
	}

	created, err := s.repo.Create(ctx, order)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating order")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id": created.ID.String(),
		"user_id":  created.UserID.String(),
	}), "order created")
	return FromModel(created), nil
}

func (s *service) List(ctx context.Context, status string) ([]OrderDTO, error) {
	found, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
	}
	return fromModels(found), nil
}

func (s *service) UpdateStatus(ctx context.Context, rawID string, req UpdateStatusRequest) (*OrderDTO, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id must be a UUID")
	}

	matched, err := s.repo.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating order status")
	}
	if matched == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Order not found")
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reloading order")
	}
	return FromModel(updated), nil
}

// UpdateContact applies the present subset of contact fields to every
// order owned by the user. No matching orders is a client-visible
// not-found condition.
func (s *service) UpdateContact(ctx context.Context, req UpdateContactRequest) (*ContactSyncResult, error) {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user_id must be a UUID")
	}

	fields := map[string]any{}
	if req.Email != nil && *req.Email != "" {
		fields["email"] = *req.Email
	}
	if req.DeliveryAddress != nil && *req.DeliveryAddress != "" {
		fields["delivery_address"] = *req.DeliveryAddress
	}
	if len(fields) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "No contact info provided")
	}

	matched, err := s.repo.UpdateContactByUser(ctx, userID, fields)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating order contacts")
	}
	if matched == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "No orders found for this user")
	}

	updated, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reloading user orders")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"user_id":       userID.String(),
		"updated_count": matched,
	}), "order contacts updated")

	return &ContactSyncResult{UpdatedCount: matched, Orders: fromModels(updated)}, nil
}
