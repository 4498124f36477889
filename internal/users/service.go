package users

import (
	"context"
	"errors"

	"github.com/angelmondragon/ordersync-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/ordersync-backend/pkg/errors"
	"github.com/angelmondragon/ordersync-backend/pkg/events"
	"github.com/angelmondragon/ordersync-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventPublisher is the slice of the events package the service needs.
type EventPublisher interface {
	Publish(ctx context.Context, env events.Envelope) (bool, error)
}

// Service owns the contact records and emits a fact-of-record event after
// a contact mutation commits. The mutation is never rolled back when the
// publish fails; the result reports the gap instead.
type Service interface {
	Create(ctx context.Context, req CreateUserRequest) (*UserDTO, error)
	Get(ctx context.Context, rawID string) (*UserDTO, error)
	Update(ctx context.Context, rawID string, req UpdateUserRequest) (*UpdateUserResult, error)
}

type service struct {
	repo      Repository
	publisher EventPublisher
	logg      *logger.Logger
}

func NewService(repo Repository, publisher EventPublisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, errors.New("users repository is required")
	}
	if publisher == nil {
		return nil, errors.New("event publisher is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &service{repo: repo, publisher: publisher, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, req CreateUserRequest) (*UserDTO, error) {
	user := &models.User{
		Email:           req.Email,
		DeliveryAddress: req.DeliveryAddress,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating user")
	}

	s.logg.Info(s.logg.WithUserID(ctx, created.ID.String()), "user created")
	return FromModel(created), nil
}

func (s *service) Get(ctx context.Context, rawID string) (*UserDTO, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id must be a UUID")
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "User not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}
	return FromModel(user), nil
}

// Update commits the record mutation first, then publishes. A publish
// failure is logged and reported through EventPublished=false, never
// surfaced as a request error.
func (s *service) Update(ctx context.Context, rawID string, req UpdateUserRequest) (*UpdateUserResult, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id must be a UUID")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "User not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}

	oldEmail := existing.Email
	oldAddress := existing.DeliveryAddress

	fields := map[string]any{}
	if req.Email != nil {
		fields["email"] = *req.Email
	}
	if req.DeliveryAddress != nil {
		fields["delivery_address"] = *req.DeliveryAddress
	}

	// Nothing to update: return current state, no event.
	if len(fields) == 0 {
		return &UpdateUserResult{UserDTO: *FromModel(existing)}, nil
	}

	if err := s.repo.UpdateFields(ctx, id, fields); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating user")
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reloading user")
	}

	published, err := s.publisher.Publish(ctx, events.Envelope{
		Type: events.TypeUserContactUpdated,
		Payload: events.Payload{
			UserID:             id.String(),
			Email:              updated.Email,
			DeliveryAddress:    updated.DeliveryAddress,
			OldEmail:           oldEmail,
			OldDeliveryAddress: oldAddress,
		},
	})
	if err != nil {
		// The record mutation already committed; do not roll back.
		s.logg.Error(s.logg.WithUserID(ctx, id.String()), "contact event publish failed after commit", err)
		published = false
	}

	return &UpdateUserResult{UserDTO: *FromModel(updated), EventPublished: published}, nil
}
