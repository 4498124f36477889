package users

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/angelmondragon/ordersync-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/ordersync-backend/pkg/errors"
	"github.com/angelmondragon/ordersync-backend/pkg/events"
	"github.com/angelmondragon/ordersync-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubUsersRepo struct {
	users         map[uuid.UUID]*models.User
	updatedFields map[string]any
}

func newStubUsersRepo(seed ...*models.User) *stubUsersRepo {
	repo := &stubUsersRepo{users: map[uuid.UUID]*models.User{}}
	for _, u := range seed {
		repo.users[u.ID] = u
	}
	return repo
}

func (s *stubUsersRepo) Create(_ context.Context, user *models.User) (*models.User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *stubUsersRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *stubUsersRepo) UpdateFields(_ context.Context, id uuid.UUID, fields map[string]any) error {
	s.updatedFields = fields
	user, ok := s.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if email, ok := fields["email"].(string); ok {
		user.Email = email
	}
	if address, ok := fields["delivery_address"].(string); ok {
		user.DeliveryAddress = address
	}
	return nil
}

type stubPublisher struct {
	envelopes []events.Envelope
	published bool
	err       error
}

func (s *stubPublisher) Publish(_ context.Context, env events.Envelope) (bool, error) {
	s.envelopes = append(s.envelopes, env)
	return s.published, s.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func seedUser() *models.User {
	return &models.User{
		ID:              uuid.New(),
		Email:           "old@b.com",
		DeliveryAddress: "2 Side St",
	}
}

func strPtr(v string) *string { return &v }

func TestUpdatePublishesContactEventWithOldAndNewValues(t *testing.T) {
	user := seedUser()
	repo := newStubUsersRepo(user)
	pub := &stubPublisher{published: true}
	svc, err := NewService(repo, pub, testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	result, err := svc.Update(context.Background(), user.ID.String(), UpdateUserRequest{Email: strPtr("a@b.com")})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !result.EventPublished {
		t.Fatalf("expected composite outcome to report published event")
	}
	if result.Email != "a@b.com" {
		t.Fatalf("expected committed email in response, got %q", result.Email)
	}

	if len(pub.envelopes) != 1 {
		t.Fatalf("expected exactly one publish call, got %d", len(pub.envelopes))
	}
	env := pub.envelopes[0]
	if env.Type != events.TypeUserContactUpdated {
		t.Fatalf("unexpected event type %q", env.Type)
	}
	if env.UserID != user.ID.String() {
		t.Fatalf("unexpected user id %q", env.UserID)
	}
	if env.Email != "a@b.com" || env.OldEmail != "old@b.com" {
		t.Fatalf("expected old/new email pair, got %+v", env.Payload)
	}
	if env.DeliveryAddress != "2 Side St" || env.OldDeliveryAddress != "2 Side St" {
		t.Fatalf("untouched address should carry through, got %+v", env.Payload)
	}
}

func TestUpdateWithNoFieldsReturnsCurrentStateWithoutPublishing(t *testing.T) {
	user := seedUser()
	repo := newStubUsersRepo(user)
	pub := &stubPublisher{}
	svc, _ := NewService(repo, pub, testLogger())

	result, err := svc.Update(context.Background(), user.ID.String(), UpdateUserRequest{})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if result.EventPublished {
		t.Fatalf("no-op update must not report a published event")
	}
	if result.Email != "old@b.com" {
		t.Fatalf("expected current state, got %q", result.Email)
	}
	if len(pub.envelopes) != 0 {
		t.Fatalf("no-op update must not call the publisher")
	}
	if repo.updatedFields != nil {
		t.Fatalf("no-op update must not write")
	}
}

func TestUpdateSurvivesPublishFailure(t *testing.T) {
	user := seedUser()
	repo := newStubUsersRepo(user)
	pub := &stubPublisher{err: errors.New("broker gone")}
	svc, _ := NewService(repo, pub, testLogger())

	result, err := svc.Update(context.Background(), user.ID.String(), UpdateUserRequest{Email: strPtr("a@b.com")})
	if err != nil {
		t.Fatalf("publish failure must not fail the request: %v", err)
	}
	if result.EventPublished {
		t.Fatalf("failed publish must be reported as unpublished")
	}
	if repo.users[user.ID].Email != "a@b.com" {
		t.Fatalf("record mutation must not be rolled back")
	}
}

func TestUpdateUnknownUser(t *testing.T) {
	repo := newStubUsersRepo()
	svc, _ := NewService(repo, &stubPublisher{}, testLogger())

	_, err := svc.Update(context.Background(), uuid.NewString(), UpdateUserRequest{Email: strPtr("a@b.com")})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
