package users

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/angelmondragon/ordersync-backend/pkg/db/models"
	"github.com/angelmondragon/ordersync-backend/pkg/events"
	"github.com/google/uuid"
)

func TestUpdateEndpointReportsCompositeOutcome(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "old@b.com", DeliveryAddress: "2 Side St"}
	repo := newStubUsersRepo(user)
	pub := &stubPublisher{published: true}
	svc, err := NewService(repo, pub, testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	router := NewRouter(svc, testLogger())

	req := httptest.NewRequest("PUT", "/users/"+user.ID.String(), strings.NewReader(`{"email":"a@b.com"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}

	var body struct {
		Email          string `json:"email"`
		EventPublished bool   `json:"event_published"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if body.Email != "a@b.com" || !body.EventPublished {
		t.Fatalf("unexpected body: %+v", body)
	}

	if len(pub.envelopes) != 1 || pub.envelopes[0].Type != events.TypeUserContactUpdated {
		t.Fatalf("expected one contact event, got %+v", pub.envelopes)
	}
}

func TestUpdateEndpointUnknownUserIs404(t *testing.T) {
	svc, _ := NewService(newStubUsersRepo(), &stubPublisher{}, testLogger())
	router := NewRouter(svc, testLogger())

	req := httptest.NewRequest("PUT", "/users/"+uuid.NewString(), strings.NewReader(`{"email":"a@b.com"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCreateEndpointValidatesBody(t *testing.T) {
	svc, _ := NewService(newStubUsersRepo(), &stubPublisher{}, testLogger())
	router := NewRouter(svc, testLogger())

	req := httptest.NewRequest("POST", "/users", strings.NewReader(`{"email":"nope"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
