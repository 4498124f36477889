package gateway

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/ordersync-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestForwardMirrorsBackendResponse(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		if r.URL.Path != "/orders/contact" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.RawQuery != "limit=5" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"user_id":"u1"}` {
			t.Errorf("unexpected body %q", body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		io.WriteString(w, `{"detail":"boom"}`)
	}))
	defer backend.Close()

	f := NewForwarder(time.Second, testLogger())
	req := httptest.NewRequest("PUT", "/orders/contact?limit=5", strings.NewReader(`{"user_id":"u1"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	f.Forward(rec, req, backend.URL)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if rec.Body.String() != `{"detail":"boom"}` {
		t.Fatalf("body not mirrored: %q", rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type not mirrored: %q", ct)
	}
}

func TestForwardUnreachableBackendIs503(t *testing.T) {
	f := NewForwarder(time.Second, testLogger())
	req := httptest.NewRequest("GET", "/orders", nil)
	rec := httptest.NewRecorder()

	f.Forward(rec, req, "http://127.0.0.1:1")

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d body=%s", rec.Code, rec.Body.String())
	}
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if body.Error != "Microservice unavailable" {
		t.Fatalf("unexpected error message %q", body.Error)
	}
}

func TestForwardSlowBackendIs504(t *testing.T) {
	release := make(chan struct{})
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer backend.Close()
	defer close(release)

	f := NewForwarder(50*time.Millisecond, testLogger())
	req := httptest.NewRequest("GET", "/orders", nil)
	rec := httptest.NewRecorder()

	f.Forward(rec, req, backend.URL)

	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %d", rec.Code)
	}
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if body.Error != "Microservice timed out" {
		t.Fatalf("unexpected error message %q", body.Error)
	}
}
