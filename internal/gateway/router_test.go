package gateway

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/ordersync-backend/pkg/config"
)

func TestRouterSplitsUserTrafficAcrossVersions(t *testing.T) {
	hitsA, hitsB := 0, 0
	backendA := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hitsA++
		io.WriteString(w, `{"version":"a"}`)
	}))
	defer backendA.Close()
	backendB := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hitsB++
		io.WriteString(w, `{"version":"b"}`)
	}))
	defer backendB.Close()

	router := NewRouter(config.GatewayConfig{
		UserBackendA:     backendA.URL,
		UserBackendB:     backendB.URL,
		OrderBackend:     backendA.URL,
		SplitProbability: 0.5,
		ForwardTimeout:   time.Second,
	}, testLogger())

	for i := 0; i < 200; i++ {
		req := httptest.NewRequest("POST", "/users", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	}

	if hitsA == 0 || hitsB == 0 {
		t.Fatalf("expected both versions to receive traffic, got a=%d b=%d", hitsA, hitsB)
	}
	if hitsA+hitsB != 200 {
		t.Fatalf("lost requests: a=%d b=%d", hitsA, hitsB)
	}
}

func TestRouterPinsOrderTrafficToOrderBackend(t *testing.T) {
	var gotPath, gotQuery string
	orders := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		io.WriteString(w, `[]`)
	}))
	defer orders.Close()

	router := NewRouter(config.GatewayConfig{
		UserBackendA:     "http://127.0.0.1:1",
		UserBackendB:     "http://127.0.0.1:1",
		OrderBackend:     orders.URL,
		SplitProbability: 0.5,
		ForwardTimeout:   time.Second,
	}, testLogger())

	req := httptest.NewRequest("GET", "/orders?user_id=abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotPath != "/orders" || gotQuery != "user_id=abc" {
		t.Fatalf("path or query not preserved: %q %q", gotPath, gotQuery)
	}
}

func TestRouterUnreachableOrderBackendIs503(t *testing.T) {
	router := NewRouter(config.GatewayConfig{
		UserBackendA:     "http://127.0.0.1:1",
		UserBackendB:     "http://127.0.0.1:1",
		OrderBackend:     "http://127.0.0.1:1",
		SplitProbability: 0.5,
		ForwardTimeout:   time.Second,
	}, testLogger())

	req := httptest.NewRequest("POST", "/orders", strings.NewReader(`{"user_id":"u1"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != `{"error":"Microservice unavailable"}` {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}
