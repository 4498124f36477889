package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/angelmondragon/ordersync-backend/pkg/logger"
)

const (
	msgUnavailable = "Microservice unavailable"
	msgTimedOut    = "Microservice timed out"
)

type errorBody struct {
	Error string `json:"error"`
}

// Forwarder relays a request to a backend and mirrors the backend's
// response verbatim. Backend failures become one of three synthetic
// responses: 503 for connectivity, 504 for timeout, 500 for anything
// else. The gateway never retries.
type Forwarder struct {
	client *http.Client
	logg   *logger.Logger
}

func NewForwarder(timeout time.Duration, logg *logger.Logger) *Forwarder {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Forwarder{
		client: &http.Client{Timeout: timeout},
		logg:   logg,
	}
}

// Forward relays the original method, path, query, and body to the
// backend base URL and streams the response back.
func (f *Forwarder) Forward(w http.ResponseWriter, r *http.Request, backendBase string) {
	target := backendBase + r.URL.Path
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(r.Context(), r.Method, target, r.Body)
	if err != nil {
		f.writeFailure(r.Context(), w, http.StatusInternalServerError, err.Error(), err)
		return
	}
	if ct := r.Header.Get("Content-Type"); ct != "" {
		req.Header.Set("Content-Type", ct)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		status, msg := classifyForwardError(err)
		f.writeFailure(r.Context(), w, status, msg, err)
		return
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil && f.logg != nil {
		f.logg.Error(r.Context(), "streaming backend response failed", err)
	}
}

// classifyForwardError maps transport failures onto the gateway's three
// synthetic statuses. Timeouts are checked first because a dial timeout
// is both a net.Error timeout and a connectivity failure.
func classifyForwardError(err error) (int, string) {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return http.StatusGatewayTimeout, msgTimedOut
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, msgTimedOut
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return http.StatusServiceUnavailable, msgUnavailable
	}

	return http.StatusInternalServerError, err.Error()
}

func (f *Forwarder) writeFailure(ctx context.Context, w http.ResponseWriter, status int, msg string, cause error) {
	if f.logg != nil {
		logCtx := f.logg.WithField(ctx, "status", status)
		f.logg.Error(logCtx, "forwarding failed", cause)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(errorBody{Error: msg}); err != nil && f.logg != nil {
		f.logg.Error(ctx, "writing gateway error body failed", err)
	}
}
