package contactsync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/angelmondragon/ordersync-backend/pkg/config"
	"github.com/angelmondragon/ordersync-backend/pkg/events"
	"github.com/angelmondragon/ordersync-backend/pkg/logger"
)

// contactRequest mirrors the order service's contact update body. Only
// the fields present on the event are sent.
type contactRequest struct {
	UserID          string  `json:"user_id"`
	Email           *string `json:"email,omitempty"`
	DeliveryAddress *string `json:"delivery_address,omitempty"`
}

type contactResponse struct {
	UpdatedCount int64 `json:"updated_count"`
}

// Handler propagates a user's new contact details to the order service.
// It runs as the handler for user.contact.updated deliveries; failures
// bubble up to the dispatcher, which logs and acknowledges regardless.
type Handler struct {
	client  *http.Client
	baseURL string
	logg    *logger.Logger
}

func NewHandler(cfg config.SyncConfig, logg *logger.Logger) *Handler {
	return &Handler{
		client:  &http.Client{Timeout: cfg.RequestTimeout},
		baseURL: strings.TrimSuffix(cfg.OrderServiceURL, "/"),
		logg:    logg,
	}
}

// Handle PUTs the event's contact fields to the order service. A non-2xx
// response and a transport error are the same failure to the caller.
func (h *Handler) Handle(ctx context.Context, env events.Envelope) error {
	payload := contactRequest{UserID: env.UserID}
	if env.Email != "" {
		payload.Email = &env.Email
	}
	if env.DeliveryAddress != "" {
		payload.DeliveryAddress = &env.DeliveryAddress
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("contactsync: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, h.baseURL+"/orders/contact", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("contactsync: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("contactsync: calling order service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("contactsync: order service returned %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}

	var result contactResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("contactsync: decoding response: %w", err)
	}

	if h.logg != nil {
		logCtx := h.logg.WithFields(ctx, map[string]any{
			"user_id":       env.UserID,
			"updated_count": result.UpdatedCount,
		})
		h.logg.Info(logCtx, "contact sync applied to orders")
	}
	return nil
}
