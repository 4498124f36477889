package orders

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/ordersync-backend/api/middleware"
	"github.com/angelmondragon/ordersync-backend/api/responses"
	"github.com/angelmondragon/ordersync-backend/api/validators"
	"github.com/angelmondragon/ordersync-backend/pkg/logger"
)

type Handlers struct {
	svc  Service
	logg *logger.Logger
}

func NewHandlers(svc Service, logg *logger.Logger) *Handlers {
	return &Handlers{svc: svc, logg: logg}
}

// NewRouter wires the order service HTTP surface.
func NewRouter(svc Service, logg *logger.Logger) http.Handler {
	h := NewHandlers(svc, logg)

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Post("/orders", h.Create)
	r.Get("/orders", h.List)
	// The static contact route must win over the {id} route.
	r.Put("/orders/contact", h.UpdateContact)
	r.Put("/orders/{id}/status", h.UpdateStatus)

	return r
}

func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}

	order, err := h.svc.Create(r.Context(), req)
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, order)
}

func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")

	found, err := h.svc.List(r.Context(), status)
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	responses.WriteSuccess(w, found)
}

func (h *Handlers) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}

	order, err := h.svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	responses.WriteSuccess(w, order)
}

func (h *Handlers) UpdateContact(w http.ResponseWriter, r *http.Request) {
	var req UpdateContactRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}

	result, err := h.svc.UpdateContact(r.Context(), req)
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	responses.WriteSuccess(w, result)
}
