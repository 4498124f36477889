package users

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

// NewRouter wires the user service HTTP surface.
func NewRouter(svc Service, logg *logger.Logger) http.Handler {
	h := NewHandlers(svc, logg)

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Post("/users", h.Create)
	r.Get("/users/{id}", h.Get)
	r.Put("/users/{id}", h.Update)

	return r
}

func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}

	user, err := h.svc.Create(r.Context(), req)
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, user)
}

func (h *Handlers) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	responses.WriteSuccess(w, user)
}

func (h *Handlers) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}

	result, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	responses.WriteSuccess(w, result)
}
