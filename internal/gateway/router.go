package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/ordersync-backend/api/middleware"
	"github.com/angelmondragon/ordersync-backend/pkg/config"
	"github.com/angelmondragon/ordersync-backend/pkg/logger"
)

// NewRouter wires the public gateway surface: user endpoints split across
// the two user service versions, order endpoints pinned to the single
// order backend.
func NewRouter(cfg config.GatewayConfig, logg *logger.Logger) http.Handler {
	splitter := NewSplitter(cfg.SplitProbability)
	forwarder := NewForwarder(cfg.ForwardTimeout, logg)

	userBackend := func() string {
		return splitter.Pick(cfg.UserBackendA, cfg.UserBackendB)
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Post("/users", func(w http.ResponseWriter, req *http.Request) {
		forwarder.Forward(w, req, userBackend())
	})
	r.Put("/users/{id}", func(w http.ResponseWriter, req *http.Request) {
		forwarder.Forward(w, req, userBackend())
	})

	r.Post("/orders", func(w http.ResponseWriter, req *http.Request) {
		forwarder.Forward(w, req, cfg.OrderBackend)
	})
	r.Get("/orders", func(w http.ResponseWriter, req *http.Request) {
		forwarder.Forward(w, req, cfg.OrderBackend)
	})
	r.Put("/orders/{id}/status", func(w http.ResponseWriter, req *http.Request) {
		forwarder.Forward(w, req, cfg.OrderBackend)
	})
	r.Put("/orders/contact", func(w http.ResponseWriter, req *http.Request) {
		forwarder.Forward(w, req, cfg.OrderBackend)
	})

	return r
}
