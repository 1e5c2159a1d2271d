package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	custommiddleware "github.com/veloxhost/dashboard-system/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware сервиса дашборда.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Route("/api/user", func(r chi.Router) {
		r.Use(h.authMiddleware.Middleware)

		r.Get("/dashboard", h.Dashboard)

		r.Get("/orders", h.GetOrders)
		r.Get("/services", h.GetServices)

		r.Get("/alerts", h.GetAlerts)
		r.Post("/alerts/{id}/read", h.MarkAlertRead)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
