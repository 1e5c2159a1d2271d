// Package handler содержит HTTP-обработчики API сервиса клиентского дашборда.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/veloxhost/dashboard-system/internal/middleware"
	"github.com/veloxhost/dashboard-system/internal/model"
	"github.com/veloxhost/dashboard-system/internal/repository"
	"github.com/veloxhost/dashboard-system/internal/validation"
)

const defaultRange = model.Range30Days

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	DashboardData(ctx context.Context, ident model.Identity, rng model.TimeRange, now time.Time) (*model.DashboardData, error)
	GetOrdersByUser(ctx context.Context, userID int64) ([]model.Order, error)
	GetServicesByUser(ctx context.Context, userID int64) ([]model.Service, error)
	GetAlertsByUser(ctx context.Context, userID int64, limit int) ([]model.Alert, error)
	MarkAlertRead(ctx context.Context, userID int64, alertID string) error
}

// Handler реализует HTTP-обработчики API сервиса клиентского дашборда.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
	}
}

// Dashboard возвращает данные дашборда текущего пользователя за выбранное окно.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	rangeParam := r.URL.Query().Get("range")
	rng := defaultRange
	if rangeParam != "" {
		parsed, err := model.ParseTimeRange(rangeParam)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		rng = parsed
	}

	data, err := h.service.DashboardData(r.Context(), ident, rng, time.Now().UTC())
	if err != nil {
		h.logger.Error("dashboard error", zap.Error(err), zap.Int64("userID", ident.UserID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if data.Degraded.Any() {
		h.logger.Warn("dashboard served with degraded channels",
			zap.Int64("userID", ident.UserID),
			zap.Bool("orders", data.Degraded.Orders),
			zap.Bool("services", data.Degraded.Services),
			zap.Bool("alerts", data.Degraded.Alerts),
			zap.Bool("profile", data.Degraded.Profile),
		)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
}

type orderResponse struct {
	ID          string            `json:"id"`
	Items       []model.OrderItem `json:"items,omitempty"`
	TotalAmount float64           `json:"total_amount"`
	Status      string            `json:"status"`
	CreatedAt   string            `json:"created_at"`
}

// GetOrders возвращает список заказов текущего пользователя.
func (h *Handler) GetOrders(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	orders, err := h.service.GetOrdersByUser(r.Context(), ident.UserID)
	if err != nil {
		h.logger.Error("get orders error", zap.Error(err), zap.Int64("userID", ident.UserID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if len(orders) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, orderResponse{
			ID:          o.ID,
			Items:       o.Items,
			TotalAmount: o.TotalAmount,
			Status:      string(o.Status),
			CreatedAt:   o.CreatedAt.Time().Format(time.RFC3339),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
}

// GetServices возвращает список услуг текущего пользователя.
func (h *Handler) GetServices(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	services, err := h.service.GetServicesByUser(r.Context(), ident.UserID)
	if err != nil {
		h.logger.Error("get services error", zap.Error(err), zap.Int64("userID", ident.UserID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if len(services) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(services); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
}

// GetAlerts возвращает уведомления текущего пользователя.
func (h *Handler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || !validation.IsValidAlertLimit(parsed) {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	alerts, err := h.service.GetAlertsByUser(r.Context(), ident.UserID, limit)
	if err != nil {
		h.logger.Error("get alerts error", zap.Error(err), zap.Int64("userID", ident.UserID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if len(alerts) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(alerts); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
}

// MarkAlertRead помечает уведомление текущего пользователя прочитанным.
func (h *Handler) MarkAlertRead(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	alertID := chi.URLParam(r, "id")
	if !validation.IsValidAlertID(alertID) {
		http.Error(w, http.StatusText(http.StatusUnprocessableEntity), http.StatusUnprocessableEntity)
		return
	}

	err := h.service.MarkAlertRead(r.Context(), ident.UserID, alertID)
	if err != nil {
		if errors.Is(err, repository.ErrAlertNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		h.logger.Error("mark alert read error", zap.Error(err), zap.Int64("userID", ident.UserID), zap.String("alert", alertID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}
