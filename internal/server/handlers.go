package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/chrisdamba/retailiq/internal/analytics"
	"github.com/chrisdamba/retailiq/internal/repositories"
)

const maxForecastDays = 365

type handlers struct {
	reports Reports
	logger  *zap.Logger
}

type errorResponse struct {
	Error string `json:"error"`
}

type restockRequest struct {
	Stock *int `json:"stock"`
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) revenue(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.Revenue(r.Context())
	h.respond(w, report, err)
}

func (h *handlers) customers(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.Customers(r.Context())
	h.respond(w, report, err)
}

func (h *handlers) customer(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.Customer(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, report, err)
}

func (h *handlers) retention(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.Retention(r.Context())
	h.respond(w, report, err)
}

func (h *handlers) inventory(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.Inventory(r.Context())
	h.respond(w, report, err)
}

func (h *handlers) forecast(w http.ResponseWriter, r *http.Request) {
	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxForecastDays {
			h.writeError(w, http.StatusBadRequest, fmt.Errorf("days must be an integer between 1 and %d", maxForecastDays))
			return
		}
		days = n
	}
	report, err := h.reports.Forecast(r.Context(), chi.URLParam(r, "productID"), days)
	h.respond(w, report, err)
}

func (h *handlers) restock(w http.ResponseWriter, r *http.Request) {
	var req restockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Stock == nil {
		h.writeError(w, http.StatusBadRequest, errors.New(`body must be {"stock": <int>}`))
		return
	}
	item, err := h.reports.Restock(r.Context(), chi.URLParam(r, "productID"), *req.Stock)
	h.respond(w, item, err)
}

func (h *handlers) respond(w http.ResponseWriter, v any, err error) {
	if err != nil {
		h.writeError(w, statusFor(err), err)
		return
	}
	h.writeJSON(w, http.StatusOK, v)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, analytics.ErrNotFound), errors.Is(err, repositories.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repositories.ErrInvalidStock):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *handlers) writeError(w http.ResponseWriter, status int, err error) {
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.Error(err))
		msg = http.StatusText(status)
	}
	h.writeJSON(w, status, errorResponse{Error: msg})
}

func (h *handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("failed to encode response", zap.Error(err))
	}
}
