// Package api exposes the operator HTTP surface: suppression list
// management, reputation views, and template previews.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/homegate/notify-pipeline/internal/domain"
	"github.com/homegate/notify-pipeline/internal/mailing"
	"github.com/homegate/notify-pipeline/internal/service/reputation"
	"github.com/homegate/notify-pipeline/internal/service/suppression"
)

// Handlers carries the service dependencies for all HTTP handlers.
type Handlers struct {
	suppression *suppression.Service
	reputation  *reputation.Service
	engine      *mailing.Engine
	startTime   time.Time
}

// NewHandlers creates the handler set.
func NewHandlers(supp *suppression.Service, rep *reputation.Service, engine *mailing.Engine) *Handlers {
	return &Handlers{
		suppression: supp,
		reputation:  rep,
		engine:      engine,
		startTime:   time.Now(),
	}
}

// HealthCheck reports liveness.
//
//	GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"uptime": time.Since(h.startTime).Round(time.Second).String(),
	})
}

// CheckSuppression runs the pre-send check for one address.
//
//	GET /api/suppression/check/{email}
func (h *Handlers) CheckSuppression(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if email == "" {
		respondError(w, http.StatusBadRequest, "email is required")
		return
	}
	respondJSON(w, http.StatusOK, h.suppression.IsSuppressed(r.Context(), email))
}

// ListSuppressed returns active suppression records.
//
//	GET /api/suppression?limit=100
func (h *Handlers) ListSuppressed(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	records := h.suppression.ListSuppressed(r.Context(), limit)
	if records == nil {
		records = []domain.SuppressionRecord{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"records": records,
		"count":   len(records),
	})
}

// CreateSuppression adds an address to the list.
//
//	POST /api/suppression
func (h *Handlers) CreateSuppression(w http.ResponseWriter, r *http.Request) {
	var req suppression.SuppressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := h.suppression.Suppress(r.Context(), req)
	if err != nil {
		if errors.Is(err, suppression.ErrEmailRequired) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to suppress address")
		return
	}
	respondJSON(w, http.StatusCreated, rec)
}

// SuppressionStats returns aggregate counts over the active list.
//
//	GET /api/suppression/stats
func (h *Handlers) SuppressionStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.suppression.Stats(r.Context()))
}

// ReactivateAddress clears an address for sending again.
//
//	POST /api/suppression/{email}/reactivate
func (h *Handlers) ReactivateAddress(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if email == "" {
		respondError(w, http.StatusBadRequest, "email is required")
		return
	}

	var body struct {
		ActorID string `json:"actor_id"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	reactivated := h.suppression.Reactivate(r.Context(), email, body.ActorID)
	respondJSON(w, http.StatusOK, map[string]bool{"reactivated": reactivated})
}

// CurrentReputation returns today's stored metrics row.
//
//	GET /api/reputation/current
func (h *Handlers) CurrentReputation(w http.ResponseWriter, r *http.Request) {
	date := time.Now().UTC().Format("2006-01-02")
	m := h.reputation.MetricsFor(r.Context(), date)
	if m == nil {
		respondError(w, http.StatusNotFound, "no metrics recorded for "+date)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

// ReputationForDate returns the row for one date.
//
//	GET /api/reputation/{date}
func (h *Handlers) ReputationForDate(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		respondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	m := h.reputation.MetricsFor(r.Context(), date)
	if m == nil {
		respondError(w, http.StatusNotFound, "no metrics recorded for "+date)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

// ReputationHistory returns recent rows, newest first.
//
//	GET /api/reputation/history?days=30
func (h *Handlers) ReputationHistory(w http.ResponseWriter, r *http.Request) {
	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		days = n
	}

	rows := h.reputation.RecentMetrics(r.Context(), days)
	if rows == nil {
		rows = []domain.ReputationMetrics{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"metrics": rows,
		"count":   len(rows),
	})
}

// ReputationAlerts recomputes alert predicates from fresh provider data.
//
//	GET /api/reputation/alerts
func (h *Handlers) ReputationAlerts(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.reputation.CheckAlerts(r.Context()))
}

// RefreshReputation triggers an on-demand metrics run.
//
//	POST /api/reputation/refresh
func (h *Handlers) RefreshReputation(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.reputation.UpdateDailyMetrics(r.Context()))
}

// PreviewTemplate renders a template against a payload without sending.
// Validation failures come back as 422 with the full missing-variable list.
//
//	POST /api/templates/preview
func (h *Handlers) PreviewTemplate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Template domain.NotificationTemplate `json:"template"`
		Payload  map[string]interface{}      `json:"payload"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rendered, err := h.engine.Render(&req.Template, req.Payload)
	if err != nil {
		var verr *mailing.ValidationError
		if errors.As(err, &verr) {
			respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"error":             verr.Error(),
				"missing_variables": verr.MissingVariables,
			})
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to render template")
		return
	}
	respondJSON(w, http.StatusOK, rendered)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
