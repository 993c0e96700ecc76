package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"coinwatch/internal/api/middleware"
	"coinwatch/internal/domain/alert"
	"coinwatch/pkg/errors"
	"coinwatch/pkg/logger"
)

// AlertsHandler serves alert rule CRUD under /api/alerts
type AlertsHandler struct {
	alerts *alert.Service
	log    *logger.Logger
}

// NewAlertsHandler creates the alerts handler
func NewAlertsHandler(svc *alert.Service, log *logger.Logger) *AlertsHandler {
	return &AlertsHandler{
		alerts: svc,
		log:    log.With("handler", "alerts"),
	}
}

// Collection routes /api/alerts by method
func (h *AlertsHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// Item routes /api/alerts/{id} and /api/alerts/{id}/toggle
func (h *AlertsHandler) Item(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/alerts/")
	idPart, action, _ := strings.Cut(rest, "/")

	id, err := uuid.Parse(idPart)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid alert id")
		return
	}

	if action == "toggle" {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.toggle(w, r, id)
		return
	}
	if action != "" {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPatch, http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *AlertsHandler) list(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFrom(r.Context())

	var (
		alerts []*alert.Alert
		err    error
	)
	if coinID := r.URL.Query().Get("coinId"); coinID != "" {
		alerts, err = h.alerts.ListForCoin(r.Context(), userID, coinID)
	} else {
		alerts, err = h.alerts.List(r.Context(), userID)
	}
	if err != nil {
		h.log.Errorf("List alerts failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to load alerts")
		return
	}

	writeJSON(w, http.StatusOK, alerts)
}

type alertPayload struct {
	AlertName      *string `json:"alertName"`
	CoinID         *string `json:"coinId"`
	CoinName       *string `json:"coinName"`
	CoinSymbol     *string `json:"coinSymbol"`
	AlertType      *string `json:"alertType"`
	Condition      *string `json:"condition"`
	ThresholdValue *string `json:"thresholdValue"`
	Frequency      *string `json:"frequency"`
	IsActive       *bool   `json:"isActive"`
}

func (h *AlertsHandler) create(w http.ResponseWriter, r *http.Request) {
	var payload alertPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := alert.CreateInput{
		UserID: middleware.UserIDFrom(r.Context()),
	}
	if payload.AlertName != nil {
		input.AlertName = *payload.AlertName
	}
	if payload.CoinID != nil {
		input.CoinID = *payload.CoinID
	}
	if payload.CoinName != nil {
		input.CoinName = *payload.CoinName
	}
	if payload.CoinSymbol != nil {
		input.CoinSymbol = *payload.CoinSymbol
	}
	if payload.AlertType != nil {
		input.AlertType = alert.Type(*payload.AlertType)
	}
	if payload.Condition != nil {
		input.Condition = alert.Condition(*payload.Condition)
	}
	if payload.ThresholdValue != nil {
		input.ThresholdValue = *payload.ThresholdValue
	}
	if payload.Frequency != nil {
		input.Frequency = alert.Frequency(*payload.Frequency)
	}

	created, err := h.alerts.Create(r.Context(), input)
	if err != nil {
		if errors.Is(err, errors.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Errorf("Create alert failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to create alert")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *AlertsHandler) get(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	a, err := h.alerts.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			writeError(w, http.StatusNotFound, "alert not found")
			return
		}
		h.log.Errorf("Get alert failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to load alert")
		return
	}

	writeJSON(w, http.StatusOK, a)
}

func (h *AlertsHandler) update(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var payload alertPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := alert.UpdateInput{
		AlertName:      payload.AlertName,
		ThresholdValue: payload.ThresholdValue,
		IsActive:       payload.IsActive,
	}
	if payload.AlertType != nil {
		alertType := alert.Type(*payload.AlertType)
		input.AlertType = &alertType
	}
	if payload.Condition != nil {
		condition := alert.Condition(*payload.Condition)
		input.Condition = &condition
	}
	if payload.Frequency != nil {
		frequency := alert.Frequency(*payload.Frequency)
		input.Frequency = &frequency
	}

	updated, err := h.alerts.Update(r.Context(), id, input)
	if err != nil {
		switch {
		case errors.Is(err, errors.ErrNotFound):
			writeError(w, http.StatusNotFound, "alert not found")
		case errors.Is(err, errors.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.log.Errorf("Update alert failed: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to update alert")
		}
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *AlertsHandler) toggle(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	toggled, err := h.alerts.Toggle(r.Context(), id)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			writeError(w, http.StatusNotFound, "alert not found")
			return
		}
		h.log.Errorf("Toggle alert failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to toggle alert")
		return
	}

	writeJSON(w, http.StatusOK, toggled)
}

func (h *AlertsHandler) delete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.alerts.Delete(r.Context(), id); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			writeError(w, http.StatusNotFound, "alert not found")
			return
		}
		h.log.Errorf("Delete alert failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete alert")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
