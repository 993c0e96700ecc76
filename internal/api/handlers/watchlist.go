package handlers

import (
	"encoding/json"
	"net/http"

	"coinwatch/internal/api/middleware"
	"coinwatch/internal/domain/watchlist"
	"coinwatch/pkg/errors"
	"coinwatch/pkg/logger"
)

// WatchlistHandler serves the tracked-coins collection
type WatchlistHandler struct {
	watchlist *watchlist.Service
	log       *logger.Logger
}

// NewWatchlistHandler creates the watchlist handler
func NewWatchlistHandler(svc *watchlist.Service, log *logger.Logger) *WatchlistHandler {
	return &WatchlistHandler{
		watchlist: svc,
		log:       log.With("handler", "watchlist"),
	}
}

// ServeHTTP routes /api/watchlist by method
func (h *WatchlistHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.add(w, r)
	case http.MethodDelete:
		h.remove(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *WatchlistHandler) list(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFrom(r.Context())

	items, err := h.watchlist.List(r.Context(), userID)
	if err != nil {
		h.log.Errorf("List watchlist failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to load watchlist")
		return
	}

	writeJSON(w, http.StatusOK, items)
}

func (h *WatchlistHandler) add(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		CoinID string `json:"coinId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "coinId is required")
		return
	}

	userID := middleware.UserIDFrom(r.Context())

	item, err := h.watchlist.Add(r.Context(), userID, payload.CoinID)
	if err != nil {
		switch {
		case errors.Is(err, errors.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "coinId is required")
		case errors.Is(err, errors.ErrAlreadyExists):
			writeError(w, http.StatusConflict, "coin already in watchlist")
		default:
			h.log.Errorf("Add to watchlist failed: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to update watchlist")
		}
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

func (h *WatchlistHandler) remove(w http.ResponseWriter, r *http.Request) {
	coinID := r.URL.Query().Get("coinId")
	if coinID == "" {
		// Fall back to a JSON body for clients that send one
		var payload struct {
			CoinID string `json:"coinId"`
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		coinID = payload.CoinID
	}

	userID := middleware.UserIDFrom(r.Context())

	if err := h.watchlist.Remove(r.Context(), userID, coinID); err != nil {
		if errors.Is(err, errors.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, "coinId is required")
			return
		}
		h.log.Errorf("Remove from watchlist failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to update watchlist")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
