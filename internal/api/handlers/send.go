package handlers

import (
	"encoding/json"
	"net/http"

	"coinwatch/internal/adapters/email"
	"coinwatch/internal/metrics"
	"coinwatch/pkg/errors"
	"coinwatch/pkg/logger"
)

// SendHandler serves transactional email delivery
type SendHandler struct {
	sender email.Sender
	log    *logger.Logger
}

// NewSendHandler creates the email send handler
func NewSendHandler(sender email.Sender, log *logger.Logger) *SendHandler {
	return &SendHandler{
		sender: sender,
		log:    log.With("handler", "send"),
	}
}

type sendPayload struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text"`
}

// Send handles POST /api/send
func (h *SendHandler) Send(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var payload sendPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(payload.To) == 0 || payload.Subject == "" {
		writeError(w, http.StatusBadRequest, "to and subject are required")
		return
	}
	if payload.HTML == "" && payload.Text == "" {
		writeError(w, http.StatusBadRequest, "html or text body is required")
		return
	}

	id, err := h.sender.Send(r.Context(), email.Message{
		To:      payload.To,
		Subject: payload.Subject,
		HTML:    payload.HTML,
		Text:    payload.Text,
	})
	metrics.RecordEmailSend(err)
	if err != nil {
		if errors.Is(err, email.ErrNotConfigured) {
			writeError(w, http.StatusServiceUnavailable, "email delivery is not configured")
			return
		}

		var upstreamErr *errors.UpstreamError
		if errors.As(err, &upstreamErr) {
			writeError(w, upstreamErr.StatusCode, "Email provider error: "+upstreamErr.Status)
			return
		}

		h.log.Errorf("Email send failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to send email")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}
