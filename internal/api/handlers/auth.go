package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"coinwatch/internal/api/middleware"
	"coinwatch/internal/domain/user"
	authservice "coinwatch/internal/services/auth"
	"coinwatch/pkg/errors"
	"coinwatch/pkg/logger"
)

// AuthHandler serves session endpoints under /api/auth
type AuthHandler struct {
	auth          *authservice.Service
	authMW        *middleware.Auth
	cookieName    string
	cookieSecure  bool
	tokenDuration time.Duration
	log           *logger.Logger
}

// NewAuthHandler creates the auth handler
func NewAuthHandler(
	auth *authservice.Service,
	authMW *middleware.Auth,
	cookieName string,
	cookieSecure bool,
	tokenDuration time.Duration,
	log *logger.Logger,
) *AuthHandler {
	return &AuthHandler{
		auth:          auth,
		authMW:        authMW,
		cookieName:    cookieName,
		cookieSecure:  cookieSecure,
		tokenDuration: tokenDuration,
		log:           log.With("handler", "auth"),
	}
}

type credentialsPayload struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type sessionResponse struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var payload credentialsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.auth.Register(r.Context(), authservice.RegisterInput{
		Email:     payload.Email,
		Password:  payload.Password,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
	})
	if err != nil {
		switch {
		case errors.Is(err, errors.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "email and password are required")
		case errors.Is(err, authservice.ErrEmailAlreadyExists):
			writeError(w, http.StatusConflict, "email already registered")
		default:
			h.log.Errorf("Registration failed: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to register")
		}
		return
	}

	h.setSessionCookie(w, result.Token)
	writeJSON(w, http.StatusCreated, sessionResponse{Token: result.Token, User: result.User})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var payload credentialsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.auth.Login(r.Context(), authservice.LoginInput{
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, errors.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "email and password are required")
		case errors.Is(err, authservice.ErrInvalidCredentials),
			errors.Is(err, authservice.ErrUserDeactivated):
			writeError(w, http.StatusUnauthorized, "invalid email or password")
		default:
			h.log.Errorf("Login failed: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to log in")
		}
		return
	}

	h.setSessionCookie(w, result.Token)
	writeJSON(w, http.StatusOK, sessionResponse{Token: result.Token, User: result.User})
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if token := h.authMW.Token(r); token != "" {
		if err := h.auth.Logout(r.Context(), token); err != nil {
			h.log.Warnw("Token revocation failed", "error", err)
		}
	}

	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	usr, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	writeJSON(w, http.StatusOK, usr)
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokenDuration.Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
