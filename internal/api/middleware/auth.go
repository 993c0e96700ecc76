package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"coinwatch/internal/domain/user"
	authservice "coinwatch/internal/services/auth"
	"coinwatch/pkg/logger"
)

type contextKey string

const userContextKey contextKey = "authenticated_user"

// Auth resolves the session token on incoming requests. Tokens arrive
// either in the session cookie or an Authorization bearer header.
type Auth struct {
	authSvc    *authservice.Service
	cookieName string
	signInPath string
	log        *logger.Logger
}

// NewAuth creates the auth middleware
func NewAuth(authSvc *authservice.Service, cookieName string, log *logger.Logger) *Auth {
	return &Auth{
		authSvc:    authSvc,
		cookieName: cookieName,
		signInPath: "/sign-in",
		log:        log.With("component", "auth_middleware"),
	}
}

// Token extracts the session token from a request, cookie first
func (a *Auth) Token(r *http.Request) string {
	if cookie, err := r.Cookie(a.cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}

	return ""
}

// Optional attaches the user to the request context when a valid
// session is present, and passes the request through otherwise.
func (a *Auth) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := a.Token(r)
		if token != "" {
			if usr, err := a.authSvc.ValidateToken(r.Context(), token); err == nil {
				r = r.WithContext(WithUser(r.Context(), usr))
			} else {
				a.log.Debugw("Session token rejected", "error", err)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Required rejects requests without a valid session with 401
func (a *Auth) Required(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := a.Token(r)
		if token == "" {
			unauthorized(w)
			return
		}

		usr, err := a.authSvc.ValidateToken(r.Context(), token)
		if err != nil {
			a.log.Debugw("Session token rejected", "error", err)
			unauthorized(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), usr)))
	})
}

// Gate redirects browser requests without a valid session to the
// sign-in page instead of answering with a JSON error.
func (a *Auth) Gate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := a.Token(r)
		if token == "" {
			http.Redirect(w, r, a.signInPath, http.StatusFound)
			return
		}

		usr, err := a.authSvc.ValidateToken(r.Context(), token)
		if err != nil {
			http.Redirect(w, r, a.signInPath, http.StatusFound)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), usr)))
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
}

// WithUser stores the authenticated user in a context
func WithUser(ctx context.Context, usr *user.User) context.Context {
	return context.WithValue(ctx, userContextKey, usr)
}

// UserFrom returns the authenticated user, if any
func UserFrom(ctx context.Context) (*user.User, bool) {
	usr, ok := ctx.Value(userContextKey).(*user.User)
	return usr, ok
}

// UserIDFrom returns the authenticated user's ID, or nil for the
// anonymous session.
func UserIDFrom(ctx context.Context) *uuid.UUID {
	if usr, ok := UserFrom(ctx); ok {
		id := usr.ID
		return &id
	}
	return nil
}
