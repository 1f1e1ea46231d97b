package middleware

import (
	"context"
	"net/http"

	"github.com/parlor-chat/parlor/internal/chat"
	"github.com/parlor-chat/parlor/internal/models"
	"github.com/parlor-chat/parlor/internal/session"
)

type contextKey string

const (
	userContextKey  contextKey = "user"
	tokenContextKey contextKey = "session_token"
)

// SessionCookie is the cookie carrying the opaque session token.
const SessionCookie = "parlor_session"

// AuthMiddleware resolves the session cookie to a chat identity. The core
// never reads session state itself; this is the boundary's authorization
// check, performed before any store operation runs.
type AuthMiddleware struct {
	sessions session.Store
	registry *chat.Store
}

// NewAuthMiddleware creates the session-cookie auth middleware.
func NewAuthMiddleware(sessions session.Store, registry *chat.Store) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions, registry: registry}
}

// RequireAuth rejects requests without a live session. Unauthenticated
// callers get 401 with the login path, the JSON equivalent of a redirect.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookie)
		if err != nil || cookie.Value == "" {
			unauthorized(w)
			return
		}

		username, err := m.sessions.Lookup(r.Context(), cookie.Value)
		if err != nil || username == "" {
			unauthorized(w)
			return
		}

		user := m.registry.Lookup(username)
		if user == nil {
			// Session survived a restart the volatile registry did not.
			unauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		ctx = context.WithValue(ctx, tokenContextKey, cookie.Value)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserFromContext returns the authenticated identity, or nil.
func GetUserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userContextKey).(*models.User)
	return user
}

// GetSessionToken returns the session token of the authenticated request.
func GetSessionToken(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey).(string)
	return token
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"authentication required","login":"/login"}`))
}
