package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

type tokenValidator interface {
	Authenticate(token string) (string, error)
}

type contextKey string

const userIDContextKey contextKey = "user_id"

// Every rejection carries this message so clients cannot tell a malformed,
// forged or expired token apart.
const unauthorizedMessage = "invalid or expired token"

type AuthMiddleware struct {
	validator tokenValidator
}

func NewAuthMiddleware(validator tokenValidator) *AuthMiddleware {
	return &AuthMiddleware{validator: validator}
}

func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", unauthorizedMessage)
			return
		}

		userID, err := m.validator.Authenticate(token)
		if err != nil {
			slog.Debug("token rejected", "request_id", RequestIDFromContext(r.Context()), "reason", err.Error())
			writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", unauthorizedMessage)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[7:])
	return token, token != ""
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	return userID, ok && userID != ""
}
