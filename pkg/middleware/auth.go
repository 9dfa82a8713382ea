package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/taitfuller/feedr-backend/pkg/logger"
)

type contextKeyType string

const userIDKey contextKeyType = "user_id"

// TokenValidator verifies a bearer token and returns the authenticated user id.
type TokenValidator func(token string) (string, error)

// Auth rejects requests without a valid bearer token and stores the
// authenticated user id in the request context.
func Auth(validate TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing authorization header")
				return
			}

			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
				writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid authorization header format")
				return
			}

			userID, err := validate(strings.TrimSpace(token))
			if err != nil || userID == "" {
				writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token")
				return
			}

			ctx := WithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithUserID stores the authenticated user id in ctx. It is also visible to
// request-scoped loggers.
func WithUserID(ctx context.Context, userID string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return logger.WithUserID(ctx, userID)
}

// UserIDFromContext returns the user id set by Auth, or "".
func UserIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}
