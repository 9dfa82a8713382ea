package middleware

import (
	"log/slog"
	"net/http"

	"github.com/taitfuller/feedr-backend/pkg/logger"
)

// RequestLogger stores a logger enriched with the request's correlation id,
// user id and trace ids in the context. Handlers retrieve it with
// logger.FromContext.
//
// Mount it after RequestLogging, Tracing and Auth so those values are set.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
