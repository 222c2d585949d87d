package middleware

import (
	"log/slog"
	"net/http"

	"loot/internal/caller"
	"loot/pkg/domain"
	"loot/pkg/requestcontext"
)

// RequireAdmin lets through only the administrator calling directly.
func RequireAdmin(admin domain.Address, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			p, ok := caller.FromContext(ctx)
			if !ok || !p.IsDirect() || p.Address != admin {
				logger.WarnContext(ctx, "admin route rejected",
					"caller", p.Address.String(),
					"request_id", requestcontext.RequestID(ctx),
				)
				writeUnauthorized(w, "administrator required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
