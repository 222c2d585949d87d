package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"loot/internal/caller"
	"loot/pkg/requestcontext"
)

// TokenValidator turns a bearer token into the calling principal.
type TokenValidator interface {
	Validate(tokenString string) (caller.Principal, error)
}

// AuthFailureCounter counts rejected tokens by reason.
type AuthFailureCounter interface {
	IncrementAuthFailure(reason string)
}

// Authenticate resolves the bearer token, when present, into a
// caller.Principal on the request context. Requests without an
// Authorization header pass through anonymously; a malformed or invalid
// token is rejected with 401.
func Authenticate(validator TokenValidator, failures AuthFailureCounter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				countFailure(failures, "malformed_header")
				logger.WarnContext(ctx, "unauthorized access - malformed authorization header",
					"request_id", requestID,
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			principal, err := validator.Validate(token)
			if err != nil {
				countFailure(failures, "invalid_token")
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(caller.WithPrincipal(ctx, principal)))
		})
	}
}

// RequireCaller rejects requests that Authenticate left anonymous.
func RequireCaller(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := caller.FromContext(r.Context()); !ok {
				logger.WarnContext(r.Context(), "unauthorized access - missing token",
					"request_id", requestcontext.RequestID(r.Context()),
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func countFailure(c AuthFailureCounter, reason string) {
	if c != nil {
		c.IncrementAuthFailure(reason)
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`)) //nolint:errcheck // headers already sent
}
