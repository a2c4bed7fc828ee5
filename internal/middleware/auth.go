package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bookshelf/bookshelf/internal/auth"
	"github.com/bookshelf/bookshelf/internal/metrics"
	"github.com/bookshelf/bookshelf/internal/model"
)

// Authorizer resolves a bearer token to a live principal. *auth.Guard implements it.
type Authorizer interface {
	Authorize(ctx context.Context, token string) (*model.Principal, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger  *slog.Logger
	Guard   Authorizer
	Metrics metrics.Recorder
}

// Authenticate returns a middleware that requires a valid bearer token.
// On success the principal is stored in the request context; every failure
// produces the same 401 response and only the log line carries the cause.
func Authenticate(cfg AuthConfig) func(http.Handler) http.Handler {
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := cfg.Guard.Authorize(r.Context(), extractBearerToken(r))
			if err != nil {
				cause := auth.CauseOf(err)
				if cause == "" {
					cause = auth.CauseLookupFailed
				}
				recorder.IncAuthRejected(string(cause))

				attrs := []any{
					slog.String("reason", string(cause)),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				}
				if cause == auth.CauseLookupFailed {
					if inner := errors.Unwrap(err); inner != nil {
						err = inner
					}
					cfg.Logger.Error("authentication failed", append(attrs, slog.String("error", err.Error()))...)
				} else {
					cfg.Logger.Warn("authentication failed", attrs...)
				}

				WriteUnauthorized(w, "Could not validate credentials")
				return
			}

			cfg.Logger.Debug("authentication successful",
				slog.Int64("seller_id", principal.SellerID),
				slog.String("endpoint", r.Method+" "+r.URL.Path),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			noteSeller(r.Context(), principal.SellerID)
			ctx := auth.ContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken returns the token from "Authorization: Bearer <token>".
// The scheme is matched case-insensitively; anything else yields "".
func extractBearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// WriteUnauthorized writes a 401 response with the bearer challenge.
// Callers use one fixed detail per endpoint so failures cannot be told apart.
func WriteUnauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
