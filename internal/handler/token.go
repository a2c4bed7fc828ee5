package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/bookshelf/bookshelf/internal/auth"
	"github.com/bookshelf/bookshelf/internal/handler/dto"
	"github.com/bookshelf/bookshelf/internal/metrics"
	"github.com/bookshelf/bookshelf/internal/middleware"
	"github.com/bookshelf/bookshelf/internal/model"
)

// Authenticator checks login credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, login, password string) (*model.Seller, error)
}

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	IssueSeller(seller *model.Seller, ttl time.Duration) (string, error)
}

// TokenHandler exchanges credentials for access tokens.
type TokenHandler struct {
	authenticator Authenticator
	issuer        TokenIssuer
	ttl           time.Duration
	recorder      metrics.Recorder
	logger        *slog.Logger
}

// NewTokenHandler creates a new TokenHandler. ttl is the lifetime of issued tokens.
func NewTokenHandler(authenticator Authenticator, issuer TokenIssuer, ttl time.Duration, recorder metrics.Recorder, logger *slog.Logger) *TokenHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenHandler{
		authenticator: authenticator,
		issuer:        issuer,
		ttl:           ttl,
		recorder:      recorder,
		logger:        logger,
	}
}

// Login handles POST /api/v1/token with form fields username and password.
func (h *TokenHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		writeError(w, http.StatusUnprocessableEntity, "Invalid form body")
		return
	}

	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")

	missing := map[string]string{}
	if username == "" {
		missing["username"] = "field required"
	}
	if password == "" {
		missing["password"] = "field required"
	}
	if len(missing) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, dto.ErrorResponse{
			Detail: "Validation failed",
			Errors: missing,
		})
		return
	}

	seller, err := h.authenticator.Authenticate(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.recorder.IncLogin(false)
			h.logger.Info("login_failed",
				"ip", r.RemoteAddr,
				"request_id", middleware.GetRequestID(r.Context()),
			)
			middleware.WriteUnauthorized(w, "Incorrect username or password")
			return
		}
		writeServiceError(w, r, h.logger, err)
		return
	}

	token, err := h.issuer.IssueSeller(seller, h.ttl)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.recorder.IncLogin(true)
	h.logger.Info("login_succeeded",
		"seller_id", seller.ID,
		"request_id", middleware.GetRequestID(r.Context()),
	)

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, dto.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}
