package handler

import (
	"log/slog"
	"net/http"

	"github.com/bookshelf/bookshelf/internal/auth"
	"github.com/bookshelf/bookshelf/internal/handler/dto"
	"github.com/bookshelf/bookshelf/internal/middleware"
	"github.com/bookshelf/bookshelf/internal/model"
	"github.com/bookshelf/bookshelf/internal/service"
)

// SellerHandler handles HTTP requests for seller operations.
type SellerHandler struct {
	svc    *service.SellerService
	logger *slog.Logger
}

// NewSellerHandler creates a new SellerHandler.
func NewSellerHandler(svc *service.SellerService, logger *slog.Logger) *SellerHandler {
	return &SellerHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /api/v1/sellers.
func (h *SellerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateSellerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	seller, err := h.svc.Register(r.Context(), service.RegisterSellerInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToSellerResponse(seller))
}

// List handles GET /api/v1/sellers.
func (h *SellerHandler) List(w http.ResponseWriter, r *http.Request) {
	sellers, err := h.svc.List(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToSellerListResponse(sellers))
}

// Get handles GET /api/v1/sellers/{id}.
func (h *SellerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	seller, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToSellerWithBooksResponse(seller))
}

// Update handles PUT /api/v1/sellers/{id}.
func (h *SellerHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateSellerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	seller, err := h.svc.Update(r.Context(), principal, id, service.UpdateSellerInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToSellerResponse(seller))
}

// Delete handles DELETE /api/v1/sellers/{id}.
func (h *SellerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), principal, id); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// requirePrincipal returns the authenticated seller placed in the context by
// middleware.Authenticate. A route mounted without it answers 401.
func requirePrincipal(w http.ResponseWriter, r *http.Request) (*model.Principal, bool) {
	principal := auth.PrincipalFromContext(r.Context())
	if principal == nil {
		middleware.WriteUnauthorized(w, "Could not validate credentials")
		return nil, false
	}
	return principal, true
}
