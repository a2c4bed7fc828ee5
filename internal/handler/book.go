package handler

import (
	"log/slog"
	"net/http"

	"github.com/bookshelf/bookshelf/internal/handler/dto"
	"github.com/bookshelf/bookshelf/internal/service"
)

// BookHandler handles HTTP requests for book operations.
type BookHandler struct {
	svc    *service.BookService
	logger *slog.Logger
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(svc *service.BookService, logger *slog.Logger) *BookHandler {
	return &BookHandler{
		svc:    svc,
		logger: logger,
	}
}

func toBookInput(req dto.BookRequest) service.BookInput {
	return service.BookInput{
		Title:  req.Title,
		Author: req.Author,
		Year:   req.Year,
		Pages:  req.Pages,
	}
}

// Create handles POST /api/v1/books.
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req dto.BookRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	book, err := h.svc.Create(r.Context(), principal, toBookInput(req))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToBookResponse(book))
}

// List handles GET /api/v1/books.
func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.svc.List(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BookListResponse{Books: dto.ToBookResponses(books)})
}

// Get handles GET /api/v1/books/{id}.
func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	book, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToBookResponse(book))
}

// Update handles PUT /api/v1/books/{id}.
func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req dto.BookRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	book, err := h.svc.Update(r.Context(), principal, id, toBookInput(req))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToBookResponse(book))
}

// Delete handles DELETE /api/v1/books/{id}.
func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
