// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bookshelf/bookshelf/api"
	"github.com/bookshelf/bookshelf/internal/handler/dto"
	"github.com/bookshelf/bookshelf/internal/middleware"
	"github.com/bookshelf/bookshelf/internal/service"
)

// Version is reported by the root endpoint.
const Version = "1.0.0"

// Handler serves the endpoints that have no dependencies.
type Handler struct{}

// New creates a new Handler instance.
func New() *Handler {
	return &Handler{}
}

// Hello describes the API.
// GET /
func (h *Handler) Hello(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"message": "Bookshelf marketplace API",
		"version": Version,
	}
	writeJSON(w, http.StatusOK, response)
}

// OpenAPI serves the API description.
// GET /openapi.yaml
func (h *Handler) OpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(api.Spec)
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Not Found")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, dto.ErrorResponse{Detail: detail})
}

// decodeJSON reads a JSON request body into dst.
// A failure is reported to the client as 422 and false is returned.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		writeError(w, http.StatusUnprocessableEntity, "Invalid request body")
		return false
	}
	return true
}

// pathID parses the {id} URL parameter.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusUnprocessableEntity, dto.ErrorResponse{
			Detail: "Validation failed",
			Errors: map[string]string{"id": "must be a positive integer"},
		})
		return 0, false
	}
	return id, true
}

// writeServiceError maps service errors to HTTP responses.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, dto.ErrorResponse{
			Detail: "Validation failed",
			Errors: verr.Fields,
		})
	case errors.Is(err, service.ErrEmailTaken):
		writeError(w, http.StatusConflict, "Email already registered")
	case errors.Is(err, service.ErrNotOwner):
		writeError(w, http.StatusForbidden, "Not enough permissions")
	case errors.Is(err, service.ErrSellerNotFound):
		writeError(w, http.StatusNotFound, "Seller not found")
	case errors.Is(err, service.ErrBookNotFound):
		writeError(w, http.StatusNotFound, "Book not found")
	default:
		logger.Error("internal_error",
			"error", err,
			"endpoint", r.Method+" "+r.URL.Path,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}
