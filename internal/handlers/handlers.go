// Package handlers is the thin HTTP boundary of the forum: it decodes JSON
// requests, calls the forum and moderation services and maps their errors
// to status codes.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"agora/internal/forum"
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/moderation"
	"agora/internal/notify"

	"github.com/rs/zerolog/log"
)

// Handler contains all HTTP handler methods and their dependencies.
// Dependencies are injected via the constructor for better testability.
type Handler struct {
	forum      *forum.Services
	moderation *moderation.Service
	stash      *notify.StashPool
	pool       *notify.ConnectionPool
}

// NewHandler creates a new Handler with all required dependencies.
func NewHandler(services *forum.Services, mod *moderation.Service, stash *notify.StashPool, pool *notify.ConnectionPool) *Handler {
	return &Handler{
		forum:      services,
		moderation: mod,
		stash:      stash,
		pool:       pool,
	}
}

// errorResponse is the body of every error reply.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON encodes and writes a JSON response
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// statusFor maps the error taxonomy to an HTTP status.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, forum.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case models.IsModerationRejected(err):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, models.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrForbidden), errors.Is(err, models.ErrBanned):
		return http.StatusForbidden
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}

// writeError writes err with its mapped status. Internal errors are logged
// and their details withheld.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("Request failed")
		message = "Internal server error"
	}
	writeJSON(w, status, errorResponse{Error: message})
}

// requireUser returns the acting user id, or writes 401 and returns "".
func requireUser(w http.ResponseWriter, r *http.Request) string {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Authentication required"})
	}
	return userID
}

// decodeJSON decodes the request body into v, writing 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			writeError(w, r, err)
			return false
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid JSON body"})
		return false
	}
	return true
}

// queryLimit parses the optional limit query parameter.
func queryLimit(r *http.Request, fallback int) int {
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
