// Package errors maps domain errors to HTTP responses and logs internal
// failures with the request ID for correlation. Error bodies use the shape
// {"detail": "..."} everywhere.
package errors

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/example/eventd/internal/store"
)

// JSON writes a {"detail": ...} error body with the given status.
func JSON(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}

// Domain writes the HTTP mapping for a store-level domain error. Anything
// outside the taxonomy is treated as an infrastructure failure: logged in
// full, surfaced as a generic 500 so nothing internal leaks.
func Domain(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		JSON(w, http.StatusNotFound, "Event not found")
	case errors.Is(err, store.ErrDuplicateEmail):
		JSON(w, http.StatusBadRequest, "Email already registered")
	case errors.Is(err, store.ErrInvalidInterval):
		JSON(w, http.StatusBadRequest, "Event end time must be after start time")
	case errors.Is(err, store.ErrSchedulingConflict):
		JSON(w, http.StatusBadRequest, "Event time conflicts with existing event")
	default:
		InternalError(w, r, err, "store operation failed")
	}
}

func InternalError(w http.ResponseWriter, r *http.Request, err error, message string) {
	LogError(r, message, err)
	JSON(w, http.StatusInternalServerError, "internal server error")
}

func BadRequest(w http.ResponseWriter, r *http.Request, err error, clientMessage string) {
	requestID := middleware.GetReqID(r.Context())

	if requestID != "" {
		log.Printf("[WARN] RequestID=%s: bad request: %v", requestID, err)
	} else {
		log.Printf("[WARN] bad request: %v", err)
	}

	JSON(w, http.StatusBadRequest, clientMessage)
}

func LogError(r *http.Request, message string, err error) {
	requestID := middleware.GetReqID(r.Context())

	if requestID != "" {
		log.Printf("[ERROR] RequestID=%s: %s: %v", requestID, message, err)
	} else {
		log.Printf("[ERROR] %s: %v", message, err)
	}
}
