package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/example/eventd/internal/auth"
	httperrors "github.com/example/eventd/internal/http/errors"
	"github.com/example/eventd/internal/store"
)

const maxBodyBytes = 1 << 20

// Handler serves the JSON API over the store and auth service.
type Handler struct {
	store    *store.Store
	auth     *auth.Service
	validate *validator.Validate
}

func NewHandler(store *store.Store, authService *auth.Service) *Handler {
	return &Handler{
		store:    store,
		auth:     authService,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// decode reads and validates a JSON request body into dst.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		httperrors.BadRequest(w, r, err, "invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			httperrors.BadRequest(w, r, err, fmt.Sprintf("invalid field %q", verrs[0].Field()))
			return false
		}
		httperrors.BadRequest(w, r, err, "invalid request body")
		return false
	}
	return true
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		httperrors.LogError(r, "encode response", err)
	}
}

// pathID parses a numeric path parameter.
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return id, nil
}

// currentUser pulls the authenticated user placed in the context by
// auth.RequireAuth. Routes calling this are always behind that middleware;
// a miss is a wiring bug.
func currentUser(w http.ResponseWriter, r *http.Request) (*store.User, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httperrors.InternalError(w, r, errors.New("no user in request context"), "missing auth middleware")
		return nil, false
	}
	return user, true
}
