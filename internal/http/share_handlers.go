package httpserver

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	httperrors "github.com/example/eventd/internal/http/errors"
	"github.com/example/eventd/internal/store"
)

type permissionResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type grantResponse struct {
	ID         int64  `json:"id"`
	EventID    int64  `json:"event_id"`
	UserID     int64  `json:"user_id"`
	Permission string `json:"permission"`
}

// requireOwner gates the sharing subtree: only the event owner may see or
// change grants. A missing event and a foreign event both read as not found,
// so callers cannot probe for other users' event ids.
func (h *Handler) requireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		id, err := pathID(r, "id")
		if err != nil {
			httperrors.BadRequest(w, r, err, "invalid event id")
			return
		}
		if _, err := h.store.Events.GetOwned(r.Context(), id, user.ID); err != nil {
			httperrors.Domain(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) ShareEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "id")
	if err != nil {
		httperrors.BadRequest(w, r, err, "invalid event id")
		return
	}
	userID, err := pathID(r, "userID")
	if err != nil {
		httperrors.BadRequest(w, r, err, "invalid user id")
		return
	}
	permission, ok := permissionParam(w, r)
	if !ok {
		return
	}

	if _, err := h.store.Users.GetByID(r.Context(), userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httperrors.JSON(w, http.StatusNotFound, "User not found")
		} else {
			httperrors.InternalError(w, r, err, "look up grantee")
		}
		return
	}

	perm, err := h.store.Grants.Share(r.Context(), eventID, userID, permission)
	if err != nil {
		httperrors.Domain(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, permissionResponse{
		ID:          perm.ID,
		Name:        perm.Name,
		Description: perm.Description,
	})
}

func (h *Handler) ListShares(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "id")
	if err != nil {
		httperrors.BadRequest(w, r, err, "invalid event id")
		return
	}

	grants, err := h.store.Grants.ListByEvent(r.Context(), eventID)
	if err != nil {
		httperrors.Domain(w, r, err)
		return
	}

	out := make([]grantResponse, 0, len(grants))
	for _, g := range grants {
		out = append(out, grantResponse{
			ID:         g.ID,
			EventID:    g.EventID,
			UserID:     g.UserID,
			Permission: g.PermissionName,
		})
	}
	respondJSON(w, r, http.StatusOK, out)
}

func (h *Handler) RevokeShare(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "id")
	if err != nil {
		httperrors.BadRequest(w, r, err, "invalid event id")
		return
	}
	userID, err := pathID(r, "userID")
	if err != nil {
		httperrors.BadRequest(w, r, err, "invalid user id")
		return
	}
	permission, ok := permissionParam(w, r)
	if !ok {
		return
	}

	// Revoking a grant that does not exist is a no-op.
	if err := h.store.Grants.Revoke(r.Context(), eventID, userID, permission); err != nil {
		httperrors.Domain(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func permissionParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	name := chi.URLParam(r, "permission")
	if name == "" || len(name) > 100 {
		httperrors.JSON(w, http.StatusBadRequest, "invalid permission name")
		return "", false
	}
	return name, true
}
