package httpserver

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	httperrors "github.com/example/eventd/internal/http/errors"
	"github.com/example/eventd/internal/schedule"
	"github.com/example/eventd/internal/store"
)

const defaultPageSize = 100

type createEventRequest struct {
	Title       string    `json:"title" validate:"required,max=100"`
	Description *string   `json:"description" validate:"omitempty,max=500"`
	StartTime   time.Time `json:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" validate:"required"`
	Location    *string   `json:"location" validate:"omitempty,max=100"`
}

type updateEventRequest struct {
	Title       *string    `json:"title" validate:"omitempty,max=100"`
	Description *string    `json:"description" validate:"omitempty,max=500"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	Location    *string    `json:"location" validate:"omitempty,max=100"`
}

type eventResponse struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     time.Time  `json:"end_time"`
	Location    *string    `json:"location"`
	OwnerID     int64      `json:"owner_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

func newEventResponse(ev *store.Event) eventResponse {
	return eventResponse{
		ID:          ev.ID,
		Title:       ev.Title,
		Description: ev.Description,
		StartTime:   ev.StartTime,
		EndTime:     ev.EndTime,
		Location:    ev.Location,
		OwnerID:     ev.OwnerID,
		CreatedAt:   ev.CreatedAt,
		UpdatedAt:   ev.UpdatedAt,
	}
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req createEventRequest
	if !h.decode(w, r, &req) {
		return
	}

	created, err := h.store.Events.Create(r.Context(), store.Event{
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Location:    req.Location,
		OwnerID:     user.ID,
	})
	if err != nil {
		httperrors.Domain(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, newEventResponse(created))
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	skip, limit, err := pagination(r)
	if err != nil {
		httperrors.BadRequest(w, r, err, "invalid pagination parameters")
		return
	}

	events, err := h.store.Events.ListByOwner(r.Context(), user.ID, skip, limit)
	if err != nil {
		httperrors.Domain(w, r, err)
		return
	}

	out := make([]eventResponse, 0, len(events))
	for i := range events {
		out = append(out, newEventResponse(&events[i]))
	}
	respondJSON(w, r, http.StatusOK, out)
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		httperrors.BadRequest(w, r, err, "invalid event id")
		return
	}

	ev, err := h.store.Events.GetOwned(r.Context(), id, user.ID)
	if err != nil {
		httperrors.Domain(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, newEventResponse(ev))
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		httperrors.BadRequest(w, r, err, "invalid event id")
		return
	}
	var req updateEventRequest
	if !h.decode(w, r, &req) {
		return
	}

	updated, err := h.store.Events.Update(r.Context(), id, user.ID, schedule.EventPatch{
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Location:    req.Location,
	})
	if err != nil {
		httperrors.Domain(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, newEventResponse(updated))
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		httperrors.BadRequest(w, r, err, "invalid event id")
		return
	}

	if err := h.store.Events.Delete(r.Context(), id, user.ID); err != nil {
		httperrors.Domain(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pagination(r *http.Request) (skip, limit int, err error) {
	skip, limit = 0, defaultPageSize
	if raw := r.URL.Query().Get("skip"); raw != "" {
		if skip, err = strconv.Atoi(raw); err != nil || skip < 0 {
			return 0, 0, fmt.Errorf("invalid skip %q", raw)
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil || limit <= 0 {
			return 0, 0, fmt.Errorf("invalid limit %q", raw)
		}
	}
	return skip, limit, nil
}
