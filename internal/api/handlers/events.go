package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/codingevents/server/internal/api/middleware"
	"github.com/codingevents/server/internal/api/problem"
	"github.com/codingevents/server/internal/domain/events"
	"github.com/codingevents/server/internal/domain/members"
	"github.com/codingevents/server/internal/domain/projection"
	"github.com/codingevents/server/internal/domain/tags"
)

type EventsHandler struct {
	Events    *events.Service
	Members   *members.Service
	Tags      *tags.Service
	Projector *projection.Builder
	BaseURL   string
	Env       string
}

func NewEventsHandler(
	eventsSvc *events.Service,
	membersSvc *members.Service,
	tagsSvc *tags.Service,
	projector *projection.Builder,
	baseURL string,
	env string,
) *EventsHandler {
	return &EventsHandler{
		Events:    eventsSvc,
		Members:   membersSvc,
		Tags:      tagsSvc,
		Projector: projector,
		BaseURL:   baseURL,
		Env:       env,
	}
}

// List serves the public event listing. The Public projection applies
// regardless of any identity on the request.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Events.List(r.Context())
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, typeServerError, "Server error", err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, h.Projector.Events(list, projection.Anonymous))
}

// Register creates an event with the caller as its sole Owner.
func (h *EventsHandler) Register(w http.ResponseWriter, r *http.Request) {
	caller := middleware.UserFromContext(r.Context())
	if caller == nil {
		problem.Write(w, r, http.StatusUnauthorized, typeUnauthorized, "Authentication required", nil, h.Env)
		return
	}

	var input events.NewEventInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		problem.Write(w, r, http.StatusBadRequest, typeValidationError, "Invalid request", err, h.Env)
		return
	}
	if err := validate.Struct(input); err != nil {
		problem.Write(w, r, http.StatusBadRequest, typeValidationError, "Invalid event data", err, h.Env)
		return
	}

	created, err := h.Events.Register(r.Context(), input, caller.ID)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, typeServerError, "Server error", err, h.Env)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("%s/api/events/%d", h.BaseURL, created.ID))
	writeJSON(w, http.StatusCreated, h.Projector.Event(created, projection.Owner))
}

// Get serves a single event to its members. 404 before 403: an absent
// resource is reported as such even to strangers.
func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller := middleware.UserFromContext(r.Context())
	if caller == nil {
		problem.Write(w, r, http.StatusUnauthorized, typeUnauthorized, "Authentication required", nil, h.Env)
		return
	}

	eventID, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, typeValidationError, "Invalid event id", err, h.Env)
		return
	}

	event, err := h.Events.Get(r.Context(), eventID)
	if errors.Is(err, events.ErrNotFound) {
		problem.Write(w, r, http.StatusNotFound, typeNotFound, "Event not found", err, h.Env)
		return
	}
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, typeServerError, "Server error", err, h.Env)
		return
	}

	member, err := h.Members.Resolve(r.Context(), eventID, caller.ID)
	if errors.Is(err, members.ErrNotFound) {
		problem.Write(w, r, http.StatusForbidden, typeForbidden, "Not a member of this event", nil, h.Env)
		return
	}
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, typeServerError, "Server error", err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, h.Projector.Event(event, projection.FromMemberRole(member.Role)))
}

// Cancel deletes an event on behalf of its Owner; memberships and tag
// associations go with it.
func (h *EventsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	caller := middleware.UserFromContext(r.Context())
	if caller == nil {
		problem.Write(w, r, http.StatusUnauthorized, typeUnauthorized, "Authentication required", nil, h.Env)
		return
	}

	eventID, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, typeValidationError, "Invalid event id", err, h.Env)
		return
	}

	exists, err := h.Events.Exists(r.Context(), eventID)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, typeServerError, "Server error", err, h.Env)
		return
	}
	if !exists {
		problem.Write(w, r, http.StatusNotFound, typeNotFound, "Event not found", nil, h.Env)
		return
	}

	isOwner, err := h.Members.IsOwner(r.Context(), eventID, caller.ID)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, typeServerError, "Server error", err, h.Env)
		return
	}
	if !isOwner {
		problem.Write(w, r, http.StatusForbidden, typeForbidden, "Only the owner can cancel an event", nil, h.Env)
		return
	}

	if err := h.Events.Cancel(r.Context(), eventID); err != nil {
		if errors.Is(err, events.ErrNotFound) {
			// Deleted out from under us between the check and the delete.
			problem.Write(w, r, http.StatusNotFound, typeNotFound, "Event not found", err, h.Env)
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, typeServerError, "Server error", err, h.Env)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListTags serves an event's tags. Anonymous callers get the Public tag
// projection; authenticated callers must be members and get the projection
// for their role (owners see attach/detach links).
func (h *EventsHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, typeValidationError, "Invalid event id", err, h.Env)
		return
	}

	exists, err := h.Events.Exists(r.Context(), eventID)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, typeServerError, "Server error", err, h.Env)
		return
	}
	if !exists {
		problem.Write(w, r, http.StatusNotFound, typeNotFound, "Event not found", nil, h.Env)
		return
	}

	caller := middleware.UserFromContext(r.Context())

	var role projection.Role
	if caller != nil {
		member, err := h.Members.Resolve(r.Context(), eventID, caller.ID)
		if errors.Is(err, members.ErrNotFound) {
			problem.Write(w, r, http.StatusForbidden, typeForbidden, "Not a member of this event", nil, h.Env)
			return
		}
		if err != nil {
			problem.Write(w, r, http.StatusInternalServerError, typeServerError, "Server error", err, h.Env)
			return
		}
		role = projection.FromMemberRole(member.Role)
	}

	list, err := h.Tags.ListByEvent(r.Context(), eventID)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, typeServerError, "Server error", err, h.Env)
		return
	}

	if role == projection.Anonymous {
		writeJSON(w, http.StatusOK, h.Projector.TagList(list))
		return
	}
	writeJSON(w, http.StatusOK, h.Projector.EventTags(list, role, eventID))
}

// AttachTag and DetachTag are owner-gated; policy violations (missing tag,
// duplicate or absent association) come back as 400.

func (h *EventsHandler) AttachTag(w http.ResponseWriter, r *http.Request) {
	h.mutateTag(w, r, h.Tags.Attach)
}

func (h *EventsHandler) DetachTag(w http.ResponseWriter, r *http.Request) {
	h.mutateTag(w, r, h.Tags.Detach)
}

func (h *EventsHandler) mutateTag(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, eventID, tagID int64) error,
) {
	caller := middleware.UserFromContext(r.Context())
	if caller == nil {
		problem.Write(w, r, http.StatusUnauthorized, typeUnauthorized, "Authentication required", nil, h.Env)
		return
	}

	eventID, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, typeValidationError, "Invalid event id", err, h.Env)
		return
	}
	tagID, err := pathID(r, "tagId")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, typeValidationError, "Invalid tag id", err, h.Env)
		return
	}

	exists, err := h.Events.Exists(r.Context(), eventID)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, typeServerError, "Server error", err, h.Env)
		return
	}
	if !exists {
		problem.Write(w, r, http.StatusNotFound, typeNotFound, "Event not found", nil, h.Env)
		return
	}

	isOwner, err := h.Members.IsOwner(r.Context(), eventID, caller.ID)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, typeServerError, "Server error", err, h.Env)
		return
	}
	if !isOwner {
		problem.Write(w, r, http.StatusForbidden, typeForbidden, "Only the owner can manage event tags", nil, h.Env)
		return
	}

	if err := op(r.Context(), eventID, tagID); err != nil {
		switch {
		case errors.Is(err, tags.ErrNotFound),
			errors.Is(err, tags.ErrAlreadyTagged),
			errors.Is(err, tags.ErrNotTagged):
			problem.Write(w, r, http.StatusBadRequest, typeValidationError, "Tag association rejected", err, h.Env)
		default:
			problem.Write(w, r, http.StatusInternalServerError, typeServerError, "Server error", err, h.Env)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
