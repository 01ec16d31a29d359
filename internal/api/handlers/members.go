package handlers

import (
	"errors"
	"net/http"

	"github.com/codingevents/server/internal/api/middleware"
	"github.com/codingevents/server/internal/api/problem"
	"github.com/codingevents/server/internal/domain/events"
	"github.com/codingevents/server/internal/domain/members"
	"github.com/codingevents/server/internal/domain/projection"
)

type MembersHandler struct {
	Events    *events.Service
	Members   *members.Service
	Projector *projection.Builder
	Env       string
}

func NewMembersHandler(
	eventsSvc *events.Service,
	membersSvc *members.Service,
	projector *projection.Builder,
	env string,
) *MembersHandler {
	return &MembersHandler{
		Events:    eventsSvc,
		Members:   membersSvc,
		Projector: projector,
		Env:       env,
	}
}

// List serves the event roster to its members. The roster shape depends on
// the viewer: owners see emails and remove links, members do not.
func (h *MembersHandler) List(w http.ResponseWriter, r *http.Request) {
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

	viewer, err := h.Members.Resolve(r.Context(), eventID, caller.ID)
	if errors.Is(err, members.ErrNotFound) {
		problem.Write(w, r, http.StatusForbidden, typeForbidden, "Not a member of this event", nil, h.Env)
		return
	}
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, typeServerError, "Server error", err, h.Env)
		return
	}

	roster, err := h.Members.List(r.Context(), eventID)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, typeServerError, "Server error", err, h.Env)
		return
	}

	role := projection.FromMemberRole(viewer.Role)
	writeJSON(w, http.StatusOK, h.Projector.Members(roster, role, viewer.ID))
}

// Join registers the caller as a Member. Already belonging to the event, as
// Member or Owner, is a 400.
func (h *MembersHandler) Join(w http.ResponseWriter, r *http.Request) {
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

	if err := h.Members.Join(r.Context(), eventID, caller.ID); err != nil {
		if errors.Is(err, members.ErrAlreadyMember) {
			problem.Write(w, r, http.StatusBadRequest, typeValidationError, "Already a member of this event", err, h.Env)
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, typeServerError, "Server error", err, h.Env)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Leave removes the caller's own membership. Owners cannot leave; they
// cancel the event instead.
func (h *MembersHandler) Leave(w http.ResponseWriter, r *http.Request) {
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

	if err := h.Members.Leave(r.Context(), eventID, caller.ID); err != nil {
		switch {
		case errors.Is(err, members.ErrNotMember):
			problem.Write(w, r, http.StatusForbidden, typeForbidden, "Not a member of this event", err, h.Env)
		case errors.Is(err, members.ErrOwnerCannotLeave):
			problem.Write(w, r, http.StatusBadRequest, typeValidationError, "Owners cancel the event instead of leaving", err, h.Env)
		default:
			problem.Write(w, r, http.StatusInternalServerError, typeServerError, "Server error", err, h.Env)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Remove deletes a member from the roster on behalf of the Owner.
func (h *MembersHandler) Remove(w http.ResponseWriter, r *http.Request) {
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
	memberID, err := pathID(r, "memberId")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, typeValidationError, "Invalid member id", err, h.Env)
		return
	}

	isOwner, err := h.Members.IsOwner(r.Context(), eventID, caller.ID)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, typeServerError, "Server error", err, h.Env)
		return
	}
	if !isOwner {
		problem.Write(w, r, http.StatusForbidden, typeForbidden, "Only the owner can remove members", nil, h.Env)
		return
	}

	if err := h.Members.Remove(r.Context(), memberID); err != nil {
		if errors.Is(err, members.ErrNotFound) {
			problem.Write(w, r, http.StatusNotFound, typeNotFound, "Member not found", err, h.Env)
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, typeServerError, "Server error", err, h.Env)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
