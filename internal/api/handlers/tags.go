package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/codingevents/server/internal/api/middleware"
	"github.com/codingevents/server/internal/api/problem"
	"github.com/codingevents/server/internal/domain/events"
	"github.com/codingevents/server/internal/domain/projection"
	"github.com/codingevents/server/internal/domain/tags"
)

type TagsHandler struct {
	Tags      *tags.Service
	Events    *events.Service
	Projector *projection.Builder
	BaseURL   string
	Env       string
}

func NewTagsHandler(
	tagsSvc *tags.Service,
	eventsSvc *events.Service,
	projector *projection.Builder,
	baseURL string,
	env string,
) *TagsHandler {
	return &TagsHandler{
		Tags:      tagsSvc,
		Events:    eventsSvc,
		Projector: projector,
		BaseURL:   baseURL,
		Env:       env,
	}
}

// List serves all tags publicly.
func (h *TagsHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Tags.List(r.Context())
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, typeServerError, "Server error", err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, h.Projector.TagList(list))
}

// Create adds a new tag. Duplicate names are rejected rather than resolved
// to the existing tag.
func (h *TagsHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller := middleware.UserFromContext(r.Context())
	if caller == nil {
		problem.Write(w, r, http.StatusUnauthorized, typeUnauthorized, "Authentication required", nil, h.Env)
		return
	}

	var input tags.NewTagInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		problem.Write(w, r, http.StatusBadRequest, typeValidationError, "Invalid request", err, h.Env)
		return
	}
	if err := validate.Struct(input); err != nil {
		problem.Write(w, r, http.StatusBadRequest, typeValidationError, "Invalid tag data", err, h.Env)
		return
	}

	tag, err := h.Tags.Create(r.Context(), input)
	if err != nil {
		if errors.Is(err, tags.ErrDuplicateName) {
			problem.Write(w, r, http.StatusBadRequest, typeValidationError, "Tag name already exists", err, h.Env)
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, typeServerError, "Server error", err, h.Env)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("%s/api/tags/%d", h.BaseURL, tag.ID))
	writeJSON(w, http.StatusCreated, h.Projector.Tag(tag))
}

// Get serves a single tag publicly.
func (h *TagsHandler) Get(w http.ResponseWriter, r *http.Request) {
	tagID, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, typeValidationError, "Invalid tag id", err, h.Env)
		return
	}

	tag, err := h.Tags.Get(r.Context(), tagID)
	if errors.Is(err, tags.ErrNotFound) {
		problem.Write(w, r, http.StatusNotFound, typeNotFound, "Tag not found", err, h.Env)
		return
	}
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, typeServerError, "Server error", err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, h.Projector.Tag(tag))
}

// ListEvents serves the public events carrying a tag.
func (h *TagsHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	tagID, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, typeValidationError, "Invalid tag id", err, h.Env)
		return
	}

	exists, err := h.Tags.Exists(r.Context(), tagID)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, typeServerError, "Server error", err, h.Env)
		return
	}
	if !exists {
		problem.Write(w, r, http.StatusNotFound, typeNotFound, "Tag not found", nil, h.Env)
		return
	}

	list, err := h.Events.ListByTag(r.Context(), tagID)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, typeServerError, "Server error", err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, h.Projector.Events(list, projection.Anonymous))
}
