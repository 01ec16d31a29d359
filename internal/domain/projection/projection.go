// Package projection shapes entities into role-conditional response DTOs.
// Every projection is a pure function of (entity, viewer role): no I/O, no
// side effects. Each entity has a fixed DTO struct whose optional fields
// and links vary by role, never an open map.
package projection

import (
	"fmt"
	"net/http"
	"time"

	"github.com/codingevents/server/internal/domain/events"
	"github.com/codingevents/server/internal/domain/members"
	"github.com/codingevents/server/internal/domain/tags"
)

const (
	eventsEntrypoint = "/api/events"
	tagsEntrypoint   = "/api/tags"
)

// Role is the viewer's relationship to the entity being projected.
type Role int

const (
	Anonymous Role = iota
	Member
	Owner
)

func (r Role) String() string {
	switch r {
	case Member:
		return "Member"
	case Owner:
		return "Owner"
	default:
		return "Anonymous"
	}
}

// FromMemberRole converts a persisted membership role into a viewer role.
func FromMemberRole(role members.Role) Role {
	if role == members.RoleOwner {
		return Owner
	}
	return Member
}

// Link is a hypermedia action attached to a DTO.
type Link struct {
	Href   string `json:"href"`
	Method string `json:"method"`
}

type EventLinks struct {
	Self    *Link `json:"self,omitempty"`
	Tags    *Link `json:"tags,omitempty"`
	Join    *Link `json:"join,omitempty"`
	Members *Link `json:"members,omitempty"`
	Leave   *Link `json:"leave,omitempty"`
	Cancel  *Link `json:"cancel,omitempty"`
}

type EventDTO struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Date        time.Time  `json:"date"`
	Description string     `json:"description,omitempty"`
	Links       EventLinks `json:"links"`
}

type TagLinks struct {
	Self   *Link `json:"self,omitempty"`
	Events *Link `json:"events,omitempty"`
	Add    *Link `json:"addToCodingEvent,omitempty"`
	Remove *Link `json:"removeFromCodingEvent,omitempty"`
}

type TagDTO struct {
	ID    int64    `json:"id"`
	Name  string   `json:"name"`
	Links TagLinks `json:"links"`
}

type MemberLinks struct {
	Remove *Link `json:"remove,omitempty"`
}

type MemberDTO struct {
	ID       int64       `json:"id"`
	Role     string      `json:"role"`
	Username string      `json:"username"`
	Email    string      `json:"email,omitempty"`
	Links    MemberLinks `json:"links"`
}

// Builder renders projections with absolute hrefs rooted at the configured
// server origin. The origin is threaded in here rather than held in any
// process-wide state.
type Builder struct {
	origin string
}

func NewBuilder(origin string) *Builder {
	return &Builder{origin: origin}
}

func (b *Builder) link(method, format string, args ...any) *Link {
	return &Link{
		Href:   b.origin + fmt.Sprintf(format, args...),
		Method: method,
	}
}

// Event projects a coding event for the given viewer role.
//
// Anonymous: title, date, self/tags/join links; no description.
// Member: adds description, members and leave links; drops join.
// Owner: Member shape with cancel instead of leave.
func (b *Builder) Event(event *events.CodingEvent, role Role) EventDTO {
	dto := EventDTO{
		ID:    event.ID,
		Title: event.Title,
		Date:  event.Date,
		Links: EventLinks{
			Self: b.link(http.MethodGet, "%s/%d", eventsEntrypoint, event.ID),
			Tags: b.link(http.MethodGet, "%s/%d/tags", eventsEntrypoint, event.ID),
		},
	}

	if role == Anonymous {
		dto.Links.Join = b.link(http.MethodPost, "%s/%d/members", eventsEntrypoint, event.ID)
		return dto
	}

	dto.Description = event.Description
	dto.Links.Members = b.link(http.MethodGet, "%s/%d/members", eventsEntrypoint, event.ID)

	switch role {
	case Owner:
		dto.Links.Cancel = b.link(http.MethodDelete, "%s/%d", eventsEntrypoint, event.ID)
	default:
		dto.Links.Leave = b.link(http.MethodDelete, "%s/%d/members", eventsEntrypoint, event.ID)
	}
	return dto
}

func (b *Builder) Events(list []events.CodingEvent, role Role) []EventDTO {
	dtos := make([]EventDTO, 0, len(list))
	for i := range list {
		dtos = append(dtos, b.Event(&list[i], role))
	}
	return dtos
}

// Tag projects a tag. The add/remove association links exist only in the
// owner context of a specific event, so they are produced by EventTag.
func (b *Builder) Tag(tag *tags.Tag) TagDTO {
	return TagDTO{
		ID:   tag.ID,
		Name: tag.Name,
		Links: TagLinks{
			Self:   b.link(http.MethodGet, "%s/%d", tagsEntrypoint, tag.ID),
			Events: b.link(http.MethodGet, "%s/%d/events", tagsEntrypoint, tag.ID),
		},
	}
}

func (b *Builder) TagList(list []tags.Tag) []TagDTO {
	dtos := make([]TagDTO, 0, len(list))
	for i := range list {
		dtos = append(dtos, b.Tag(&list[i]))
	}
	return dtos
}

// EventTag projects a tag resolved in the context of a specific event.
// Owners additionally get the attach/detach links scoped to that event;
// members get the plain shape.
func (b *Builder) EventTag(tag *tags.Tag, role Role, eventID int64) TagDTO {
	dto := b.Tag(tag)
	if role == Owner {
		dto.Links.Add = b.link(http.MethodPut, "%s/%d/tags/%d", eventsEntrypoint, eventID, tag.ID)
		dto.Links.Remove = b.link(http.MethodDelete, "%s/%d/tags/%d", eventsEntrypoint, eventID, tag.ID)
	}
	return dto
}

func (b *Builder) EventTags(list []tags.Tag, role Role, eventID int64) []TagDTO {
	dtos := make([]TagDTO, 0, len(list))
	for i := range list {
		dtos = append(dtos, b.EventTag(&list[i], role, eventID))
	}
	return dtos
}

// Member projects a roster entry as seen by the viewing member. Email is
// owner-only; the remove link appears only when an owner views someone
// other than themselves (owners self-remove through cancel).
func (b *Builder) Member(viewed *members.Member, viewerRole Role, viewerMemberID int64) MemberDTO {
	dto := MemberDTO{
		ID:       viewed.ID,
		Role:     string(viewed.Role),
		Username: viewed.Username,
	}

	if viewerRole != Owner {
		return dto
	}

	dto.Email = viewed.Email
	if viewed.ID != viewerMemberID {
		dto.Links.Remove = b.link(
			http.MethodDelete, "%s/%d/members/%d", eventsEntrypoint, viewed.EventID, viewed.ID,
		)
	}
	return dto
}

func (b *Builder) Members(list []members.Member, viewerRole Role, viewerMemberID int64) []MemberDTO {
	dtos := make([]MemberDTO, 0, len(list))
	for i := range list {
		dtos = append(dtos, b.Member(&list[i], viewerRole, viewerMemberID))
	}
	return dtos
}
