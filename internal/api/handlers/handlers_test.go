package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/codingevents/server/internal/api/middleware"
	"github.com/codingevents/server/internal/domain/events"
	"github.com/codingevents/server/internal/domain/members"
	"github.com/codingevents/server/internal/domain/projection"
	"github.com/codingevents/server/internal/domain/tags"
	"github.com/codingevents/server/internal/domain/users"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "http://localhost:8080"

// store is the shared in-memory backing for the repository fakes. It keeps
// the same referential behavior as the SQL schema: unique (user, event)
// memberships, unique tag names, composite-keyed associations, and cascades
// on event delete.
type store struct {
	nextID     int64
	users      map[int64]*users.User
	eventRows  map[int64]*events.CodingEvent
	memberRows map[int64]*members.Member
	tagRows    map[int64]*tags.Tag
	assoc      map[[2]int64]bool
}

func newStore() *store {
	return &store{
		users:      make(map[int64]*users.User),
		eventRows:  make(map[int64]*events.CodingEvent),
		memberRows: make(map[int64]*members.Member),
		tagRows:    make(map[int64]*tags.Tag),
		assoc:      make(map[[2]int64]bool),
	}
}

func (s *store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *store) insertMember(eventID, userID int64, role members.Role) (*members.Member, error) {
	if _, ok := s.eventRows[eventID]; !ok {
		return nil, members.ErrNotFound
	}
	for _, m := range s.memberRows {
		if m.EventID == eventID && m.UserID == userID {
			return nil, members.ErrConflict
		}
	}
	m := &members.Member{ID: s.id(), EventID: eventID, UserID: userID, Role: role}
	if u, ok := s.users[userID]; ok {
		m.Username = u.Username
		m.Email = u.Email
	}
	s.memberRows[m.ID] = m
	return m, nil
}

type userStore struct{ *store }

func (s userStore) FindBySubject(_ context.Context, subject string) (*users.User, error) {
	for _, u := range s.users {
		if u.Subject == subject {
			return u, nil
		}
	}
	return nil, users.ErrNotFound
}

func (s userStore) FindByID(_ context.Context, id int64) (*users.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	return u, nil
}

func (s userStore) Insert(_ context.Context, user *users.User) (*users.User, error) {
	for _, u := range s.users {
		if u.Subject == user.Subject {
			return nil, users.ErrConflict
		}
	}
	stored := *user
	stored.ID = s.id()
	s.users[stored.ID] = &stored
	return &stored, nil
}

type eventStore struct{ *store }

func (s eventStore) Create(_ context.Context, event *events.CodingEvent, ownerID int64) (*events.CodingEvent, error) {
	stored := *event
	stored.ID = s.id()
	s.eventRows[stored.ID] = &stored
	if _, err := s.insertMember(stored.ID, ownerID, members.RoleOwner); err != nil {
		delete(s.eventRows, stored.ID)
		return nil, err
	}
	return &stored, nil
}

func (s eventStore) List(_ context.Context) ([]events.CodingEvent, error) {
	out := make([]events.CodingEvent, 0, len(s.eventRows))
	for _, e := range s.eventRows {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s eventStore) GetByID(_ context.Context, id int64) (*events.CodingEvent, error) {
	e, ok := s.eventRows[id]
	if !ok {
		return nil, events.ErrNotFound
	}
	return e, nil
}

func (s eventStore) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := s.eventRows[id]
	return ok, nil
}

func (s eventStore) DeleteByID(_ context.Context, id int64) error {
	if _, ok := s.eventRows[id]; !ok {
		return events.ErrNotFound
	}
	delete(s.eventRows, id)
	for memberID, m := range s.memberRows {
		if m.EventID == id {
			delete(s.memberRows, memberID)
		}
	}
	for key := range s.assoc {
		if key[0] == id {
			delete(s.assoc, key)
		}
	}
	return nil
}

func (s eventStore) ListByTag(_ context.Context, tagID int64) ([]events.CodingEvent, error) {
	var out []events.CodingEvent
	for key := range s.assoc {
		if key[1] == tagID {
			out = append(out, *s.eventRows[key[0]])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memberStore struct{ *store }

func (s memberStore) Insert(_ context.Context, eventID, userID int64, role members.Role) (*members.Member, error) {
	return s.insertMember(eventID, userID, role)
}

func (s memberStore) FindByEventAndUser(_ context.Context, eventID, userID int64) (*members.Member, error) {
	for _, m := range s.memberRows {
		if m.EventID == eventID && m.UserID == userID {
			return m, nil
		}
	}
	return nil, members.ErrNotFound
}

func (s memberStore) ListByEvent(_ context.Context, eventID int64) ([]members.Member, error) {
	var out []members.Member
	for _, m := range s.memberRows {
		if m.EventID == eventID {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s memberStore) Exists(_ context.Context, memberID int64) (bool, error) {
	_, ok := s.memberRows[memberID]
	return ok, nil
}

func (s memberStore) DeleteByID(_ context.Context, memberID int64) error {
	if _, ok := s.memberRows[memberID]; !ok {
		return members.ErrNotFound
	}
	delete(s.memberRows, memberID)
	return nil
}

type tagStore struct{ *store }

func (s tagStore) Insert(_ context.Context, name string) (*tags.Tag, error) {
	for _, tag := range s.tagRows {
		if tag.Name == name {
			return nil, tags.ErrConflict
		}
	}
	tag := &tags.Tag{ID: s.id(), Name: name}
	s.tagRows[tag.ID] = tag
	return tag, nil
}

func (s tagStore) List(_ context.Context) ([]tags.Tag, error) {
	out := make([]tags.Tag, 0, len(s.tagRows))
	for _, tag := range s.tagRows {
		out = append(out, *tag)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s tagStore) GetByID(_ context.Context, id int64) (*tags.Tag, error) {
	tag, ok := s.tagRows[id]
	if !ok {
		return nil, tags.ErrNotFound
	}
	return tag, nil
}

func (s tagStore) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := s.tagRows[id]
	return ok, nil
}

func (s tagStore) ExistsByName(_ context.Context, name string) (bool, error) {
	for _, tag := range s.tagRows {
		if tag.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (s tagStore) ListByEvent(_ context.Context, eventID int64) ([]tags.Tag, error) {
	var out []tags.Tag
	for key := range s.assoc {
		if key[0] == eventID {
			out = append(out, *s.tagRows[key[1]])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s tagStore) Attach(_ context.Context, eventID, tagID int64) error {
	if _, ok := s.eventRows[eventID]; !ok {
		return tags.ErrNotFound
	}
	if _, ok := s.tagRows[tagID]; !ok {
		return tags.ErrNotFound
	}
	key := [2]int64{eventID, tagID}
	if s.assoc[key] {
		return tags.ErrConflict
	}
	s.assoc[key] = true
	return nil
}

func (s tagStore) Detach(_ context.Context, eventID, tagID int64) error {
	key := [2]int64{eventID, tagID}
	if !s.assoc[key] {
		return tags.ErrNotFound
	}
	delete(s.assoc, key)
	return nil
}

func (s tagStore) HasAssociation(_ context.Context, eventID, tagID int64) (bool, error) {
	return s.assoc[[2]int64{eventID, tagID}], nil
}

// testEnv wires the real services and handlers over the in-memory store and
// dispatches through a mux with the production route patterns, so PathValue
// resolution matches the server.
type testEnv struct {
	store *store
	mux   *http.ServeMux
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st := newStore()
	logger := zerolog.Nop()

	eventsSvc := events.NewService(eventStore{st}, logger)
	membersSvc := members.NewService(memberStore{st}, eventStore{st}, logger)
	tagsSvc := tags.NewService(tagStore{st}, eventStore{st}, logger)
	projector := projection.NewBuilder(testBaseURL)

	eventsHandler := NewEventsHandler(eventsSvc, membersSvc, tagsSvc, projector, testBaseURL, "test")
	membersHandler := NewMembersHandler(eventsSvc, membersSvc, projector, "test")
	tagsHandler := NewTagsHandler(tagsSvc, eventsSvc, projector, testBaseURL, "test")

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/events", eventsHandler.List)
	mux.HandleFunc("POST /api/events", eventsHandler.Register)
	mux.HandleFunc("GET /api/events/{id}", eventsHandler.Get)
	mux.HandleFunc("DELETE /api/events/{id}", eventsHandler.Cancel)
	mux.HandleFunc("GET /api/events/{id}/tags", eventsHandler.ListTags)
	mux.HandleFunc("PUT /api/events/{id}/tags/{tagId}", eventsHandler.AttachTag)
	mux.HandleFunc("DELETE /api/events/{id}/tags/{tagId}", eventsHandler.DetachTag)
	mux.HandleFunc("GET /api/events/{id}/members", membersHandler.List)
	mux.HandleFunc("POST /api/events/{id}/members", membersHandler.Join)
	mux.HandleFunc("DELETE /api/events/{id}/members", membersHandler.Leave)
	mux.HandleFunc("DELETE /api/events/{id}/members/{memberId}", membersHandler.Remove)
	mux.HandleFunc("GET /api/tags", tagsHandler.List)
	mux.HandleFunc("POST /api/tags", tagsHandler.Create)
	mux.HandleFunc("GET /api/tags/{id}", tagsHandler.Get)
	mux.HandleFunc("GET /api/tags/{id}/events", tagsHandler.ListEvents)

	return &testEnv{store: st, mux: mux}
}

func (e *testEnv) addUser(username string) *users.User {
	u := &users.User{
		ID:       e.store.id(),
		Subject:  "auth0|" + username,
		Username: username,
		Email:    username + "@example.com",
	}
	e.store.users[u.ID] = u
	return u
}

// do issues a request with the caller already resolved in context, the state
// the auth middleware leaves behind. A nil caller is an anonymous request.
func (e *testEnv) do(t *testing.T, method, path string, body any, caller *users.User) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if caller != nil {
		req = req.WithContext(middleware.ContextWithUser(req.Context(), caller))
	}

	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) createEvent(t *testing.T, owner *users.User, title string) projection.EventDTO {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/events", map[string]any{
		"title":       title,
		"description": "Hands-on workshop with breakout rooms",
		"date":        "2030-05-01T18:00:00Z",
	}, owner)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var dto projection.EventDTO
	decodeBody(t, rec, &dto)
	return dto
}

func (e *testEnv) createTag(t *testing.T, caller *users.User, name string) projection.TagDTO {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/tags", map[string]any{"name": name}, caller)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var dto projection.TagDTO
	decodeBody(t, rec, &dto)
	return dto
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(out))
}
