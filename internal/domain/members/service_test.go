package members

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	rows   map[int64]*Member
	nextID int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: make(map[int64]*Member), nextID: 1}
}

func (f *fakeRepo) Insert(_ context.Context, eventID, userID int64, role Role) (*Member, error) {
	for _, m := range f.rows {
		if m.EventID == eventID && m.UserID == userID {
			return nil, ErrConflict
		}
	}
	m := &Member{ID: f.nextID, EventID: eventID, UserID: userID, Role: role}
	f.rows[m.ID] = m
	f.nextID++
	return m, nil
}

func (f *fakeRepo) FindByEventAndUser(_ context.Context, eventID, userID int64) (*Member, error) {
	for _, m := range f.rows {
		if m.EventID == eventID && m.UserID == userID {
			return m, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) ListByEvent(_ context.Context, eventID int64) ([]Member, error) {
	var out []Member
	for _, m := range f.rows {
		if m.EventID == eventID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeRepo) Exists(_ context.Context, memberID int64) (bool, error) {
	_, ok := f.rows[memberID]
	return ok, nil
}

func (f *fakeRepo) DeleteByID(_ context.Context, memberID int64) error {
	if _, ok := f.rows[memberID]; !ok {
		return ErrNotFound
	}
	delete(f.rows, memberID)
	return nil
}

type fakeEvents map[int64]bool

func (f fakeEvents) Exists(_ context.Context, eventID int64) (bool, error) {
	return f[eventID], nil
}

func newTestService(repo *fakeRepo, events fakeEvents) *Service {
	return NewService(repo, events, zerolog.Nop())
}

func TestIsMember(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := newTestService(repo, fakeEvents{1: true})

	_, err := repo.Insert(ctx, 1, 10, RoleMember)
	require.NoError(t, err)

	ok, err := svc.IsMember(ctx, 1, 10)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.IsMember(ctx, 1, 99)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsMember_MissingEvent(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := newTestService(repo, fakeEvents{})

	// A stale membership row must not count once the event is gone.
	_, err := repo.Insert(ctx, 1, 10, RoleMember)
	require.NoError(t, err)

	ok, err := svc.IsMember(ctx, 1, 10)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsOwner_ImpliesMembership(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := newTestService(repo, fakeEvents{1: true})

	_, err := repo.Insert(ctx, 1, 10, RoleOwner)
	require.NoError(t, err)
	_, err = repo.Insert(ctx, 1, 11, RoleMember)
	require.NoError(t, err)

	ok, err := svc.IsOwner(ctx, 1, 10)
	require.NoError(t, err)
	assert.True(t, ok)

	isMember, err := svc.IsMember(ctx, 1, 10)
	require.NoError(t, err)
	assert.True(t, isMember, "every owner is also a member")

	ok, err = svc.IsOwner(ctx, 1, 11)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.IsOwner(ctx, 1, 99)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCanRegister(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := newTestService(repo, fakeEvents{1: true})

	_, err := repo.Insert(ctx, 1, 10, RoleOwner)
	require.NoError(t, err)

	ok, err := svc.CanRegister(ctx, 1, 10)
	require.NoError(t, err)
	assert.False(t, ok, "owners are members and cannot register again")

	ok, err = svc.CanRegister(ctx, 1, 20)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestJoin(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := newTestService(repo, fakeEvents{1: true})

	require.NoError(t, svc.Join(ctx, 1, 10))

	member, err := repo.FindByEventAndUser(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, RoleMember, member.Role, "joining never grants ownership")
}

func TestJoin_AlreadyMember(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := newTestService(repo, fakeEvents{1: true})

	require.NoError(t, svc.Join(ctx, 1, 10))
	assert.ErrorIs(t, svc.Join(ctx, 1, 10), ErrAlreadyMember)

	roster, err := repo.ListByEvent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, roster, 1)
}

func TestLeave(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := newTestService(repo, fakeEvents{1: true})

	require.NoError(t, svc.Join(ctx, 1, 10))
	require.NoError(t, svc.Leave(ctx, 1, 10))

	ok, err := svc.IsMember(ctx, 1, 10)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLeave_NotMember(t *testing.T) {
	svc := newTestService(newFakeRepo(), fakeEvents{1: true})
	assert.ErrorIs(t, svc.Leave(context.Background(), 1, 10), ErrNotMember)
}

func TestLeave_OwnerCannotLeave(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := newTestService(repo, fakeEvents{1: true})

	_, err := repo.Insert(ctx, 1, 10, RoleOwner)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Leave(ctx, 1, 10), ErrOwnerCannotLeave)

	ok, err := svc.IsOwner(ctx, 1, 10)
	require.NoError(t, err)
	assert.True(t, ok, "the owner membership must survive the rejected leave")
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := newTestService(repo, fakeEvents{1: true})

	member, err := repo.Insert(ctx, 1, 10, RoleMember)
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, member.ID))
	assert.ErrorIs(t, svc.Remove(ctx, member.ID), ErrNotFound)
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := newTestService(repo, fakeEvents{1: true})

	inserted, err := repo.Insert(ctx, 1, 10, RoleMember)
	require.NoError(t, err)

	member, err := svc.Resolve(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, inserted.ID, member.ID)

	_, err = svc.Resolve(ctx, 1, 99)
	assert.ErrorIs(t, err, ErrNotFound)
}
