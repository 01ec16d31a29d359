package members

import (
	"context"
	"errors"
)

var (
	ErrNotFound       = errors.New("member not found")
	ErrConflict       = errors.New("membership already exists")
	ErrAlreadyMember  = errors.New("user is already a member of the event")
	ErrNotMember      = errors.New("user is not a member of the event")
	ErrOwnerCannotLeave = errors.New("owners cannot leave their own event")
)

type Role string

const (
	RoleOwner  Role = "Owner"
	RoleMember Role = "Member"
)

// Member joins a User to a CodingEvent with a Role. Username and Email are
// denormalized from the joined user row for roster projections.
type Member struct {
	ID       int64
	EventID  int64
	UserID   int64
	Role     Role
	Username string
	Email    string
}

type Repository interface {
	Insert(ctx context.Context, eventID, userID int64, role Role) (*Member, error)
	FindByEventAndUser(ctx context.Context, eventID, userID int64) (*Member, error)
	ListByEvent(ctx context.Context, eventID int64) ([]Member, error)
	Exists(ctx context.Context, memberID int64) (bool, error)
	DeleteByID(ctx context.Context, memberID int64) error
}

// EventChecker is the slice of the events repository the membership queries
// need: existence only.
type EventChecker interface {
	Exists(ctx context.Context, eventID int64) (bool, error)
}
