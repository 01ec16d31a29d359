package tags

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("tag not found")
	ErrConflict      = errors.New("tag write conflict")
	ErrDuplicateName = errors.New("tag name already exists")
	ErrAlreadyTagged = errors.New("event already has this tag")
	ErrNotTagged     = errors.New("event does not have this tag")
)

// Tag is a named label attachable to coding events for discovery.
// Name uniqueness is case-sensitive as persisted.
type Tag struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// NewTagInput is the request body for creating a tag.
type NewTagInput struct {
	Name string `json:"name" validate:"required,min=1,max=20"`
}

type Repository interface {
	Insert(ctx context.Context, name string) (*Tag, error)
	List(ctx context.Context) ([]Tag, error)
	GetByID(ctx context.Context, id int64) (*Tag, error)
	Exists(ctx context.Context, id int64) (bool, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	ListByEvent(ctx context.Context, eventID int64) ([]Tag, error)
	// Attach creates the (event, tag) association; ErrConflict when the
	// pair already exists.
	Attach(ctx context.Context, eventID, tagID int64) error
	// Detach removes the association; ErrNotFound when no row existed.
	Detach(ctx context.Context, eventID, tagID int64) error
	HasAssociation(ctx context.Context, eventID, tagID int64) (bool, error)
}

// EventChecker is the slice of the events repository the association policy
// needs: existence only.
type EventChecker interface {
	Exists(ctx context.Context, eventID int64) (bool, error)
}
