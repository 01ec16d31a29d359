package events

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("event not found")
	ErrConflict = errors.New("event write conflict")
)

// CodingEvent is an event users can own or join.
type CodingEvent struct {
	ID          int64
	Title       string
	Description string
	Date        time.Time
	CreatedAt   time.Time
}

// NewEventInput is the request body for registering an event.
type NewEventInput struct {
	Title       string     `json:"title" validate:"required,min=10,max=100"`
	Description string     `json:"description" validate:"max=1000"`
	Date        *time.Time `json:"date" validate:"required"`
}

type Repository interface {
	// Create persists the event and its Owner membership for ownerID in a
	// single transaction.
	Create(ctx context.Context, event *CodingEvent, ownerID int64) (*CodingEvent, error)
	List(ctx context.Context) ([]CodingEvent, error)
	GetByID(ctx context.Context, id int64) (*CodingEvent, error)
	Exists(ctx context.Context, id int64) (bool, error)
	// DeleteByID removes the event; memberships and tag associations go with
	// it via cascade. ErrNotFound when no row was deleted.
	DeleteByID(ctx context.Context, id int64) error
	ListByTag(ctx context.Context, tagID int64) ([]CodingEvent, error)
}
