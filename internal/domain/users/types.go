package users

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("user not found")
	ErrConflict = errors.New("user already exists")
)

// User is the internal account backing an externally authenticated caller.
// Subject is the identity provider's unique id for the account.
type User struct {
	ID        int64
	Subject   string
	Username  string
	Email     string
	CreatedAt time.Time
}

// Identity is the resolved claims bundle handed in by the auth middleware.
type Identity struct {
	Subject  string
	Username string
	Email    string
}

type Repository interface {
	FindBySubject(ctx context.Context, subject string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	Insert(ctx context.Context, user *User) (*User, error)
}
