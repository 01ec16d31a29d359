package postgres

import (
	"github.com/codingevents/server/internal/domain/events"
	"github.com/codingevents/server/internal/domain/members"
	"github.com/codingevents/server/internal/domain/tags"
	"github.com/codingevents/server/internal/domain/users"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository aggregates the per-domain repositories over one pool.
type Repository struct {
	users   *UserRepository
	events  *EventRepository
	members *MemberRepository
	tags    *TagRepository
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{
		users:   &UserRepository{pool: pool},
		events:  &EventRepository{pool: pool},
		members: &MemberRepository{pool: pool},
		tags:    &TagRepository{pool: pool},
	}
}

func (r *Repository) Users() users.Repository {
	return r.users
}

func (r *Repository) Events() events.Repository {
	return r.events
}

func (r *Repository) Members() members.Repository {
	return r.members
}

func (r *Repository) Tags() tags.Repository {
	return r.tags
}
