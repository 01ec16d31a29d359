package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/codingevents/server/internal/domain/events"
	"github.com/codingevents/server/internal/domain/members"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ events.Repository = (*EventRepository)(nil)

type EventRepository struct {
	pool *pgxpool.Pool
}

// Create inserts the event and its Owner membership in one transaction so
// an event is never visible without its creator as sole Owner.
func (r *EventRepository) Create(ctx context.Context, event *events.CodingEvent, ownerID int64) (*events.CodingEvent, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
INSERT INTO coding_events (title, description, date)
VALUES ($1, $2, $3)
RETURNING id, title, description, date, created_at
`, event.Title, event.Description, event.Date)

	created, err := scanEvent(row)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}

	_, err = tx.Exec(ctx, `
INSERT INTO members (user_id, coding_event_id, role)
VALUES ($1, $2, $3)
`, ownerID, created.ID, members.RoleOwner)
	if err != nil {
		return nil, fmt.Errorf("insert owner membership: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return created, nil
}

func (r *EventRepository) List(ctx context.Context) ([]events.CodingEvent, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, title, description, date, created_at
  FROM coding_events
 ORDER BY date, id
`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

func (r *EventRepository) GetByID(ctx context.Context, id int64) (*events.CodingEvent, error) {
	row := r.pool.QueryRow(ctx, `
SELECT id, title, description, date, created_at
  FROM coding_events
 WHERE id = $1
`, id)

	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, events.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
SELECT EXISTS (SELECT 1 FROM coding_events WHERE id = $1)
`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check event: %w", err)
	}
	return exists, nil
}

// DeleteByID cancels the event. Memberships and tag associations are
// removed by ON DELETE CASCADE in the same statement.
func (r *EventRepository) DeleteByID(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM coding_events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return events.ErrNotFound
	}
	return nil
}

func (r *EventRepository) ListByTag(ctx context.Context, tagID int64) ([]events.CodingEvent, error) {
	rows, err := r.pool.Query(ctx, `
SELECT ce.id, ce.title, ce.description, ce.date, ce.created_at
  FROM coding_events ce
  JOIN coding_event_tags cet ON cet.coding_event_id = ce.id
 WHERE cet.tag_id = $1
 ORDER BY ce.date, ce.id
`, tagID)
	if err != nil {
		return nil, fmt.Errorf("list events by tag: %w", err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

func scanEvent(row pgx.Row) (*events.CodingEvent, error) {
	var e events.CodingEvent
	if err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Date, &e.CreatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

func collectEvents(rows pgx.Rows) ([]events.CodingEvent, error) {
	list := make([]events.CodingEvent, 0)
	for rows.Next() {
		var e events.CodingEvent
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.Date, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		list = append(list, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return list, nil
}
