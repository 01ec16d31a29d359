package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/codingevents/server/internal/domain/members"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ members.Repository = (*MemberRepository)(nil)

type MemberRepository struct {
	pool *pgxpool.Pool
}

func (r *MemberRepository) Insert(ctx context.Context, eventID, userID int64, role members.Role) (*members.Member, error) {
	row := r.pool.QueryRow(ctx, `
INSERT INTO members (user_id, coding_event_id, role)
VALUES ($1, $2, $3)
RETURNING id
`, userID, eventID, role)

	var id int64
	if err := row.Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return nil, members.ErrConflict
		}
		if isForeignKeyViolation(err) {
			return nil, members.ErrNotFound
		}
		return nil, fmt.Errorf("insert member: %w", err)
	}

	return &members.Member{ID: id, EventID: eventID, UserID: userID, Role: role}, nil
}

func (r *MemberRepository) FindByEventAndUser(ctx context.Context, eventID, userID int64) (*members.Member, error) {
	row := r.pool.QueryRow(ctx, `
SELECT m.id, m.coding_event_id, m.user_id, m.role, u.username, u.email
  FROM members m
  JOIN users u ON u.id = m.user_id
 WHERE m.coding_event_id = $1 AND m.user_id = $2
`, eventID, userID)

	member, err := scanMember(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, members.ErrNotFound
		}
		return nil, fmt.Errorf("find member: %w", err)
	}
	return member, nil
}

func (r *MemberRepository) ListByEvent(ctx context.Context, eventID int64) ([]members.Member, error) {
	rows, err := r.pool.Query(ctx, `
SELECT m.id, m.coding_event_id, m.user_id, m.role, u.username, u.email
  FROM members m
  JOIN users u ON u.id = m.user_id
 WHERE m.coding_event_id = $1
 ORDER BY m.id
`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	list := make([]members.Member, 0)
	for rows.Next() {
		var m members.Member
		if err := rows.Scan(&m.ID, &m.EventID, &m.UserID, &m.Role, &m.Username, &m.Email); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}
	return list, nil
}

func (r *MemberRepository) Exists(ctx context.Context, memberID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
SELECT EXISTS (SELECT 1 FROM members WHERE id = $1)
`, memberID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check member: %w", err)
	}
	return exists, nil
}

func (r *MemberRepository) DeleteByID(ctx context.Context, memberID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM members WHERE id = $1`, memberID)
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return members.ErrNotFound
	}
	return nil
}

func scanMember(row pgx.Row) (*members.Member, error) {
	var m members.Member
	if err := row.Scan(&m.ID, &m.EventID, &m.UserID, &m.Role, &m.Username, &m.Email); err != nil {
		return nil, err
	}
	return &m, nil
}
