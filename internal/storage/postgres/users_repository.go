package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/codingevents/server/internal/domain/users"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ users.Repository = (*UserRepository)(nil)

type UserRepository struct {
	pool *pgxpool.Pool
}

func (r *UserRepository) FindBySubject(ctx context.Context, subject string) (*users.User, error) {
	row := r.pool.QueryRow(ctx, `
SELECT id, subject, username, email, created_at
  FROM users
 WHERE subject = $1
`, subject)
	return scanUser(row)
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*users.User, error) {
	row := r.pool.QueryRow(ctx, `
SELECT id, subject, username, email, created_at
  FROM users
 WHERE id = $1
`, id)
	return scanUser(row)
}

func (r *UserRepository) Insert(ctx context.Context, user *users.User) (*users.User, error) {
	row := r.pool.QueryRow(ctx, `
INSERT INTO users (subject, username, email)
VALUES ($1, $2, $3)
RETURNING id, subject, username, email, created_at
`, user.Subject, user.Username, user.Email)

	created, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, users.ErrConflict
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return created, nil
}

func scanUser(row pgx.Row) (*users.User, error) {
	var u users.User
	if err := row.Scan(&u.ID, &u.Subject, &u.Username, &u.Email, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, users.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
