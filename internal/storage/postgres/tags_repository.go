package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/codingevents/server/internal/domain/tags"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ tags.Repository = (*TagRepository)(nil)

type TagRepository struct {
	pool *pgxpool.Pool
}

func (r *TagRepository) Insert(ctx context.Context, name string) (*tags.Tag, error) {
	row := r.pool.QueryRow(ctx, `
INSERT INTO tags (name)
VALUES ($1)
RETURNING id, name, created_at
`, name)

	tag, err := scanTag(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, tags.ErrConflict
		}
		return nil, fmt.Errorf("insert tag: %w", err)
	}
	return tag, nil
}

func (r *TagRepository) List(ctx context.Context) ([]tags.Tag, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, name, created_at
  FROM tags
 ORDER BY name
`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()
	return collectTags(rows)
}

func (r *TagRepository) GetByID(ctx context.Context, id int64) (*tags.Tag, error) {
	row := r.pool.QueryRow(ctx, `
SELECT id, name, created_at
  FROM tags
 WHERE id = $1
`, id)

	tag, err := scanTag(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tags.ErrNotFound
		}
		return nil, fmt.Errorf("get tag: %w", err)
	}
	return tag, nil
}

func (r *TagRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
SELECT EXISTS (SELECT 1 FROM tags WHERE id = $1)
`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check tag: %w", err)
	}
	return exists, nil
}

// ExistsByName matches exactly; tag name uniqueness is case-sensitive as
// persisted.
func (r *TagRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
SELECT EXISTS (SELECT 1 FROM tags WHERE name = $1)
`, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check tag name: %w", err)
	}
	return exists, nil
}

func (r *TagRepository) ListByEvent(ctx context.Context, eventID int64) ([]tags.Tag, error) {
	rows, err := r.pool.Query(ctx, `
SELECT t.id, t.name, t.created_at
  FROM tags t
  JOIN coding_event_tags cet ON cet.tag_id = t.id
 WHERE cet.coding_event_id = $1
 ORDER BY t.name
`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list event tags: %w", err)
	}
	defer rows.Close()
	return collectTags(rows)
}

func (r *TagRepository) Attach(ctx context.Context, eventID, tagID int64) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO coding_event_tags (coding_event_id, tag_id)
VALUES ($1, $2)
`, eventID, tagID)
	if err != nil {
		if isUniqueViolation(err) {
			return tags.ErrConflict
		}
		if isForeignKeyViolation(err) {
			return tags.ErrNotFound
		}
		return fmt.Errorf("attach tag: %w", err)
	}
	return nil
}

func (r *TagRepository) Detach(ctx context.Context, eventID, tagID int64) error {
	tag, err := r.pool.Exec(ctx, `
DELETE FROM coding_event_tags
 WHERE coding_event_id = $1 AND tag_id = $2
`, eventID, tagID)
	if err != nil {
		return fmt.Errorf("detach tag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return tags.ErrNotFound
	}
	return nil
}

func (r *TagRepository) HasAssociation(ctx context.Context, eventID, tagID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
SELECT EXISTS (
	SELECT 1 FROM coding_event_tags
	 WHERE coding_event_id = $1 AND tag_id = $2
)
`, eventID, tagID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check association: %w", err)
	}
	return exists, nil
}

func scanTag(row pgx.Row) (*tags.Tag, error) {
	var t tags.Tag
	if err := row.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func collectTags(rows pgx.Rows) ([]tags.Tag, error) {
	list := make([]tags.Tag, 0)
	for rows.Next() {
		var t tags.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		list = append(list, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tags: %w", err)
	}
	return list, nil
}
