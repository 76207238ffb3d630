package post

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/evcraddock/yatube-api/internal/db"
)

// Repository provides CRUD operations for posts.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a post repository.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

const selectSQL = `SELECT p.id, p.text, p.author_id, u.username AS author, p.image, p.group_id, p.pub_date
	FROM posts p JOIN users u ON u.id = p.author_id`

// Insert adds a new post. The publication date is assigned here, never by the caller.
func (r *Repository) Insert(ctx context.Context, p *Post) (*Post, error) {
	if strings.TrimSpace(p.Text) == "" {
		return nil, fmt.Errorf("post text is required")
	}

	result, err := r.db.ExecContext(ctx,
		"INSERT INTO posts (text, author_id, image, group_id, pub_date) VALUES (?, ?, ?, ?, ?)",
		p.Text, p.AuthorID, p.Image, p.GroupID, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting post: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting insert id: %w", err)
	}

	return r.GetByID(ctx, id)
}

// GetByID returns a post by its ID.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Post, error) {
	var p Post
	err := r.db.GetContext(ctx, &p, selectSQL+" WHERE p.id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("post %d: %w", id, db.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying post %d: %w", id, err)
	}
	return &p, nil
}

// ListOptions controls filtering and paging for List.
// A zero Limit means no limit.
type ListOptions struct {
	Limit   int
	Offset  int
	GroupID *int64
}

func (o ListOptions) where() (string, []interface{}) {
	if o.GroupID == nil {
		return "", nil
	}
	return " WHERE p.group_id = ?", []interface{}{*o.GroupID}
}

// List returns posts in insertion order.
func (r *Repository) List(ctx context.Context, opts ListOptions) ([]*Post, error) {
	where, args := opts.where()
	query := selectSQL + where + " ORDER BY p.id"

	switch {
	case opts.Limit > 0:
		query += " LIMIT ? OFFSET ?"
		args = append(args, opts.Limit, opts.Offset)
	case opts.Offset > 0:
		query += " LIMIT -1 OFFSET ?"
		args = append(args, opts.Offset)
	}

	posts := []*Post{}
	if err := r.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	return posts, nil
}

// Count returns how many posts match the options (paging is ignored).
func (r *Repository) Count(ctx context.Context, opts ListOptions) (int, error) {
	where, args := opts.where()

	var n int
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM posts p"+where, args...); err != nil {
		return 0, fmt.Errorf("counting posts: %w", err)
	}
	return n, nil
}

// Update writes the mutable fields (text, image, group) of a post.
// Author and publication date are never changed.
func (r *Repository) Update(ctx context.Context, p *Post) (*Post, error) {
	if strings.TrimSpace(p.Text) == "" {
		return nil, fmt.Errorf("post text is required")
	}

	result, err := r.db.ExecContext(ctx,
		"UPDATE posts SET text = ?, image = ?, group_id = ? WHERE id = ?",
		p.Text, p.Image, p.GroupID, p.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating post: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return nil, fmt.Errorf("post %d: %w", p.ID, db.ErrNotFound)
	}

	return r.GetByID(ctx, p.ID)
}

// Delete removes a post and, by cascade, its comments.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM posts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("post %d: %w", id, db.ErrNotFound)
	}

	return nil
}
