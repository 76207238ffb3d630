package comment

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

// Repository provides CRUD operations for comments.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a comment repository.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

const selectSQL = `SELECT c.id, c.post_id, c.author_id, u.username AS author, c.text, c.created
	FROM comments c JOIN users u ON u.id = c.author_id`

// Add creates a new comment on a post.
func (r *Repository) Add(ctx context.Context, postID, authorID int64, text string) (*Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("comment text is required")
	}

	result, err := r.db.ExecContext(ctx,
		"INSERT INTO comments (post_id, author_id, text, created) VALUES (?, ?, ?, ?)",
		postID, authorID, text, time.Now().UTC(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY") {
			return nil, fmt.Errorf("post %d: %w", postID, db.ErrNotFound)
		}
		return nil, fmt.Errorf("inserting comment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting insert id: %w", err)
	}

	return r.GetByID(ctx, id)
}

// GetByID returns a comment by its ID.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Comment, error) {
	var c Comment
	err := r.db.GetContext(ctx, &c, selectSQL+" WHERE c.id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("comment %d: %w", id, db.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading comment %d: %w", id, err)
	}
	return &c, nil
}

// ListByPostID returns all comments for a post in insertion order.
func (r *Repository) ListByPostID(ctx context.Context, postID int64) ([]*Comment, error) {
	comments := []*Comment{}
	if err := r.db.SelectContext(ctx, &comments,
		selectSQL+" WHERE c.post_id = ? ORDER BY c.id", postID); err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	return comments, nil
}

// UpdateText replaces the text of a comment. Author and post never change.
func (r *Repository) UpdateText(ctx context.Context, id int64, text string) (*Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("comment text is required")
	}

	result, err := r.db.ExecContext(ctx, "UPDATE comments SET text = ? WHERE id = ?", text, id)
	if err != nil {
		return nil, fmt.Errorf("updating comment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return nil, fmt.Errorf("comment %d: %w", id, db.ErrNotFound)
	}

	return r.GetByID(ctx, id)
}

// Delete removes a comment by ID.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM comments WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting comment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("comment %d: %w", id, db.ErrNotFound)
	}

	return nil
}
