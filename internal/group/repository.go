package group

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/evcraddock/yatube-api/internal/db"
)

// ErrDuplicateSlug is returned when a group with the same slug exists.
var ErrDuplicateSlug = errors.New("group slug already exists")

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// Repository provides data access for groups.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a group repository.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Create adds a new group.
func (r *Repository) Create(ctx context.Context, title, slug, description string) (*Group, error) {
	title = strings.TrimSpace(title)
	slug = strings.TrimSpace(slug)

	if title == "" {
		return nil, fmt.Errorf("group title is required")
	}
	if !slugPattern.MatchString(slug) {
		return nil, fmt.Errorf("invalid slug %q: use letters, numbers, underscores or hyphens", slug)
	}

	result, err := r.db.ExecContext(ctx,
		"INSERT INTO post_groups (title, slug, description) VALUES (?, ?, ?)",
		title, slug, description,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSlug, slug)
		}
		return nil, fmt.Errorf("inserting group: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting insert id: %w", err)
	}

	return r.GetByID(ctx, id)
}

// GetByID returns a group by its ID.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Group, error) {
	var g Group
	err := r.db.GetContext(ctx, &g,
		"SELECT id, title, slug, description FROM post_groups WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("group %d: %w", id, db.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying group %d: %w", id, err)
	}
	return &g, nil
}

// GetBySlug returns a group by its slug.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (*Group, error) {
	var g Group
	err := r.db.GetContext(ctx, &g,
		"SELECT id, title, slug, description FROM post_groups WHERE slug = ?", slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("group %q: %w", slug, db.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying group %q: %w", slug, err)
	}
	return &g, nil
}

// List returns all groups in insertion order.
func (r *Repository) List(ctx context.Context) ([]*Group, error) {
	groups := []*Group{}
	if err := r.db.SelectContext(ctx, &groups,
		"SELECT id, title, slug, description FROM post_groups ORDER BY id"); err != nil {
		return nil, fmt.Errorf("listing groups: %w", err)
	}
	return groups, nil
}

// Delete removes a group. Posts in the group keep existing without one.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM post_groups WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting group: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("group %d: %w", id, db.ErrNotFound)
	}

	return nil
}
