package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// migrations is an ordered list of SQL statements to run.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		username      TEXT    NOT NULL UNIQUE,
		password_hash TEXT    NOT NULL,
		created_at    DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS post_groups (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		title       TEXT    NOT NULL,
		slug        TEXT    NOT NULL UNIQUE,
		description TEXT    NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS posts (
		id        INTEGER PRIMARY KEY AUTOINCREMENT,
		text      TEXT     NOT NULL,
		author_id INTEGER  NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		image     TEXT,
		group_id  INTEGER  REFERENCES post_groups(id) ON DELETE SET NULL,
		pub_date  DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_posts_group_id ON posts(group_id)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id        INTEGER PRIMARY KEY AUTOINCREMENT,
		post_id   INTEGER  NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		author_id INTEGER  NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		text      TEXT     NOT NULL,
		created   DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_post_id ON comments(post_id)`,
	`CREATE TABLE IF NOT EXISTS api_tokens (
		id           INTEGER  PRIMARY KEY AUTOINCREMENT,
		user_id      INTEGER  NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		key_prefix   TEXT     NOT NULL,
		key_hash     TEXT     NOT NULL UNIQUE,
		created_at   DATETIME DEFAULT CURRENT_TIMESTAMP,
		last_used_at DATETIME
	)`,
}

// migrate runs all migrations in order.
func migrate(db *sqlx.DB) error {
	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}

	// Column additions (idempotent, checks if column exists first)
	columnMigrations := []struct {
		table, column, definition string
	}{
		{"users", "last_login", "DATETIME"},
	}

	for _, cm := range columnMigrations {
		if err := addColumnIfNotExists(db, cm.table, cm.column, cm.definition); err != nil {
			return fmt.Errorf("adding %s.%s: %w", cm.table, cm.column, err)
		}
	}

	return nil
}

// addColumnIfNotExists adds a column to a table if it doesn't already exist.
func addColumnIfNotExists(db *sqlx.DB, table, column, definition string) error {
	var columns []string
	if err := db.Select(&columns, fmt.Sprintf("SELECT name FROM pragma_table_info('%s')", table)); err != nil {
		return fmt.Errorf("checking table info: %w", err)
	}

	for _, name := range columns {
		if name == column {
			return nil
		}
	}

	_, err := db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition))
	return err
}
