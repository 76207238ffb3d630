// Package post provides the post domain model and data access.
package post

import "time"

// Post is a text entry written by a user, optionally in a group and with an image.
type Post struct {
	ID       int64     `db:"id"`
	Text     string    `db:"text"`
	AuthorID int64     `db:"author_id"`
	Author   string    `db:"author"` // author's username, read-only
	Image    *string   `db:"image"`  // media reference, nil when absent
	GroupID  *int64    `db:"group_id"`
	PubDate  time.Time `db:"pub_date"`
}
