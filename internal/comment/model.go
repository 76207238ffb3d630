// Package comment provides the comment domain model and data access.
package comment

import "time"

// Comment is a user note on a post.
type Comment struct {
	ID       int64     `db:"id"`
	PostID   int64     `db:"post_id"`
	AuthorID int64     `db:"author_id"`
	Author   string    `db:"author"` // author's username, read-only
	Text     string    `db:"text"`
	Created  time.Time `db:"created"`
}
