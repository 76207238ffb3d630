// Package group provides the group (post category) model and data access.
package group

// Group is a category posts can belong to. Groups are managed out-of-band
// and are read-only over the API.
type Group struct {
	ID          int64  `db:"id" json:"id"`
	Title       string `db:"title" json:"title"`
	Slug        string `db:"slug" json:"slug"`
	Description string `db:"description" json:"description"`
}
