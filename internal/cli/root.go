// Package cli defines the cobra command tree for yt.
package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/evcraddock/yatube-api/internal/client"
	"github.com/evcraddock/yatube-api/internal/db"
)

var (
	flagFormat string
	flagDB     string
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "yt",
		Short:         "Run and use the yatube blog API",
		Long:          "A blog API server with posts, groups, and comments. Serve the API, manage users and groups, or read and write posts as a client.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")
	root.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (default: ~/.config/yt/yatube.db)")

	root.AddCommand(
		newServeCmd(),
		newUserCmd(),
		newGroupCmd(),
		newVersionCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newStatusCmd(),
		newPostsCmd(),
		newShowCmd(),
		newPostCmd(),
		newEditCmd(),
		newRemoveCmd(),
		newGroupsCmd(),
		newCommentsCmd(),
		newCommentCmd(),
		newEditCommentCmd(),
		newRemoveCommentCmd(),
	)

	return root
}

// dbPath returns the --db flag, the YT_DB variable, or the default path.
func dbPath() (string, error) {
	if flagDB != "" {
		return flagDB, nil
	}
	if v := os.Getenv("YT_DB"); v != "" {
		return v, nil
	}
	return db.DefaultPath()
}

// openDB opens the SQLite database for server and admin commands.
func openDB() (*sqlx.DB, error) {
	path, err := dbPath()
	if err != nil {
		return nil, err
	}
	return db.Open(path)
}

// newAPIClient creates an HTTP client for the API.
func newAPIClient() *client.Client {
	return client.New(getServerURL(), getToken())
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}

// closeDB closes the database, logging any error to stderr.
func closeDB(database *sqlx.DB) {
	if err := database.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: closing database: %v\n", err)
	}
}

// parseID parses a numeric command argument.
func parseID(kind, arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s ID: %s", kind, arg)
	}
	return id, nil
}
