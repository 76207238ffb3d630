package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/evcraddock/yatube-api/internal/auth"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage API users",
		Long:  "Create and list users and revoke their tokens. Works directly on the database.",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <username>",
			Short: "Create a user",
			Long:  "Create a user. The password is read from the first line of stdin.",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runUserAdd(cmd, args[0])
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List users",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runUserList(cmd)
			},
		},
		&cobra.Command{
			Use:   "revoke <username>",
			Short: "Revoke all tokens of a user",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runUserRevoke(cmd, args[0])
			},
		},
	)

	return cmd
}

// readPassword reads one line from stdin, prompting on the error stream.
func readPassword(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading password: %w", err)
	}
	fmt.Fprintln(cmd.ErrOrStderr())
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", fmt.Errorf("no password provided")
	}
	return password, nil
}

func runUserAdd(cmd *cobra.Command, username string) error {
	password, err := readPassword(cmd)
	if err != nil {
		return err
	}

	database, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(database)

	u, err := auth.NewUserStore(database).Create(context.Background(), username, password)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), u)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "User %s created (#%d).\n", u.Username, u.ID)
	return nil
}

func runUserList(cmd *cobra.Command) error {
	database, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(database)

	ctx := context.Background()
	users, err := auth.NewUserStore(database).List(ctx)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), users)
	}

	out := cmd.OutOrStdout()
	if len(users) == 0 {
		fmt.Fprintln(out, "No users.")
		return nil
	}

	tokens := auth.NewTokenStore(database)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tUSERNAME\tCREATED\tLAST LOGIN\tTOKENS"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	for _, u := range users {
		ts, err := tokens.ListForUser(ctx, u.ID)
		if err != nil {
			return err
		}
		last := "-"
		if u.LastLogin != nil {
			last = u.LastLogin.Format("2006-01-02 15:04")
		}
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n",
			u.ID, u.Username, u.CreatedAt.Format("2006-01-02"), last, len(ts)); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}
	return w.Flush()
}

func runUserRevoke(cmd *cobra.Command, username string) error {
	database, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(database)

	ctx := context.Background()
	u, err := auth.NewUserStore(database).GetByUsername(ctx, username)
	if err != nil {
		return err
	}

	n, err := auth.NewTokenStore(database).RevokeForUser(ctx, u.ID)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), map[string]interface{}{"username": u.Username, "revoked": n})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Revoked %d token(s) for %s.\n", n, u.Username)
	return nil
}
