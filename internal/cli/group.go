package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/yatube-api/internal/client"
	"github.com/evcraddock/yatube-api/internal/group"
)

// newGroupCmd manages groups on the database. The API only reads them.
func newGroupCmd() *cobra.Command {
	var description string

	add := &cobra.Command{
		Use:   "add <slug> <title>",
		Short: "Create a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGroupAdd(cmd, args[0], args[1], description)
		},
	}
	add.Flags().StringVar(&description, "description", "", "group description")

	cmd := &cobra.Command{
		Use:   "group",
		Short: "Manage groups",
		Long:  "Create and list groups. Works directly on the database.",
	}
	cmd.AddCommand(
		add,
		&cobra.Command{
			Use:   "list",
			Short: "List groups",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runGroupList(cmd)
			},
		},
	)
	return cmd
}

func runGroupAdd(cmd *cobra.Command, slug, title, description string) error {
	database, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(database)

	g, err := group.NewRepository(database).Create(context.Background(), title, slug, description)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), g)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Group #%d %s created.\n", g.ID, g.Slug)
	return nil
}

func runGroupList(cmd *cobra.Command) error {
	database, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(database)

	groups, err := group.NewRepository(database).List(context.Background())
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), groups)
	}
	rows := make([]*client.Group, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, &client.Group{ID: g.ID, Title: g.Title, Slug: g.Slug, Description: g.Description})
	}
	return printGroupTable(cmd.OutOrStdout(), rows)
}
