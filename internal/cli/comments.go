package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newCommentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "comments <post-id>",
		Short: "List comments on a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("post", args[0])
			if err != nil {
				return err
			}
			comments, err := newAPIClient().ListComments(id)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), comments)
			}
			printCommentList(cmd.OutOrStdout(), comments)
			return nil
		},
	}
}

func newCommentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   `comment <post-id> "text"`,
		Short: "Comment on a post",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("post", args[0])
			if err != nil {
				return err
			}

			text := strings.TrimSpace(strings.Join(args[1:], " "))
			if text == "" {
				return fmt.Errorf("comment text is required")
			}

			comm, err := newAPIClient().AddComment(id, text)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), comm)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Comment #%d added.\n  %s\n", comm.ID, comm.Text)
			return nil
		},
	}
}

func newEditCommentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   `edit-comment <post-id> <comment-id> "text"`,
		Short: "Change the text of your comment",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			postID, commentID, err := parseCommentRef(args[0], args[1])
			if err != nil {
				return err
			}

			text := strings.TrimSpace(strings.Join(args[2:], " "))
			if text == "" {
				return fmt.Errorf("comment text is required")
			}

			comm, err := newAPIClient().UpdateComment(postID, commentID, text)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), comm)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Comment #%d updated.\n  %s\n", comm.ID, comm.Text)
			return nil
		},
	}
}

func newRemoveCommentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm-comment <post-id> <comment-id>",
		Short: "Delete your comment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			postID, commentID, err := parseCommentRef(args[0], args[1])
			if err != nil {
				return err
			}
			if err := newAPIClient().DeleteComment(postID, commentID); err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), map[string]interface{}{"id": commentID, "removed": true})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Comment #%d removed.\n", commentID)
			return nil
		},
	}
}

func parseCommentRef(postArg, commentArg string) (int64, int64, error) {
	postID, err := parseID("post", postArg)
	if err != nil {
		return 0, 0, err
	}
	commentID, err := parseID("comment", commentArg)
	if err != nil {
		return 0, 0, err
	}
	return postID, commentID, nil
}
