package cli

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evcraddock/yatube-api/internal/client"
)

func newPostsCmd() *cobra.Command {
	var groupID int64

	cmd := &cobra.Command{
		Use:   "posts",
		Short: "List posts",
		Long:  "List all posts in publication order, optionally only those in one group.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			posts, err := newAPIClient().ListPosts(client.ListOptions{GroupID: groupID})
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), posts)
			}
			return printPostTable(cmd.OutOrStdout(), posts)
		},
	}

	cmd.Flags().Int64Var(&groupID, "group", 0, "only posts in this group ID")

	return cmd
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a post",
		Long:  "Show a post with all its comments.",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := parseID("post", args[0])
	if err != nil {
		return err
	}

	c := newAPIClient()
	p, err := c.GetPost(id)
	if err != nil {
		return err
	}
	comments, err := c.ListComments(id)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if isJSON() {
		return printJSON(out, map[string]interface{}{"post": p, "comments": comments})
	}

	printPostSummary(out, p)
	fmt.Fprintln(out)
	if len(comments) > 0 {
		fmt.Fprintf(out, "Comments (%d):\n", len(comments))
	}
	printCommentList(out, comments)
	return nil
}

func newPostCmd() *cobra.Command {
	var groupID int64
	var imagePath string

	cmd := &cobra.Command{
		Use:   `post "text"`,
		Short: "Publish a post",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := postInput(strings.Join(args, " "), groupID, imagePath)
			if err != nil {
				return err
			}
			p, err := newAPIClient().CreatePost(in)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), p)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Post #%d published.\n", p.ID)
			return nil
		},
	}

	cmd.Flags().Int64Var(&groupID, "group", 0, "group ID to post in")
	cmd.Flags().StringVar(&imagePath, "image", "", "image file to attach")

	return cmd
}

func newEditCmd() *cobra.Command {
	var groupID int64
	var imagePath string

	cmd := &cobra.Command{
		Use:   `edit <id> "text"`,
		Short: "Change the text of your post",
		Long:  "Replace the text of a post you wrote. --group and --image also move it or replace its image.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("post", args[0])
			if err != nil {
				return err
			}
			in, err := postInput(strings.Join(args[1:], " "), groupID, imagePath)
			if err != nil {
				return err
			}
			p, err := newAPIClient().UpdatePost(id, in)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), p)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Post #%d updated.\n", p.ID)
			return nil
		},
	}

	cmd.Flags().Int64Var(&groupID, "group", 0, "move the post to this group ID")
	cmd.Flags().StringVar(&imagePath, "image", "", "replace the image with this file")

	return cmd
}

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete your post",
		Long:  "Delete a post you wrote, along with its comments.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("post", args[0])
			if err != nil {
				return err
			}
			if err := newAPIClient().DeletePost(id); err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), map[string]interface{}{"id": id, "removed": true})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Post #%d removed.\n", id)
			return nil
		},
	}
}

func newGroupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "groups",
		Short: "List groups on the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			groups, err := newAPIClient().ListGroups()
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), groups)
			}
			return printGroupTable(cmd.OutOrStdout(), groups)
		},
	}
}

// postInput builds a post payload, reading the image file if one is given.
func postInput(text string, groupID int64, imagePath string) (client.PostInput, error) {
	in := client.PostInput{Text: strings.TrimSpace(text)}
	if in.Text == "" {
		return in, fmt.Errorf("post text is required")
	}
	if groupID > 0 {
		in.GroupID = &groupID
	}
	if imagePath != "" {
		uri, err := imageDataURI(imagePath)
		if err != nil {
			return in, err
		}
		in.Image = uri
	}
	return in, nil
}

// imageDataURI encodes a file as a base64 data URI.
func imageDataURI(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading image: %w", err)
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("%s is not an image (%s)", path, contentType)
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
