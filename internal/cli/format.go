package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/evcraddock/yatube-api/internal/client"
)

// Status markers. color disables itself when stdout is not a terminal.
var (
	okText   = color.New(color.FgHiGreen).SprintFunc()
	failText = color.New(color.FgHiRed).SprintFunc()
	boldText = color.New(color.Bold).SprintFunc()
)

// printJSON marshals v as indented JSON and writes it to w.
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printPostSummary prints a single post in text format.
func printPostSummary(w io.Writer, p *client.Post) {
	fmt.Fprintf(w, "%s\n", boldText(fmt.Sprintf("Post #%d", p.ID)))
	fmt.Fprintf(w, "  Author:    %s\n", p.Author)
	fmt.Fprintf(w, "  Published: %s\n", p.PubDate.Format("2006-01-02 15:04"))
	if p.Group != nil {
		fmt.Fprintf(w, "  Group:     #%d\n", *p.Group)
	}
	if p.Image != nil {
		fmt.Fprintf(w, "  Image:     %s\n", *p.Image)
	}
	fmt.Fprintf(w, "\n%s\n", p.Text)
}

// printPostTable prints a list of posts as a formatted table.
func printPostTable(out io.Writer, posts []*client.Post) error {
	if len(posts) == 0 {
		fmt.Fprintln(out, "No posts found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tAUTHOR\tGROUP\tPUBLISHED\tTEXT"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(w, "--\t------\t-----\t---------\t----"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}

	for _, p := range posts {
		grp := "-"
		if p.Group != nil {
			grp = fmt.Sprintf("%d", *p.Group)
		}
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			p.ID, p.Author, grp, p.PubDate.Format("2006-01-02 15:04"), truncate(oneLine(p.Text), 50)); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	fmt.Fprintf(out, "\nTotal: %d posts\n", len(posts))
	return nil
}

// printGroupTable prints groups as a formatted table.
func printGroupTable(out io.Writer, groups []*client.Group) error {
	if len(groups) == 0 {
		fmt.Fprintln(out, "No groups.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tSLUG\tTITLE\tDESCRIPTION"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	for _, g := range groups {
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
			g.ID, g.Slug, g.Title, truncate(oneLine(g.Description), 40)); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}
	return w.Flush()
}

// printCommentList prints comments in text format.
func printCommentList(w io.Writer, comments []*client.Comment) {
	if len(comments) == 0 {
		fmt.Fprintln(w, "No comments.")
		return
	}

	for _, c := range comments {
		fmt.Fprintf(w, "[%s] #%d (%s)\n  %s\n\n",
			c.Created.Format("2006-01-02 15:04"), c.ID, c.Author, c.Text)
	}
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate shortens a string to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
