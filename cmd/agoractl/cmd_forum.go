package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"agora/internal/domain/models"
	"agora/internal/tree"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Inspect the category hierarchy",
}

var categoriesTreeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the assembled category tree",
	Args:  cobra.NoArgs,
	RunE:  runCategoriesTree,
}

var threadCmd = &cobra.Command{
	Use:   "thread <postID>",
	Short: "Print a post's nested comment tree",
	Args:  cobra.ExactArgs(1),
	RunE:  runThread,
}

var votePostID string

var voteCmd = &cobra.Command{
	Use:   "vote <post|comment> <id> <up|down|clear>",
	Short: "Vote on a post or comment",
	Long: `Vote on a post or comment.

The vote is applied locally first and rolled back if the request fails.
For comments, --post loads the thread so the updated tally can be shown.`,
	Args: cobra.ExactArgs(3),
	RunE: runVote,
}

func init() {
	voteCmd.Flags().StringVar(&votePostID, "post", "", "Post the comment belongs to")

	categoriesCmd.AddCommand(categoriesTreeCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(threadCmd)
	rootCmd.AddCommand(voteCmd)
}

func runCategoriesTree(cmd *cobra.Command, args []string) error {
	ctx, cancel := requestContext(cmd)
	defer cancel()

	_, s := newStore()
	if err := s.Categories.Load(ctx); err != nil {
		return err
	}
	tree.Walk(s.Categories.Roots(), func(c *models.Category, depth int) bool {
		fmt.Fprintf(out(cmd), "%s%s (%s) posts=%d\n", strings.Repeat("  ", depth), c.Name, c.Slug, c.PostCount)
		return true
	})
	return nil
}

func runThread(cmd *cobra.Command, args []string) error {
	ctx, cancel := requestContext(cmd)
	defer cancel()

	_, s := newStore()
	if err := s.Thread.Load(ctx, args[0]); err != nil {
		return err
	}
	printThread(cmd, s.Thread.Roots())
	fmt.Fprintf(out(cmd), "%d comments\n", s.Thread.Count())
	return nil
}

func printThread(cmd *cobra.Command, roots []*models.Comment) {
	tree.Walk(roots, func(c *models.Comment, depth int) bool {
		fmt.Fprintf(out(cmd), "%s[%s] %+d %s\n", strings.Repeat("  ", depth), c.ID, c.Upvotes-c.Downvotes, firstLine(c.Body))
		return true
	})
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	if len(line) > 80 {
		return line[:77] + "..."
	}
	return line
}

func parseVote(s string) (int, error) {
	switch s {
	case "up":
		return 1, nil
	case "down":
		return -1, nil
	case "clear":
		return 0, nil
	}
	return 0, fmt.Errorf("unknown vote %q: want up, down or clear", s)
}

func runVote(cmd *cobra.Command, args []string) error {
	if err := requireToken(); err != nil {
		return err
	}
	value, err := parseVote(args[2])
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(cmd)
	defer cancel()

	c, s := newStore()
	id := args[1]
	switch args[0] {
	case "post":
		post, err := c.GetPost(ctx, id)
		if err != nil {
			return err
		}
		s.Posts.Put(*post)
		if err := s.Posts.Vote(ctx, id, value); err != nil {
			return err
		}
		if p, ok := s.Posts.Get(id); ok {
			fmt.Fprintf(out(cmd), "post %s: +%d -%d (mine %d)\n", id, p.Upvotes, p.Downvotes, p.MyVote)
		}
	case "comment":
		if votePostID != "" {
			if err := s.Thread.Load(ctx, votePostID); err != nil {
				return err
			}
		}
		if err := s.Thread.Vote(ctx, id, value); err != nil {
			return err
		}
		if cm := tree.Find(s.Thread.Roots(), id); cm != nil {
			fmt.Fprintf(out(cmd), "comment %s: +%d -%d (mine %d)\n", id, cm.Upvotes, cm.Downvotes, cm.MyVote)
		} else {
			fmt.Fprintf(out(cmd), "comment %s: vote recorded\n", id)
		}
	default:
		return fmt.Errorf("unknown target %q: want post or comment", args[0])
	}

	return nil
}
