package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"agora/internal/realtime"
	"agora/internal/store"
)

var (
	watchEvent  string
	watchFilter string
)

var watchCmd = &cobra.Command{
	Use:   "watch <table>",
	Short: "Stream row changes for a table until interrupted",
	Long: `Subscribe to realtime changes on a table and print each event.

Events are also applied to a local store, preloaded for posts (the front
page), categories, and comments when --filter post_id=eq.<id> names a thread.

Examples:
  agoractl watch comments --filter post_id=eq.7d1c...
  agoractl watch posts --event UPDATE`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchEvent, "event", "*", "INSERT, UPDATE, DELETE or *")
	watchCmd.Flags().StringVar(&watchFilter, "filter", "", "Row filter in column=eq.value form")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	filter, err := realtime.ParseFilter(args[0], watchEvent, watchFilter)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, s := newStore()
	if err := preload(ctx, s, filter); err != nil {
		return err
	}

	rt := c.Realtime()
	defer rt.Close()

	sub, err := rt.Subscribe(ctx, filter, func(ch realtime.Change) {
		applied := s.ApplyChange(ch)
		fmt.Fprintf(out(cmd), "%s %s.%s %s applied=%v\n",
			ch.CommitTimestamp.Format("15:04:05"), ch.Schema, ch.Table, ch.Type, applied)
		if verbose {
			fmt.Fprintf(out(cmd), "  %s\n", ch.Row())
		}
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "watching %s (topic %s), Ctrl-C to stop\n", filter, sub.Topic())

	select {
	case <-ctx.Done():
		sub.Close()
		return nil
	case <-sub.Done():
		if err := sub.Err(); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}
}

// preload fills the part of the store the filter touches, so applied
// changes have something to land on
func preload(ctx context.Context, s *store.Store, f realtime.Filter) error {
	switch f.Table {
	case "posts":
		return s.Posts.Load(ctx, "")
	case "categories":
		return s.Categories.Load(ctx)
	case "comments":
		if f.Column == "post_id" {
			return s.Thread.Load(ctx, f.Value)
		}
	}
	return nil
}
