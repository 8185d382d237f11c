package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"agora/internal/store"
)

var followProvider bool

var followCmd = &cobra.Command{
	Use:   "follow <userID>",
	Short: "Follow a user (or a provider with --provider)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFollow(cmd, args[0], true)
	},
}

var unfollowCmd = &cobra.Command{
	Use:   "unfollow <userID>",
	Short: "Unfollow a user (or a provider with --provider)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFollow(cmd, args[0], false)
	},
}

func init() {
	for _, c := range []*cobra.Command{followCmd, unfollowCmd} {
		c.Flags().BoolVar(&followProvider, "provider", false, "Target is a provider listing")
		rootCmd.AddCommand(c)
	}
}

func runFollow(cmd *cobra.Command, id string, follow bool) error {
	if err := requireToken(); err != nil {
		return err
	}
	ctx, cancel := requestContext(cmd)
	defer cancel()

	_, s := newStore()
	if followProvider {
		return followProviderListing(ctx, cmd, s, id, follow)
	}

	// Loading first lets the store show the optimistic follower count
	if _, err := s.Profiles.Fetch(ctx, id); err != nil {
		return err
	}
	if err := s.Profiles.SetFollowing(ctx, id, follow); err != nil {
		return err
	}
	if p, ok := s.Profiles.Get(id); ok {
		fmt.Fprintf(out(cmd), "%s: following=%v followers=%d\n", id, p.IsFollowing, p.Stats.FollowerCount)
	}
	return nil
}

func followProviderListing(ctx context.Context, cmd *cobra.Command, s *store.Store, id string, follow bool) error {
	if err := s.Providers.SetFollowing(ctx, id, follow); err != nil {
		return err
	}
	fmt.Fprintf(out(cmd), "provider %s: following=%v\n", id, follow)
	return nil
}
