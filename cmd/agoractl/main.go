// Command agoractl is the operator and scripting client for the agora API.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"agora/internal/client"
	"agora/internal/store"
)

var (
	// Global flags
	apiURL  string
	token   string
	timeout time.Duration
	verbose bool

	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "agoractl",
	Short: "Operate and script an agora deployment",
	Long: `agoractl talks to the agora API as a regular client.

Writes (votes, follows) go through the same optimistic store the apps use,
so a failed request is reported and the local state is rolled back.

Environment:
  AGORA_API_URL   API base URL (default http://localhost:8080)
  AGORA_TOKEN     access token for authenticated commands`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		return nil
	},
}

func init() {
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&apiURL, "api", envOr("AGORA_API_URL", "http://localhost:8080"), "API base URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("AGORA_TOKEN"), "Access token (or set AGORA_TOKEN)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newClient() *client.Client {
	return client.New(apiURL, client.WithToken(token), client.WithLogger(logger))
}

func newStore() (*client.Client, *store.Store) {
	c := newClient()
	return c, store.New(c, logger)
}

// requestContext bounds a one-shot command by --timeout and cancels on Ctrl-C
func requestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

func out(cmd *cobra.Command) io.Writer { return cmd.OutOrStdout() }

func requireToken() error {
	if token == "" {
		return fmt.Errorf("this command needs --token or AGORA_TOKEN")
	}
	return nil
}
