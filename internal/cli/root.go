// Package cli defines the telegram-getter command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	tgclient "github.com/gotd/td/telegram"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stupiduntilnot/telegram-getter/internal/config"
	"github.com/stupiduntilnot/telegram-getter/internal/logging"
	"github.com/stupiduntilnot/telegram-getter/internal/telegram"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "telegram-getter",
	Short: "Download and back up your Telegram chats",
	Long: `telegram-getter downloads message history from Telegram chats into
local archives: Markdown for reading, JSON for tooling, plus media files
and optional voice transcription.

Quick start:
  1. telegram-getter auth          # Authenticate first
  2. telegram-getter list          # See available chats
  3. telegram-getter download "Chat Name" --all`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var authErr *telegram.AuthError
		var credErr *telegram.CredentialsError
		if errors.As(err, &authErr) || errors.As(err, &credErr) {
			fmt.Fprintf(os.Stderr, "Authentication error: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")
}

// withClient loads configuration, connects to Telegram (authenticating if
// needed) and hands the connected client to f. Interrupts cancel the
// context so a long download shuts down cleanly.
func withClient(f func(ctx context.Context, client *tgclient.Client, cfg config.Config, log *zap.Logger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logging.New(verbose)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := telegram.New(cfg, log)
	return client.Run(ctx, func(ctx context.Context, c *tgclient.Client) error {
		return f(ctx, c, cfg, log)
	})
}
