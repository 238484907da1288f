package cli

import (
	"context"
	"fmt"

	tgclient "github.com/gotd/td/telegram"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stupiduntilnot/telegram-getter/internal/config"
	"github.com/stupiduntilnot/telegram-getter/internal/telegram"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authenticate with Telegram",
	Long: `Connects to Telegram using API credentials from the environment
(API_ID and API_HASH, see https://my.telegram.org/apps). On first run,
prompts for the phone number and verification code. The session is saved
for future use.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, client *tgclient.Client, cfg config.Config, log *zap.Logger) error {
			self, err := client.Self(ctx)
			if err != nil {
				return fmt.Errorf("fetching own profile: %w", err)
			}
			fmt.Printf("Successfully authenticated as %s\n", telegram.SelfName(self))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
}
