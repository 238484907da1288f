package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	tgclient "github.com/gotd/td/telegram"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stupiduntilnot/telegram-getter/internal/chats"
	"github.com/stupiduntilnot/telegram-getter/internal/config"
	"github.com/stupiduntilnot/telegram-getter/internal/peers"
)

var (
	listGroups   bool
	listPrivate  bool
	listChannels bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all Telegram chats (dialogs, groups, channels)",
	Long: `Lists every chat visible to the authenticated account. By default all
chats are shown; use a filter option to narrow to one type.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := listFilter()
		if err != nil {
			return err
		}

		return withClient(func(ctx context.Context, client *tgclient.Client, cfg config.Config, log *zap.Logger) error {
			cache, err := peers.Open(cfg.PeerDB)
			if err != nil {
				return err
			}
			defer cache.Close()

			result, err := chats.List(ctx, client.API(), filter, cache, log)
			if err != nil {
				return err
			}

			if len(result) == 0 {
				if filter != "" {
					fmt.Printf("No chats found matching filter '%s'\n", filter)
				} else {
					fmt.Println("No chats found")
				}
				return nil
			}

			if err := chats.FormatTable(os.Stdout, result); err != nil {
				return err
			}
			fmt.Printf("\nTotal: %d chat(s)\n", len(result))
			return nil
		})
	},
}

func listFilter() (string, error) {
	set := 0
	for _, f := range []bool{listGroups, listPrivate, listChannels} {
		if f {
			set++
		}
	}
	if set > 1 {
		return "", errors.New("only one filter option can be used at a time")
	}
	switch {
	case listGroups:
		return chats.TypeGroup, nil
	case listPrivate:
		return chats.TypePrivate, nil
	case listChannels:
		return chats.TypeChannel, nil
	}
	return "", nil
}

func init() {
	listCmd.Flags().BoolVarP(&listGroups, "groups", "g", false, "Show only groups (including supergroups)")
	listCmd.Flags().BoolVarP(&listPrivate, "private", "p", false, "Show only private chats")
	listCmd.Flags().BoolVarP(&listChannels, "channels", "c", false, "Show only channels")
	rootCmd.AddCommand(listCmd)
}
