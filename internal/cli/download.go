package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tgclient "github.com/gotd/td/telegram"
	"github.com/gotd/td/tg"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stupiduntilnot/telegram-getter/internal/chats"
	"github.com/stupiduntilnot/telegram-getter/internal/config"
	"github.com/stupiduntilnot/telegram-getter/internal/downloader"
	"github.com/stupiduntilnot/telegram-getter/internal/exporter"
	"github.com/stupiduntilnot/telegram-getter/internal/media"
	"github.com/stupiduntilnot/telegram-getter/internal/peers"
	"github.com/stupiduntilnot/telegram-getter/internal/transcriber"
	"github.com/stupiduntilnot/telegram-getter/internal/util"
)

var (
	downloadChatID     int64
	downloadOutput     string
	downloadFrom       string
	downloadTo         string
	downloadNoMedia    bool
	downloadAll        bool
	downloadTranscribe bool
	downloadSync       bool
)

var downloadCmd = &cobra.Command{
	Use:   "download [chat name]",
	Short: "Download chat messages and media",
	Long: `Downloads messages from the specified chat into
<output>/<chat name>/ as messages.md, messages.json and metadata.json.
Media files are downloaded into a media/ subdirectory unless --no-media
is given.

Examples:

  # Download all messages from the beginning
  telegram-getter download "My Chat" --all

  # Sync only new messages (incremental)
  telegram-getter download "My Chat" --sync

  # Download with voice transcription
  telegram-getter download "My Chat" --all --transcribe

  # Download by chat ID
  telegram-getter download --id 123456789 --all

  # Download a specific date range
  telegram-getter download "My Chat" --from 2024-01-01 --to 2024-12-31`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) > 0 {
			name = args[0]
		}
		if name == "" && downloadChatID == 0 {
			return errors.New("either chat name or --id is required")
		}

		from, to, err := parseDateRange(downloadFrom, downloadTo)
		if err != nil {
			return err
		}

		return withClient(func(ctx context.Context, client *tgclient.Client, cfg config.Config, log *zap.Logger) error {
			return runDownload(ctx, client, cfg, log, name, from, to)
		})
	},
}

func parseDateRange(fromStr, toStr string) (from, to time.Time, err error) {
	if fromStr != "" {
		from, err = time.ParseInLocation("2006-01-02", fromStr, time.UTC)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid date format, use YYYY-MM-DD: %q", fromStr)
		}
	}
	if toStr != "" {
		to, err = time.ParseInLocation("2006-01-02", toStr, time.UTC)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid date format, use YYYY-MM-DD: %q", toStr)
		}
	}
	return from, to, nil
}

func runDownload(ctx context.Context, client *tgclient.Client, cfg config.Config, log *zap.Logger, name string, from, to time.Time) error {
	cache, err := peers.Open(cfg.PeerDB)
	if err != nil {
		return err
	}
	defer cache.Close()

	api := client.API()

	chat, err := resolveChat(ctx, api, cache, name, log)
	if err != nil {
		return err
	}

	outDir := filepath.Join(downloadOutput, util.SanitizeFilename(chat.Name))
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", outDir, err)
	}

	fmt.Printf("Downloading chat: %s\n", chat.Name)

	opts := downloader.Options{From: from, To: to}

	var existing []downloader.Message
	if downloadSync {
		var lastID int
		existing, lastID, err = exporter.LoadExisting(outDir)
		if err != nil {
			return err
		}
		if lastID > 0 {
			fmt.Printf("Sync mode: found %d existing messages (last ID: %d)\n", len(existing), lastID)
			opts.MinID = lastID
		} else {
			fmt.Println("No existing messages found, downloading all")
		}
	}

	if downloadAll {
		fmt.Println("Downloading ALL messages from the beginning (chronological order)...")
	}

	self, err := client.Self(ctx)
	if err != nil {
		return fmt.Errorf("fetching own profile: %w", err)
	}

	dl := downloader.New(api, self, cfg.BatchSize, cfg.Delay, log)
	items, err := dl.History(ctx, chat.InputPeer, opts, func(count int) {
		fmt.Printf("\rDownloaded %d messages...", count)
	})
	if err != nil {
		return err
	}
	if len(items) > 0 {
		fmt.Println()
	}
	fmt.Printf("Downloaded %d new messages\n", len(items))

	// The iterator yields newest first; flip to chronological order when a
	// full or incremental download was requested.
	if downloadAll || opts.MinID > 0 {
		downloader.Reverse(items)
	}

	messages := make([]downloader.Message, len(items))
	for i, it := range items {
		messages[i] = it.Message
	}

	if downloadSync && len(existing) > 0 {
		merged := exporter.Merge(existing, messages)
		fmt.Printf("Added %d new messages (total: %d)\n", len(merged)-len(existing), len(merged))
		messages = merged
	}

	if !downloadNoMedia && len(items) > 0 {
		if err := downloadMedia(ctx, api, items, messages, outDir, log); err != nil {
			return err
		}
	}

	if downloadTranscribe && len(messages) > 0 {
		transcribeVoice(ctx, client, chat, messages, outDir, log)
	}

	if _, err := exporter.WriteMarkdown(messages, chat.Name, outDir); err != nil {
		return err
	}
	if _, err := exporter.WriteJSON(messages, outDir); err != nil {
		return err
	}
	if _, err := exporter.WriteMetadata(messages, chat, outDir); err != nil {
		return err
	}

	fmt.Printf("Export complete! Files saved to: %s\n", outDir)
	return nil
}

func resolveChat(ctx context.Context, api *tg.Client, cache *peers.DB, name string, log *zap.Logger) (chats.Chat, error) {
	if downloadChatID != 0 {
		chat, ok, err := chats.FindByID(ctx, api, downloadChatID, cache, log)
		if err != nil {
			return chats.Chat{}, err
		}
		if !ok {
			return chats.Chat{}, fmt.Errorf("chat with ID %d not found", downloadChatID)
		}
		return chat, nil
	}

	chat, ok, err := chats.FindByName(ctx, api, name, cache, log)
	if err != nil {
		return chats.Chat{}, err
	}
	if !ok {
		fmt.Fprintln(os.Stderr, "Tip: use 'telegram-getter list' to see available chats")
		return chats.Chat{}, fmt.Errorf("chat '%s' not found", name)
	}
	return chat, nil
}

// downloadMedia saves attachments for the fetched items and records the
// relative paths on the matching messages. Individual failures are logged
// and skipped so one broken attachment does not abort the archive.
func downloadMedia(ctx context.Context, api *tg.Client, items []downloader.Item, messages []downloader.Message, outDir string, log *zap.Logger) error {
	byID := make(map[int]int, len(messages))
	for i, m := range messages {
		byID[m.ID] = i
	}

	md := media.New(api, outDir, downloadSync, log)
	count := 0
	for _, it := range items {
		relPath, err := md.Download(ctx, it.Raw)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn("media download failed",
				zap.Int("msg_id", it.Message.ID),
				zap.Error(err))
			continue
		}
		if relPath == "" {
			continue
		}
		if i, ok := byID[it.Message.ID]; ok {
			messages[i].MediaPath = relPath
		}
		count++
		fmt.Printf("\rDownloaded %d media files...", count)
	}
	if count > 0 {
		fmt.Println()
	}
	fmt.Printf("Downloaded %d media files\n", count)
	return nil
}

// transcribeVoice fills in transcriptions for voice messages. Voice
// messages are audio media, or documents that ended up with an .ogg file.
// Failures are counted, not fatal: transcription needs Premium or free
// quota.
func transcribeVoice(ctx context.Context, client *tgclient.Client, chat chats.Chat, messages []downloader.Message, outDir string, log *zap.Logger) {
	tr := transcriber.New(client, log)

	done, failed := 0, 0
	for i, m := range messages {
		if m.MediaKind != downloader.MediaAudio && !strings.HasSuffix(m.MediaPath, ".ogg") {
			continue
		}
		audioPath := ""
		if m.MediaPath != "" {
			audioPath = filepath.Join(outDir, m.MediaPath)
		}
		text, err := tr.Transcribe(ctx, chat.InputPeer, m.ID, audioPath)
		if err != nil || text == "" {
			failed++
			continue
		}
		messages[i].Transcription = text
		done++
	}

	if done > 0 {
		fmt.Printf("Transcribed %d voice messages\n", done)
	}
	if failed > 0 {
		fmt.Printf("Could not transcribe %d messages (no Premium or quota exceeded)\n", failed)
	}
}

func init() {
	downloadCmd.Flags().Int64Var(&downloadChatID, "id", 0, "Chat ID (alternative to name)")
	downloadCmd.Flags().StringVarP(&downloadOutput, "output", "o", "output", "Output directory")
	downloadCmd.Flags().StringVar(&downloadFrom, "from", "", "Start date filter (YYYY-MM-DD)")
	downloadCmd.Flags().StringVar(&downloadTo, "to", "", "End date filter (YYYY-MM-DD)")
	downloadCmd.Flags().BoolVar(&downloadNoMedia, "no-media", false, "Skip downloading media files")
	downloadCmd.Flags().BoolVarP(&downloadAll, "all", "a", false, "Download ALL messages from the beginning (chronological)")
	downloadCmd.Flags().BoolVarP(&downloadTranscribe, "transcribe", "t", false, "Transcribe voice messages to text (Telegram Premium)")
	downloadCmd.Flags().BoolVarP(&downloadSync, "sync", "s", false, "Incremental sync: only download new messages")
	rootCmd.AddCommand(downloadCmd)
}
