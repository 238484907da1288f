// Package exporter writes message archives: markdown, JSON and a metadata
// summary, plus the incremental sync merge over a prior JSON export.
package exporter

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/stupiduntilnot/telegram-getter/internal/chats"
	"github.com/stupiduntilnot/telegram-getter/internal/downloader"
)

const (
	markdownFile = "messages.md"
	jsonFile     = "messages.json"
	metadataFile = "metadata.json"
)

// FormatMessage renders a single message as a markdown block:
// a "### HH:MM - Sender" header, an optional reply indicator, the text,
// a media link and the transcription when present.
func FormatMessage(m downloader.Message) string {
	var lines []string

	lines = append(lines, fmt.Sprintf("### %s - %s", m.Date.Format("15:04"), m.SenderName))

	if m.ReplyTo != nil {
		lines = append(lines, fmt.Sprintf("> Replying to message #%d", *m.ReplyTo))
		lines = append(lines, "")
	}

	if m.Text != "" {
		lines = append(lines, m.Text)
	}

	if m.MediaKind != "" && m.MediaPath != "" {
		if link := mediaLink(m.MediaKind, m.MediaPath); link != "" {
			lines = append(lines, link)
		}
	}

	if m.Transcription != "" {
		lines = append(lines, fmt.Sprintf("*Transcription:* %s", m.Transcription))
	}

	return strings.Join(lines, "\n")
}

func mediaLink(kind, mediaPath string) string {
	switch kind {
	case downloader.MediaPhoto:
		return fmt.Sprintf("![image](%s)", mediaPath)
	case downloader.MediaAudio:
		return fmt.Sprintf("[Voice message](%s)", mediaPath)
	case downloader.MediaVideo:
		return fmt.Sprintf("[Video](%s)", mediaPath)
	case downloader.MediaDocument:
		return fmt.Sprintf("[Document: %s](%s)", path.Base(mediaPath), mediaPath)
	}
	return ""
}

// WriteMarkdown writes messages.md: a summary header, then messages grouped
// by date with the newest date first and messages within a date oldest
// first.
func WriteMarkdown(messages []downloader.Message, chatName, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	outPath := filepath.Join(dir, markdownFile)

	mediaCount := 0
	for _, m := range messages {
		if m.MediaKind != "" && m.MediaPath != "" {
			mediaCount++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Chat: %s\n", chatName)
	fmt.Fprintf(&b, "Downloaded: %s\n", time.Now().UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Total messages: %d\n", len(messages))
	fmt.Fprintf(&b, "Media files: %d\n", mediaCount)
	b.WriteString("\n---\n\n")

	byDate := make(map[string][]downloader.Message)
	for _, m := range messages {
		key := m.Date.Format("2006-01-02")
		byDate[key] = append(byDate[key], m)
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	for i, date := range dates {
		fmt.Fprintf(&b, "## %s\n\n", date)

		day := byDate[date]
		sort.SliceStable(day, func(a, z int) bool { return day[a].Date.Before(day[z].Date) })

		for _, m := range day {
			b.WriteString(FormatMessage(m))
			b.WriteString("\n\n")
		}

		if i < len(dates)-1 {
			b.WriteString("---\n\n")
		}
	}

	if err := os.WriteFile(outPath, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	return outPath, nil
}

// jsonExport is the messages.json document.
type jsonExport struct {
	ExportedAt   string               `json:"exported_at"`
	MessageCount int                  `json:"message_count"`
	Messages     []downloader.Message `json:"messages"`
}

// WriteJSON writes messages.json with messages in chronological order.
func WriteJSON(messages []downloader.Message, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	outPath := filepath.Join(dir, jsonFile)

	sorted := make([]downloader.Message, len(messages))
	copy(sorted, messages)
	sortChronological(sorted)

	doc := jsonExport{
		ExportedAt:   time.Now().UTC().Format(time.RFC3339),
		MessageCount: len(sorted),
		Messages:     sorted,
	}
	if doc.Messages == nil {
		doc.Messages = []downloader.Message{}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal messages: %w", err)
	}
	if err := os.WriteFile(outPath, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	return outPath, nil
}

// Metadata is the metadata.json document with chat statistics.
type Metadata struct {
	ChatName      string         `json:"chat_name"`
	ChatID        int64          `json:"chat_id"`
	ChatType      string         `json:"chat_type"`
	DownloadedAt  string         `json:"downloaded_at"`
	TotalMessages int            `json:"total_messages"`
	MediaFiles    map[string]int `json:"media_files"`
	DateRange     DateRange      `json:"date_range"`
}

type DateRange struct {
	From *string `json:"from"`
	To   *string `json:"to"`
}

// BuildMetadata computes the statistics document for a set of messages.
func BuildMetadata(messages []downloader.Message, chat chats.Chat) Metadata {
	counts := map[string]int{
		"images":    0,
		"audio":     0,
		"video":     0,
		"documents": 0,
	}
	for _, m := range messages {
		if m.MediaKind == "" || m.MediaPath == "" {
			continue
		}
		switch m.MediaKind {
		case downloader.MediaPhoto:
			counts["images"]++
		case downloader.MediaAudio:
			counts["audio"]++
		case downloader.MediaVideo:
			counts["video"]++
		case downloader.MediaDocument:
			counts["documents"]++
		}
	}

	md := Metadata{
		ChatName:      chat.Name,
		ChatID:        chat.ID,
		ChatType:      chat.Type,
		DownloadedAt:  time.Now().UTC().Format(time.RFC3339),
		TotalMessages: len(messages),
		MediaFiles:    counts,
	}

	if len(messages) > 0 {
		min, max := messages[0].Date, messages[0].Date
		for _, m := range messages[1:] {
			if m.Date.Before(min) {
				min = m.Date
			}
			if m.Date.After(max) {
				max = m.Date
			}
		}
		from := min.Format("2006-01-02")
		to := max.Format("2006-01-02")
		md.DateRange = DateRange{From: &from, To: &to}
	}

	return md
}

// WriteMetadata writes metadata.json.
func WriteMetadata(messages []downloader.Message, chat chats.Chat, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	outPath := filepath.Join(dir, metadataFile)

	data, err := json.MarshalIndent(BuildMetadata(messages, chat), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := os.WriteFile(outPath, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	return outPath, nil
}

func sortChronological(messages []downloader.Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		if messages[i].Date.Equal(messages[j].Date) {
			return messages[i].ID < messages[j].ID
		}
		return messages[i].Date.Before(messages[j].Date)
	})
}
