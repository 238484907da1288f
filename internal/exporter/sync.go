package exporter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/stupiduntilnot/telegram-getter/internal/downloader"
)

// LoadExisting reads a previous messages.json from the chat output
// directory. It returns the saved messages and the highest message ID seen,
// or (nil, 0) when no export exists yet.
func LoadExisting(dir string) ([]downloader.Message, int, error) {
	data, err := os.ReadFile(filepath.Join(dir, jsonFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read existing export: %w", err)
	}

	var doc jsonExport
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, 0, fmt.Errorf("failed to parse existing export: %w", err)
	}

	maxID := 0
	for _, m := range doc.Messages {
		if m.ID > maxID {
			maxID = m.ID
		}
	}
	return doc.Messages, maxID, nil
}

// Merge unions previously saved messages with newly fetched ones, dropping
// fetched messages whose ID was already saved, and returns the result in
// chronological order.
func Merge(existing, fetched []downloader.Message) []downloader.Message {
	seen := make(map[int]struct{}, len(existing))
	merged := make([]downloader.Message, 0, len(existing)+len(fetched))

	for _, m := range existing {
		seen[m.ID] = struct{}{}
		merged = append(merged, m)
	}
	for _, m := range fetched {
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		merged = append(merged, m)
	}

	sortChronological(merged)
	return merged
}
