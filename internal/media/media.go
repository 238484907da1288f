// Package media downloads message attachments into the archive's media
// folder, grouped by category with date-based sequential filenames.
package media

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tddownloader "github.com/gotd/td/telegram/downloader"
	"github.com/gotd/td/tg"
	"go.uber.org/zap"

	"github.com/stupiduntilnot/telegram-getter/internal/util"
)

// Media folder categories.
const (
	CategoryImages    = "images"
	CategoryAudio     = "audio"
	CategoryVideo     = "video"
	CategoryDocuments = "documents"
	CategoryOther     = "other"
)

// Downloader saves message attachments under <outputDir>/media/<category>/.
type Downloader struct {
	api       *tg.Client
	outputDir string
	dl        *tddownloader.Downloader
	log       *zap.Logger
	resume    bool

	// Sequence counters keyed by (date, category) so filenames within a
	// day number up from 001.
	seq map[seqKey]int
}

type seqKey struct {
	date     string
	category string
}

// New builds a Downloader. With resume set, sequence counters continue
// above the highest number already archived for a date, so an incremental
// run never reuses a filename from an earlier run.
func New(api *tg.Client, outputDir string, resume bool, log *zap.Logger) *Downloader {
	return &Downloader{
		api:       api,
		outputDir: outputDir,
		dl:        tddownloader.NewDownloader(),
		log:       log,
		resume:    resume,
		seq:       make(map[seqKey]int),
	}
}

// Download saves the attachment of the given message, if it has one with a
// retrievable file. Returns the path relative to the chat output directory
// ("media/<category>/<file>"), or "" when there is nothing to download. An
// already existing file is not re-downloaded but its path is still returned.
func (d *Downloader) Download(ctx context.Context, m *tg.Message) (string, error) {
	media, ok := m.GetMedia()
	if !ok {
		return "", nil
	}

	loc := locationOf(media)
	if loc == nil {
		return "", nil
	}

	category := CategoryOf(media)
	dir := filepath.Join(d.outputDir, "media", category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory %s: %w", dir, err)
	}

	date := time.Unix(int64(m.Date), 0).UTC()
	seq := d.nextSeq(dir, date.Format("2006-01-02"), category)

	name := Filename(date, seq, ExtensionOf(media))
	fullPath := filepath.Join(dir, name)
	relPath := path.Join("media", category, name)

	if _, err := os.Stat(fullPath); err == nil {
		return relPath, nil
	}

	if _, err := d.dl.Download(d.api, loc).ToPath(ctx, fullPath); err != nil {
		return "", fmt.Errorf("downloading media for message %d: %w", m.ID, err)
	}

	size := "unknown"
	if info, err := os.Stat(fullPath); err == nil {
		size = util.FormatSize(info.Size())
	}
	d.log.Debug("media downloaded",
		zap.Int("message_id", m.ID),
		zap.String("path", relPath),
		zap.String("size", size))
	return relPath, nil
}

// nextSeq returns the next sequence number for a (date, category) pair. In
// resume mode a fresh counter starts above the highest number already on
// disk for that date.
func (d *Downloader) nextSeq(dir, dateStr, category string) int {
	key := seqKey{date: dateStr, category: category}
	if _, ok := d.seq[key]; !ok && d.resume {
		d.seq[key] = highestArchivedSeq(dir, dateStr)
	}
	d.seq[key]++
	return d.seq[key]
}

// highestArchivedSeq scans a category directory for YYYY-MM-DD_NNN.* names
// with the given date and returns the highest NNN, or 0.
func highestArchivedSeq(dir, datePrefix string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	highest := 0
	for _, e := range entries {
		rest, ok := strings.CutPrefix(e.Name(), datePrefix+"_")
		if !ok || len(rest) < 3 {
			continue
		}
		if n, err := strconv.Atoi(rest[:3]); err == nil && n > highest {
			highest = n
		}
	}
	return highest
}

// CategoryOf maps a media object to its archive folder.
func CategoryOf(media tg.MessageMediaClass) string {
	switch m := media.(type) {
	case *tg.MessageMediaPhoto:
		return CategoryImages
	case *tg.MessageMediaDocument:
		doc, ok := documentOf(m)
		if !ok {
			return CategoryOther
		}
		switch {
		case strings.HasPrefix(doc.MimeType, "audio/"):
			return CategoryAudio
		case strings.HasPrefix(doc.MimeType, "video/"):
			return CategoryVideo
		}
		return CategoryDocuments
	}
	return CategoryOther
}

// ExtensionOf derives a file extension (without dot) for the media, from
// the document filename when present, then from well-known MIME types.
func ExtensionOf(media tg.MessageMediaClass) string {
	switch m := media.(type) {
	case *tg.MessageMediaPhoto:
		return "jpg"
	case *tg.MessageMediaDocument:
		doc, ok := documentOf(m)
		if !ok {
			return "bin"
		}
		for _, attr := range doc.Attributes {
			if fn, ok := attr.(*tg.DocumentAttributeFilename); ok {
				if ext := strings.TrimPrefix(filepath.Ext(fn.FileName), "."); ext != "" {
					return ext
				}
			}
		}
		return extensionFromMIME(doc.MimeType)
	}
	return "bin"
}

func extensionFromMIME(mimeType string) string {
	switch mimeType {
	case "audio/ogg":
		return "ogg"
	case "audio/mpeg":
		return "mp3"
	case "video/mp4":
		return "mp4"
	case "application/pdf":
		return "pdf"
	}
	if rest, ok := strings.CutPrefix(mimeType, "audio/"); ok && rest != "" {
		return rest
	}
	if rest, ok := strings.CutPrefix(mimeType, "video/"); ok && rest != "" {
		return rest
	}
	return "bin"
}

// Filename builds the archive filename: YYYY-MM-DD_NNN.ext.
func Filename(date time.Time, sequence int, extension string) string {
	return fmt.Sprintf("%s_%03d.%s", date.Format("2006-01-02"), sequence, extension)
}

func documentOf(m *tg.MessageMediaDocument) (*tg.Document, bool) {
	docClass, ok := m.GetDocument()
	if !ok {
		return nil, false
	}
	return docClass.AsNotEmpty()
}

// locationOf returns the file location for downloadable media, or nil for
// media without a file (polls, geo, web previews).
func locationOf(media tg.MessageMediaClass) tg.InputFileLocationClass {
	switch m := media.(type) {
	case *tg.MessageMediaPhoto:
		photoClass, ok := m.GetPhoto()
		if !ok {
			return nil
		}
		photo, ok := photoClass.AsNotEmpty()
		if !ok {
			return nil
		}
		thumb := largestSizeType(photo.Sizes)
		if thumb == "" {
			return nil
		}
		return &tg.InputPhotoFileLocation{
			ID:            photo.ID,
			AccessHash:    photo.AccessHash,
			FileReference: photo.FileReference,
			ThumbSize:     thumb,
		}
	case *tg.MessageMediaDocument:
		doc, ok := documentOf(m)
		if !ok {
			return nil
		}
		return doc.AsInputDocumentFileLocation()
	}
	return nil
}

// largestSizeType picks the photo size type with the biggest byte size.
func largestSizeType(sizes []tg.PhotoSizeClass) string {
	best := ""
	bestBytes := -1
	for _, s := range sizes {
		switch size := s.(type) {
		case *tg.PhotoSize:
			if size.Size > bestBytes {
				best = size.Type
				bestBytes = size.Size
			}
		case *tg.PhotoSizeProgressive:
			max := 0
			for _, b := range size.Sizes {
				if b > max {
					max = b
				}
			}
			if max > bestBytes {
				best = size.Type
				bestBytes = max
			}
		}
	}
	return best
}
