// Package downloader fetches message history through the client's paginated
// iterator, translating raw messages into archive records and pacing
// requests to stay under rate limits.
package downloader

import (
	"context"
	"fmt"
	"time"

	"github.com/gotd/td/telegram/query"
	"github.com/gotd/td/tg"
	"go.uber.org/zap"
)

// Item pairs an archive record with the raw message it came from. The raw
// message is kept so the media pass can reach attachment locations without
// re-fetching history.
type Item struct {
	Message Message
	Raw     *tg.Message
}

// Options narrow a history download.
type Options struct {
	// From and To bound message dates; zero values mean unbounded.
	From time.Time
	To   time.Time

	// MinID fetches only messages with a larger ID (sync mode).
	MinID int

	// Limit stops after this many messages; 0 means all.
	Limit int
}

// Downloader wraps the client's history iterator.
type Downloader struct {
	api       *tg.Client
	self      *tg.User
	batchSize int
	delay     time.Duration
	log       *zap.Logger
}

func New(api *tg.Client, self *tg.User, batchSize int, delay time.Duration, log *zap.Logger) *Downloader {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Downloader{
		api:       api,
		self:      self,
		batchSize: batchSize,
		delay:     delay,
		log:       log,
	}
}

// History downloads messages from the peer, newest first. Service and empty
// messages are skipped. The progress callback, when set, is invoked with the
// running count. After every batchSize messages the downloader sleeps for
// the configured delay.
func (d *Downloader) History(ctx context.Context, peer tg.InputPeerClass, opts Options, progress func(count int)) ([]Item, error) {
	builder := query.Messages(d.api).GetHistory(peer).BatchSize(d.batchSize)
	if !opts.To.IsZero() {
		builder = builder.OffsetDate(int(opts.To.Unix()))
	}

	iter := builder.Iter()

	var items []Item
	count := 0
	for iter.Next(ctx) {
		elem := iter.Value()
		m, ok := elem.Msg.(*tg.Message)
		if !ok {
			continue
		}

		// IDs decrease as the iterator pages back, so nothing at or below
		// the bound can follow.
		if opts.MinID > 0 && m.ID <= opts.MinID {
			break
		}

		date := time.Unix(int64(m.Date), 0).UTC()
		if !opts.To.IsZero() && date.After(opts.To) {
			continue
		}
		// The iterator walks newest to oldest, so everything after this
		// point is older still.
		if !opts.From.IsZero() && date.Before(opts.From) {
			break
		}

		msg := parseMessage(m, entities{
			users:    elem.Entities.Users(),
			channels: elem.Entities.Channels(),
			self:     d.self,
		})
		items = append(items, Item{Message: msg, Raw: m})
		count++

		if progress != nil {
			progress(count)
		}
		if opts.Limit > 0 && count >= opts.Limit {
			break
		}

		if count%d.batchSize == 0 && d.delay > 0 {
			d.log.Debug("rate limit pause",
				zap.Int("count", count),
				zap.Duration("delay", d.delay))
			select {
			case <-time.After(d.delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("iterating history: %w", err)
	}

	return items, nil
}

// Reverse flips items into chronological order in place. The history
// iterator walks newest to oldest; exports in --all and sync mode want the
// opposite.
func Reverse(items []Item) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
}
