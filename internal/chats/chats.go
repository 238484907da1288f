// Package chats enumerates Telegram dialogs and classifies them.
package chats

import (
	"context"
	"fmt"
	"strings"

	"github.com/gotd/td/telegram/query"
	"github.com/gotd/td/tg"
	"go.uber.org/zap"

	"github.com/stupiduntilnot/telegram-getter/internal/peers"
)

// Chat type constants.
const (
	TypePrivate = "private"
	TypeGroup   = "group"
	TypeChannel = "channel"
	TypeUnknown = "unknown"
)

// Chat is a conversation entity as shown by `list` and targeted by
// `download`.
type Chat struct {
	ID     int64
	Name   string
	Type   string
	Unread int

	// InputPeer addresses the chat in API calls. Not rendered to users.
	InputPeer tg.InputPeerClass
}

// TypeOf classifies a Telegram entity. Channels with the broadcast flag are
// channels; without it they are supergroups and count as groups.
func TypeOf(entity any) string {
	switch e := entity.(type) {
	case *tg.User:
		return TypePrivate
	case *tg.Chat:
		return TypeGroup
	case *tg.Channel:
		if e.Broadcast {
			return TypeChannel
		}
		return TypeGroup
	}
	return TypeUnknown
}

// List returns all dialogs, optionally filtered by chat type. Every peer
// seen is recorded in the cache (when one is provided) so later runs can
// address it by ID alone.
func List(ctx context.Context, api *tg.Client, filterType string, cache *peers.DB, log *zap.Logger) ([]Chat, error) {
	iter := query.GetDialogs(api).BatchSize(100).Iter()

	var result []Chat
	for iter.Next(ctx) {
		elem := iter.Value()
		d, ok := elem.Dialog.(*tg.Dialog)
		if !ok {
			continue
		}

		chat, ok := mapDialog(d, elem.Entities.Users(), elem.Entities.Chats(), elem.Entities.Channels())
		if !ok {
			continue
		}

		if cache != nil {
			if err := cache.Put(ctx, peers.Peer{
				ID:         chat.ID,
				AccessHash: accessHashOf(chat.InputPeer),
				Kind:       chat.Type,
				Name:       chat.Name,
			}); err != nil {
				// Cache failures must not break listing.
				log.Warn("peer cache write failed",
					zap.Int64("peer_id", chat.ID),
					zap.Error(err))
			}
		}

		if filterType != "" && chat.Type != filterType {
			continue
		}
		result = append(result, chat)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("listing dialogs: %w", err)
	}

	return result, nil
}

// FindByName resolves a chat by case-insensitive name match against all
// dialogs. Returns false when no dialog matches.
func FindByName(ctx context.Context, api *tg.Client, name string, cache *peers.DB, log *zap.Logger) (Chat, bool, error) {
	all, err := List(ctx, api, "", cache, log)
	if err != nil {
		return Chat{}, false, err
	}
	for _, c := range all {
		if strings.EqualFold(c.Name, name) {
			return c, true, nil
		}
	}
	return Chat{}, false, nil
}

// FindByID resolves a chat by ID, preferring the peer cache and falling back
// to a dialog scan.
func FindByID(ctx context.Context, api *tg.Client, id int64, cache *peers.DB, log *zap.Logger) (Chat, bool, error) {
	if cache != nil {
		if p, err := cache.Get(ctx, id); err == nil {
			return Chat{
				ID:        p.ID,
				Name:      p.Name,
				Type:      p.Kind,
				InputPeer: inputPeerFor(p),
			}, true, nil
		}
	}

	all, err := List(ctx, api, "", cache, log)
	if err != nil {
		return Chat{}, false, err
	}
	for _, c := range all {
		if c.ID == id {
			return c, true, nil
		}
	}
	return Chat{}, false, nil
}

func mapDialog(d *tg.Dialog, users map[int64]*tg.User, groups map[int64]*tg.Chat, channels map[int64]*tg.Channel) (Chat, bool) {
	switch p := d.Peer.(type) {
	case *tg.PeerUser:
		u, ok := users[p.UserID]
		if !ok {
			return Chat{}, false
		}
		return Chat{
			ID:     u.ID,
			Name:   userName(u),
			Type:   TypeOf(u),
			Unread: d.UnreadCount,
			InputPeer: &tg.InputPeerUser{
				UserID:     u.ID,
				AccessHash: u.AccessHash,
			},
		}, true
	case *tg.PeerChat:
		g, ok := groups[p.ChatID]
		if !ok {
			return Chat{}, false
		}
		return Chat{
			ID:        g.ID,
			Name:      g.Title,
			Type:      TypeOf(g),
			Unread:    d.UnreadCount,
			InputPeer: &tg.InputPeerChat{ChatID: g.ID},
		}, true
	case *tg.PeerChannel:
		ch, ok := channels[p.ChannelID]
		if !ok {
			return Chat{}, false
		}
		return Chat{
			ID:     ch.ID,
			Name:   ch.Title,
			Type:   TypeOf(ch),
			Unread: d.UnreadCount,
			InputPeer: &tg.InputPeerChannel{
				ChannelID:  ch.ID,
				AccessHash: ch.AccessHash,
			},
		}, true
	}
	return Chat{}, false
}

func userName(u *tg.User) string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name != "" {
		return name
	}
	if username, ok := u.GetUsername(); ok && username != "" {
		return username
	}
	return "Unknown"
}

func accessHashOf(p tg.InputPeerClass) int64 {
	switch ip := p.(type) {
	case *tg.InputPeerUser:
		return ip.AccessHash
	case *tg.InputPeerChannel:
		return ip.AccessHash
	}
	return 0
}

func inputPeerFor(p peers.Peer) tg.InputPeerClass {
	switch p.Kind {
	case TypePrivate:
		return &tg.InputPeerUser{UserID: p.ID, AccessHash: p.AccessHash}
	case TypeChannel:
		return &tg.InputPeerChannel{ChannelID: p.ID, AccessHash: p.AccessHash}
	case TypeGroup:
		// Cached supergroups carry an access hash, basic groups do not.
		if p.AccessHash != 0 {
			return &tg.InputPeerChannel{ChannelID: p.ID, AccessHash: p.AccessHash}
		}
		return &tg.InputPeerChat{ChatID: p.ID}
	}
	return &tg.InputPeerChat{ChatID: p.ID}
}
