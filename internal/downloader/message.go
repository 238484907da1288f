package downloader

import (
	"strings"
	"time"

	"github.com/gotd/td/tg"
)

// Media kind constants, as recorded in message records and exports.
const (
	MediaPhoto    = "photo"
	MediaVideo    = "video"
	MediaAudio    = "audio"
	MediaDocument = "document"
)

// Message is the archive record for a single chat message. It is produced
// once per run by translating the client's message object, optionally
// enriched with a media path and a transcription, then serialized.
type Message struct {
	ID            int       `json:"id"`
	Date          time.Time `json:"date"`
	SenderID      int64     `json:"sender_id"`
	SenderName    string    `json:"sender_name"`
	Text          string    `json:"text"`
	ReplyTo       *int      `json:"reply_to,omitempty"`
	MediaKind     string    `json:"media_type,omitempty"`
	MediaPath     string    `json:"media_path,omitempty"`
	Transcription string    `json:"transcription,omitempty"`
}

// entities carries the peer objects the history iterator resolved for a
// batch, plus the authenticated user for outgoing messages.
type entities struct {
	users    map[int64]*tg.User
	channels map[int64]*tg.Channel
	self     *tg.User
}

// parseMessage translates a raw Telegram message into a Message record.
func parseMessage(m *tg.Message, e entities) Message {
	msg := Message{
		ID:   m.ID,
		Date: time.Unix(int64(m.Date), 0).UTC(),
		Text: m.Message,
	}

	msg.SenderID, msg.SenderName = senderOf(m, e)

	if header, ok := m.GetReplyTo(); ok {
		if reply, ok := header.(*tg.MessageReplyHeader); ok {
			if id, ok := reply.GetReplyToMsgID(); ok {
				msg.ReplyTo = &id
			}
		}
	}

	if media, ok := m.GetMedia(); ok {
		msg.MediaKind = mediaKindOf(media)
	}

	return msg
}

func senderOf(m *tg.Message, e entities) (int64, string) {
	if from, ok := m.GetFromID(); ok {
		switch p := from.(type) {
		case *tg.PeerUser:
			if u, ok := e.users[p.UserID]; ok {
				return u.ID, displayName(u)
			}
			return p.UserID, "Unknown"
		case *tg.PeerChannel:
			if ch, ok := e.channels[p.ChannelID]; ok {
				return ch.ID, ch.Title
			}
			return p.ChannelID, "Unknown"
		}
		return 0, "Unknown"
	}

	// No explicit sender: an outgoing message is from the authenticated
	// user; a channel post is attributed to the channel itself.
	if m.Out && e.self != nil {
		return e.self.ID, displayName(e.self)
	}
	if p, ok := m.PeerID.(*tg.PeerChannel); ok {
		if ch, ok := e.channels[p.ChannelID]; ok {
			return ch.ID, ch.Title
		}
	}
	if p, ok := m.PeerID.(*tg.PeerUser); ok {
		if u, ok := e.users[p.UserID]; ok {
			return u.ID, displayName(u)
		}
	}
	return 0, "Unknown"
}

func displayName(u *tg.User) string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name != "" {
		return name
	}
	if username, ok := u.GetUsername(); ok && username != "" {
		return username
	}
	return "Unknown"
}

// mediaKindOf maps a media attachment to photo/video/audio/document.
func mediaKindOf(media tg.MessageMediaClass) string {
	switch m := media.(type) {
	case *tg.MessageMediaPhoto:
		return MediaPhoto
	case *tg.MessageMediaDocument:
		docClass, ok := m.GetDocument()
		if !ok {
			return MediaDocument
		}
		doc, ok := docClass.AsNotEmpty()
		if !ok {
			return MediaDocument
		}
		switch {
		case strings.HasPrefix(doc.MimeType, "video/"):
			return MediaVideo
		case strings.HasPrefix(doc.MimeType, "audio/"):
			return MediaAudio
		}
		return MediaDocument
	}
	return ""
}
