package downloader

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/gotd/td/tg"
)

func textMessage(id int, unix int64, text string) *tg.Message {
	return &tg.Message{ID: id, Date: int(unix), Message: text}
}

func TestParseMessage_BasicFields(t *testing.T) {
	m := textMessage(42, 1736949000, "hello")
	m.SetFromID(&tg.PeerUser{UserID: 1001})

	got := parseMessage(m, entities{
		users: map[int64]*tg.User{1001: {ID: 1001, FirstName: "John", LastName: "Doe"}},
	})

	want := Message{
		ID:         42,
		Date:       time.Unix(1736949000, 0).UTC(),
		SenderID:   1001,
		SenderName: "John Doe",
		Text:       "hello",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("message mismatch (-want +got):\n%s", diff)
	}
}

func TestParseMessage_UnknownSender(t *testing.T) {
	m := textMessage(1, 1736949000, "hi")
	m.SetFromID(&tg.PeerUser{UserID: 5})

	got := parseMessage(m, entities{})
	if got.SenderID != 5 || got.SenderName != "Unknown" {
		t.Fatalf("unexpected sender: %d %q", got.SenderID, got.SenderName)
	}
}

func TestParseMessage_OutgoingUsesSelf(t *testing.T) {
	m := textMessage(1, 1736949000, "mine")
	m.Out = true

	got := parseMessage(m, entities{self: &tg.User{ID: 7, FirstName: "Me"}})
	if got.SenderID != 7 || got.SenderName != "Me" {
		t.Fatalf("unexpected sender: %d %q", got.SenderID, got.SenderName)
	}
}

func TestParseMessage_ChannelPost(t *testing.T) {
	m := textMessage(9, 1736949000, "post")
	m.PeerID = &tg.PeerChannel{ChannelID: 300}

	got := parseMessage(m, entities{
		channels: map[int64]*tg.Channel{300: {ID: 300, Title: "News"}},
	})
	if got.SenderID != 300 || got.SenderName != "News" {
		t.Fatalf("unexpected sender: %d %q", got.SenderID, got.SenderName)
	}
}

func TestParseMessage_ReplyTo(t *testing.T) {
	m := textMessage(2, 1736949000, "re")
	header := &tg.MessageReplyHeader{}
	header.SetReplyToMsgID(100)
	m.SetReplyTo(header)

	got := parseMessage(m, entities{})
	if got.ReplyTo == nil || *got.ReplyTo != 100 {
		t.Fatalf("unexpected reply_to: %v", got.ReplyTo)
	}
}

func TestParseMessage_NoReply(t *testing.T) {
	got := parseMessage(textMessage(3, 1736949000, "x"), entities{})
	if got.ReplyTo != nil {
		t.Fatalf("expected nil reply_to, got %v", *got.ReplyTo)
	}
}

func TestMediaKindOf(t *testing.T) {
	document := func(mime string) *tg.MessageMediaDocument {
		media := &tg.MessageMediaDocument{}
		media.SetDocument(&tg.Document{MimeType: mime})
		return media
	}

	cases := []struct {
		name  string
		media tg.MessageMediaClass
		want  string
	}{
		{"photo", &tg.MessageMediaPhoto{}, MediaPhoto},
		{"voice note", document("audio/ogg"), MediaAudio},
		{"mp3", document("audio/mpeg"), MediaAudio},
		{"video", document("video/mp4"), MediaVideo},
		{"pdf", document("application/pdf"), MediaDocument},
		{"webpage", &tg.MessageMediaWebPage{}, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := mediaKindOf(c.media); got != c.want {
				t.Fatalf("mediaKindOf = %q, want %q", got, c.want)
			}
		})
	}
}

func TestReverse(t *testing.T) {
	items := []Item{
		{Message: Message{ID: 3}},
		{Message: Message{ID: 2}},
		{Message: Message{ID: 1}},
	}
	Reverse(items)
	for i, want := range []int{1, 2, 3} {
		if items[i].Message.ID != want {
			t.Fatalf("unexpected order at %d: %d", i, items[i].Message.ID)
		}
	}
}
