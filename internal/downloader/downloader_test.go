package downloader

import (
	"context"
	"testing"
	"time"

	"github.com/gotd/td/bin"
	"github.com/gotd/td/tg"
	"go.uber.org/zap"
)

// historyInvoker answers GetHistory requests with a fixed complete result,
// newest message first, the way the server returns history.
type historyInvoker struct {
	messages []tg.MessageClass
	calls    int
}

func (f *historyInvoker) Invoke(_ context.Context, input bin.Encoder, output bin.Decoder) error {
	f.calls++
	if _, ok := input.(*tg.MessagesGetHistoryRequest); !ok {
		panic("unexpected request type")
	}
	output.(*tg.MessagesMessagesBox).Messages = &tg.MessagesMessages{
		Messages: f.messages,
	}
	return nil
}

func historyDownloader(msgs ...tg.MessageClass) *Downloader {
	api := tg.NewClient(&historyInvoker{messages: msgs})
	return New(api, &tg.User{ID: 1}, 100, 0, zap.NewNop())
}

func histMsg(id int, date time.Time) *tg.Message {
	return &tg.Message{ID: id, Date: int(date.Unix()), Message: "m"}
}

var testPeer = &tg.InputPeerUser{UserID: 2, AccessHash: 3}

func day(n int) time.Time {
	return time.Date(2025, 1, n, 12, 0, 0, 0, time.UTC)
}

func ids(items []Item) []int {
	var out []int
	for _, it := range items {
		out = append(out, it.Message.ID)
	}
	return out
}

func TestHistory_ReturnsNewestFirst(t *testing.T) {
	d := historyDownloader(
		histMsg(3, day(3)),
		histMsg(2, day(2)),
		histMsg(1, day(1)),
	)

	var counts []int
	items, err := d.History(context.Background(), testPeer, Options{}, func(n int) {
		counts = append(counts, n)
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	got := ids(items)
	for i, want := range []int{3, 2, 1} {
		if got[i] != want {
			t.Fatalf("unexpected order: %v", got)
		}
	}
	if len(counts) != 3 || counts[2] != 3 {
		t.Fatalf("unexpected progress counts: %v", counts)
	}
}

func TestHistory_MinIDStopsAtBound(t *testing.T) {
	d := historyDownloader(
		histMsg(5, day(5)),
		histMsg(4, day(4)),
		histMsg(3, day(3)),
		histMsg(2, day(2)),
		histMsg(1, day(1)),
	)

	items, err := d.History(context.Background(), testPeer, Options{MinID: 3}, nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	got := ids(items)
	if len(got) != 2 || got[0] != 5 || got[1] != 4 {
		t.Fatalf("expected only messages above the bound, got %v", got)
	}
}

func TestHistory_FromDateStopsEarly(t *testing.T) {
	d := historyDownloader(
		histMsg(3, day(3)),
		histMsg(2, day(2)),
		histMsg(1, day(1)),
	)

	items, err := d.History(context.Background(), testPeer, Options{From: day(2)}, nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	got := ids(items)
	if len(got) != 2 || got[0] != 3 || got[1] != 2 {
		t.Fatalf("expected messages on or after the from date, got %v", got)
	}
}

func TestHistory_ToDateSkipsNewer(t *testing.T) {
	d := historyDownloader(
		histMsg(3, day(3)),
		histMsg(2, day(2)),
		histMsg(1, day(1)),
	)

	items, err := d.History(context.Background(), testPeer, Options{To: day(2)}, nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	got := ids(items)
	if len(got) != 2 || got[0] != 2 || got[1] != 1 {
		t.Fatalf("expected messages up to the to date, got %v", got)
	}
}

func TestHistory_Limit(t *testing.T) {
	d := historyDownloader(
		histMsg(3, day(3)),
		histMsg(2, day(2)),
		histMsg(1, day(1)),
	)

	items, err := d.History(context.Background(), testPeer, Options{Limit: 2}, nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
}

func TestHistory_SkipsServiceMessages(t *testing.T) {
	api := tg.NewClient(&historyInvoker{messages: []tg.MessageClass{
		histMsg(3, day(3)),
		&tg.MessageService{ID: 2, Date: int(day(2).Unix())},
		&tg.MessageEmpty{ID: 1},
	}})
	d := New(api, &tg.User{ID: 1}, 100, 0, zap.NewNop())

	items, err := d.History(context.Background(), testPeer, Options{}, nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(items) != 1 || items[0].Message.ID != 3 {
		t.Fatalf("expected only the plain message, got %v", ids(items))
	}
}

func TestHistory_PausesEveryBatch(t *testing.T) {
	api := tg.NewClient(&historyInvoker{messages: []tg.MessageClass{
		histMsg(5, day(5)),
		histMsg(4, day(4)),
		histMsg(3, day(3)),
		histMsg(2, day(2)),
		histMsg(1, day(1)),
	}})
	d := New(api, &tg.User{ID: 1}, 2, time.Millisecond, zap.NewNop())

	start := time.Now()
	items, err := d.History(context.Background(), testPeer, Options{}, nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(items) != 5 {
		t.Fatalf("expected 5 items, got %d", len(items))
	}
	// Two full batches of 2, so at least two delays.
	if elapsed := time.Since(start); elapsed < 2*time.Millisecond {
		t.Fatalf("expected rate-limit pauses, finished in %v", elapsed)
	}
}
