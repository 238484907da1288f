package cli

import (
	"testing"
	"time"

	"github.com/stupiduntilnot/telegram-getter/internal/chats"
)

func TestParseDateRange(t *testing.T) {
	from, to, err := parseDateRange("2024-01-01", "2024-12-31")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC); !from.Equal(want) {
		t.Fatalf("unexpected from: %v", from)
	}
	if want := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC); !to.Equal(want) {
		t.Fatalf("unexpected to: %v", to)
	}
}

func TestParseDateRange_Empty(t *testing.T) {
	from, to, err := parseDateRange("", "")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !from.IsZero() || !to.IsZero() {
		t.Fatalf("expected zero times, got %v, %v", from, to)
	}
}

func TestParseDateRange_Invalid(t *testing.T) {
	for _, bad := range []string{"01.01.2024", "2024-13-01", "yesterday"} {
		if _, _, err := parseDateRange(bad, ""); err == nil {
			t.Errorf("expected error for from=%q", bad)
		}
		if _, _, err := parseDateRange("", bad); err == nil {
			t.Errorf("expected error for to=%q", bad)
		}
	}
}

func TestListFilter(t *testing.T) {
	reset := func() { listGroups, listPrivate, listChannels = false, false, false }

	reset()
	if filter, err := listFilter(); err != nil || filter != "" {
		t.Fatalf("no flags: got %q, %v", filter, err)
	}

	reset()
	listGroups = true
	if filter, err := listFilter(); err != nil || filter != chats.TypeGroup {
		t.Fatalf("groups flag: got %q, %v", filter, err)
	}

	reset()
	listPrivate = true
	listChannels = true
	if _, err := listFilter(); err == nil {
		t.Fatal("expected error for conflicting filters")
	}
	reset()
}
