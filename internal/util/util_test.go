package util

import (
	"strings"
	"testing"
)

func TestSanitizeFilename_RemovesInvalidCharacters(t *testing.T) {
	got := SanitizeFilename(`My<Chat>: "the/best\one"|?*`)
	for _, c := range `<>:"/\|?*` {
		if strings.ContainsRune(got, c) {
			t.Fatalf("sanitized name still contains %q: %s", c, got)
		}
	}
}

func TestSanitizeFilename_ReplacesWithUnderscore(t *testing.T) {
	if got := SanitizeFilename("a/b"); got != "a_b" {
		t.Fatalf("unexpected result: %s", got)
	}
}

func TestSanitizeFilename_TrimsDotsAndSpaces(t *testing.T) {
	if got := SanitizeFilename("  .chat name.  "); got != "chat name" {
		t.Fatalf("unexpected result: %q", got)
	}
}

func TestSanitizeFilename_ControlCharacters(t *testing.T) {
	if got := SanitizeFilename("chat\x00\x1fname"); got != "chat__name" {
		t.Fatalf("unexpected result: %q", got)
	}
}

func TestSanitizeFilename_EmptyInput(t *testing.T) {
	if got := SanitizeFilename(""); got != "unnamed" {
		t.Fatalf("unexpected result: %q", got)
	}
	if got := SanitizeFilename("..."); got != "unnamed" {
		t.Fatalf("unexpected result for dots-only input: %q", got)
	}
}

func TestFormatSize(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
		{5 * 1024 * 1024 * 1024, "5.0 GB"},
		{3 * 1024 * 1024 * 1024 * 1024, "3.0 TB"},
	}
	for _, c := range cases {
		if got := FormatSize(c.in); got != c.want {
			t.Errorf("FormatSize(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}
