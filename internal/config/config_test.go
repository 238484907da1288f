package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("API_ID", "12345")
	t.Setenv("API_HASH", "abcdef0123456789")
}

func TestLoad_ReadsCredentials(t *testing.T) {
	setupEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.APIID != 12345 {
		t.Fatalf("unexpected api id: %d", cfg.APIID)
	}
	if cfg.APIHash != "abcdef0123456789" {
		t.Fatalf("unexpected api hash: %s", cfg.APIHash)
	}
}

func TestLoad_Defaults(t *testing.T) {
	setupEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.BatchSize != 100 {
		t.Fatalf("unexpected batch size: %d", cfg.BatchSize)
	}
	if cfg.Delay != 500*time.Millisecond {
		t.Fatalf("unexpected delay: %v", cfg.Delay)
	}
	if cfg.SessionFile != DefaultSessionFile {
		t.Fatalf("unexpected session file: %s", cfg.SessionFile)
	}
	if cfg.PeerDB != DefaultPeerDB {
		t.Fatalf("unexpected peer db: %s", cfg.PeerDB)
	}
}

func TestLoad_Overrides(t *testing.T) {
	setupEnv(t)
	t.Setenv("BATCH_SIZE", "50")
	t.Setenv("DELAY_MS", "1000")
	t.Setenv("SESSION_FILE", "/tmp/custom.session")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.BatchSize != 50 {
		t.Fatalf("unexpected batch size: %d", cfg.BatchSize)
	}
	if cfg.Delay != time.Second {
		t.Fatalf("unexpected delay: %v", cfg.Delay)
	}
	if cfg.SessionFile != "/tmp/custom.session" {
		t.Fatalf("unexpected session file: %s", cfg.SessionFile)
	}
}

func TestLoad_MissingCredentials(t *testing.T) {
	t.Setenv("API_ID", "")
	t.Setenv("API_HASH", "")
	_, err := Load()
	if err == nil {
		t.Fatal("expected missing credentials error")
	}
	var missing *MissingCredentialsError
	if !errors.As(err, &missing) {
		t.Fatalf("unexpected error type: %v", err)
	}
	if !strings.Contains(err.Error(), "API_ID and API_HASH") {
		t.Fatalf("error should name both variables: %v", err)
	}
	if !strings.Contains(err.Error(), "my.telegram.org/apps") {
		t.Fatalf("error should point at the credentials page: %v", err)
	}
}

func TestLoad_MissingHashOnly(t *testing.T) {
	t.Setenv("API_ID", "12345")
	t.Setenv("API_HASH", "")
	_, err := Load()
	var missing *MissingCredentialsError
	if !errors.As(err, &missing) {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(missing.Variables) != 1 || missing.Variables[0] != "API_HASH" {
		t.Fatalf("unexpected missing variables: %v", missing.Variables)
	}
}

func TestLoad_InvalidBatchSize(t *testing.T) {
	setupEnv(t)
	t.Setenv("BATCH_SIZE", "-1")
	_, err := Load()
	if err == nil {
		t.Fatal("expected invalid batch size error")
	}
	if !strings.Contains(err.Error(), "BATCH_SIZE") {
		t.Fatalf("unexpected err: %v", err)
	}
}
