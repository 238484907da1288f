package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// DefaultSessionFile is where the Telegram session blob is persisted so
	// later runs do not re-authenticate.
	DefaultSessionFile = "telegram_getter.session"

	// DefaultPeerDB is the SQLite file caching peer access hashes.
	DefaultPeerDB = "telegram_getter.peers.db"

	defaultBatchSize = 100
	defaultDelayMS   = 500
)

// Config holds all runtime configuration, read from environment variables
// and an optional .env file in the working directory.
type Config struct {
	APIID   int
	APIHash string
	Phone   string

	SessionFile string
	PeerDB      string

	// After every BatchSize downloaded messages the downloader sleeps for
	// Delay to stay under Telegram rate limits.
	BatchSize int
	Delay     time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present; real environment variables win.
func Load() (Config, error) {
	// A missing .env file is fine; it is optional.
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("BATCH_SIZE", defaultBatchSize)
	v.SetDefault("DELAY_MS", defaultDelayMS)
	v.SetDefault("SESSION_FILE", DefaultSessionFile)
	v.SetDefault("PEER_DB", DefaultPeerDB)
	v.AutomaticEnv()

	cfg := Config{
		APIID:       v.GetInt("API_ID"),
		APIHash:     v.GetString("API_HASH"),
		Phone:       v.GetString("PHONE"),
		SessionFile: v.GetString("SESSION_FILE"),
		PeerDB:      v.GetString("PEER_DB"),
		BatchSize:   v.GetInt("BATCH_SIZE"),
		Delay:       time.Duration(v.GetInt("DELAY_MS")) * time.Millisecond,
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var missing []string
	if c.APIID == 0 {
		missing = append(missing, "API_ID")
	}
	if c.APIHash == "" {
		missing = append(missing, "API_HASH")
	}
	if len(missing) > 0 {
		return &MissingCredentialsError{Variables: missing}
	}

	if c.BatchSize <= 0 {
		return fmt.Errorf("BATCH_SIZE must be positive, got %d", c.BatchSize)
	}
	if c.Delay < 0 {
		return fmt.Errorf("DELAY_MS must not be negative")
	}
	return nil
}

// MissingCredentialsError reports which credential variables are unset.
type MissingCredentialsError struct {
	Variables []string
}

func (e *MissingCredentialsError) Error() string {
	return fmt.Sprintf(
		"missing required credentials: %s. "+
			"Please set them in your .env file or environment variables. "+
			"You can get these from https://my.telegram.org/apps",
		strings.Join(e.Variables, " and "),
	)
}
