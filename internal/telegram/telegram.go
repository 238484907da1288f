// Package telegram wraps the gotd MTProto client: credential wiring, session
// persistence and the interactive authentication flow. Everything protocol
// level is delegated to gotd; this package only classifies failures into the
// categories the CLI reports.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/gotd/contrib/middleware/floodwait"
	"github.com/gotd/td/session"
	tgclient "github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
	"go.uber.org/zap"

	"github.com/stupiduntilnot/telegram-getter/internal/config"
)

// Client builds and runs an authenticated gotd client.
type Client struct {
	cfg config.Config
	log *zap.Logger
}

func New(cfg config.Config, log *zap.Logger) *Client {
	return &Client{cfg: cfg, log: log}
}

// Run connects to Telegram, authenticates if the stored session is absent or
// expired, and invokes f with the connected client. The session file is
// persisted by gotd so subsequent runs reuse it.
func (c *Client) Run(ctx context.Context, f func(ctx context.Context, client *tgclient.Client) error) error {
	client := tgclient.NewClient(c.cfg.APIID, c.cfg.APIHash, tgclient.Options{
		SessionStorage: &session.FileStorage{Path: c.cfg.SessionFile},
		Logger:         c.log.Named("mtproto"),
		Middlewares: []tgclient.Middleware{
			// Retries requests transparently when the server answers
			// FLOOD_WAIT.
			floodwait.NewSimpleWaiter(),
		},
		Device: tgclient.DeviceConfig{
			DeviceModel:   "telegram-getter",
			SystemVersion: "Unknown",
			AppVersion:    "1.0",
		},
	})

	err := client.Run(ctx, func(ctx context.Context) error {
		flow := auth.NewFlow(newTermAuth(c.cfg.Phone), auth.SendCodeOptions{})
		if err := client.Auth().IfNecessary(ctx, flow); err != nil {
			return fmt.Errorf("authentication: %w", err)
		}
		if err := f(ctx, client); err != nil {
			return &callbackError{err: err}
		}
		return nil
	})
	return finishRun(err)
}

// callbackError marks errors from the command callback so they are not
// mistaken for connect/auth failures.
type callbackError struct {
	err error
}

func (e *callbackError) Error() string { return e.err.Error() }
func (e *callbackError) Unwrap() error { return e.err }

// finishRun separates command failures from connect/auth failures. Only the
// latter are classified into the user-facing categories; an unknown chat or
// a failed export is not an authentication problem.
func finishRun(err error) error {
	if err == nil {
		return nil
	}
	var cb *callbackError
	if errors.As(err, &cb) {
		return cb.err
	}
	return Classify(err)
}

// SelfName derives a display name for the authenticated user.
func SelfName(u *tg.User) string {
	if u == nil {
		return "Unknown"
	}
	if username, ok := u.GetUsername(); ok && username != "" {
		return username
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	return "Unknown"
}

// CredentialsError indicates the API credentials were rejected by Telegram.
type CredentialsError struct {
	Err error
}

func (e *CredentialsError) Error() string {
	return fmt.Sprintf("invalid credentials: %v. Please verify your API_ID and API_HASH are correct.", e.Err)
}

func (e *CredentialsError) Unwrap() error { return e.Err }

// NetworkError indicates Telegram could not be reached.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network connection failed: %v. Please check your internet connection and try again.", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// AuthError covers every other authentication failure.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed: %v. Please try again or check your credentials.", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// Classify maps a client error into one of the three user-facing categories.
// Errors that are already classified pass through unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var credErr *CredentialsError
	var netErr *NetworkError
	var authErr *AuthError
	if errors.As(err, &credErr) || errors.As(err, &netErr) || errors.As(err, &authErr) {
		return err
	}

	if tgerr.Is(err, "API_ID_INVALID", "API_ID_PUBLISHED_FLOOD", "PHONE_NUMBER_INVALID") {
		return &CredentialsError{Err: err}
	}

	var nerr net.Error
	if errors.As(err, &nerr) || errors.Is(err, context.DeadlineExceeded) {
		return &NetworkError{Err: err}
	}

	return &AuthError{Err: err}
}
