// Package transcriber converts voice messages to text. It asks Telegram's
// built-in transcription API first (requires Premium or free quota) and can
// fall back to the OpenAI Whisper API on the downloaded audio file when
// OPENAI_API_KEY is set.
package transcriber

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gotd/td/tg"
	"go.uber.org/zap"
)

const (
	defaultMaxWait      = 30 * time.Second
	defaultPollInterval = 2 * time.Second
)

type Transcriber struct {
	api      *tg.Client
	whisper  *whisper
	maxWait  time.Duration
	interval time.Duration
	log      *zap.Logger
}

// New builds a Transcriber on top of an MTProto invoker. The Whisper
// fallback is enabled only when OPENAI_API_KEY is present in the
// environment.
func New(invoker tg.Invoker, log *zap.Logger) *Transcriber {
	t := &Transcriber{
		api:      tg.NewClient(invoker),
		maxWait:  defaultMaxWait,
		interval: defaultPollInterval,
		log:      log,
	}
	if os.Getenv("OPENAI_API_KEY") != "" {
		t.whisper = newWhisper()
	}
	return t
}

// Transcribe returns the text of a voice message. audioPath may be empty
// when the media was not downloaded; in that case only the Telegram API is
// tried.
func (t *Transcriber) Transcribe(ctx context.Context, peer tg.InputPeerClass, msgID int, audioPath string) (string, error) {
	text, err := t.viaTelegram(ctx, peer, msgID)
	if err == nil {
		return text, nil
	}
	t.log.Debug("telegram transcription unavailable",
		zap.Int("msg_id", msgID),
		zap.Error(err))

	if t.whisper != nil && audioPath != "" {
		return t.whisper.transcribe(ctx, audioPath)
	}
	return "", err
}

// viaTelegram requests a transcription and polls while the server reports
// it pending, re-issuing the request every interval until maxWait elapses.
func (t *Transcriber) viaTelegram(ctx context.Context, peer tg.InputPeerClass, msgID int) (string, error) {
	req := &tg.MessagesTranscribeAudioRequest{
		Peer:  peer,
		MsgID: msgID,
	}

	result, err := t.api.MessagesTranscribeAudio(ctx, req)
	if err != nil {
		return "", fmt.Errorf("requesting transcription for message %d: %w", msgID, err)
	}

	deadline := time.Now().Add(t.maxWait)
	for result.Pending {
		if time.Now().After(deadline) {
			return "", fmt.Errorf("transcription for message %d still pending after %s", msgID, t.maxWait)
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(t.interval):
		}
		result, err = t.api.MessagesTranscribeAudio(ctx, req)
		if err != nil {
			return "", fmt.Errorf("polling transcription for message %d: %w", msgID, err)
		}
	}

	return result.Text, nil
}
