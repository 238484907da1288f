package transcriber

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/openai/openai-go/v3"
)

// whisper sends audio files to the OpenAI Whisper API. The SDK reads its
// key from OPENAI_API_KEY.
type whisper struct {
	client openai.Client
}

func newWhisper() *whisper {
	return &whisper{client: openai.NewClient()}
}

func (w *whisper) transcribe(ctx context.Context, audioPath string) (string, error) {
	// Whisper rejects .oga/.opus extensions even though Telegram voice notes
	// are plain OGG/Opus containers. Symlink with .ogg so the API accepts
	// the upload.
	actualPath := audioPath
	ext := strings.ToLower(filepath.Ext(audioPath))
	if ext == ".opus" || ext == ".oga" {
		oggPath := strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + ".ogg"
		if err := os.Symlink(audioPath, oggPath); err == nil {
			actualPath = oggPath
			defer os.Remove(oggPath)
		}
	}

	f, err := os.Open(actualPath)
	if err != nil {
		return "", fmt.Errorf("opening audio file %s: %w", actualPath, err)
	}
	defer f.Close()

	result, err := w.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		Model: openai.AudioModelWhisper1,
		File:  f,
	})
	if err != nil {
		return "", fmt.Errorf("transcribing %s: %w", audioPath, err)
	}
	return result.Text, nil
}
