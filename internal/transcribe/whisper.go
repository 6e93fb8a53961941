package transcribe

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Whisper runs a local transcription script. It is the primary provider:
// lower latency and no network dependency.
type Whisper struct {
	script string
}

func NewWhisper(script string) *Whisper {
	return &Whisper{script: script}
}

func (w *Whisper) Transcribe(ctx context.Context, path string) (string, error) {
	cmd := exec.CommandContext(ctx, "python", w.script, path)
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("whisper script failed: %w", err)
	}
	text := strings.TrimSpace(string(out))
	if text == "" {
		return "", fmt.Errorf("whisper script produced no output")
	}
	return text, nil
}
