// Package transcribe converts voice notes to text through an ordered
// fallback chain: a local Whisper process first, AssemblyAI second. Audio
// handling is a pure adapter; a successful transcript re-enters the engine
// as if it were a native text message.
package transcribe

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// ErrTranscriptionFailed is the single aggregate error surfaced when every
// provider in the chain failed. Callers never learn which one broke.
var ErrTranscriptionFailed = errors.New("all transcription providers failed")

type Transcriber interface {
	// Transcribe returns the text for the audio file at path. An empty
	// transcript counts as a failure.
	Transcribe(ctx context.Context, path string) (string, error)
}

// Fallback tries each provider in order and returns the first non-empty
// transcript.
type Fallback struct {
	chain []Transcriber
}

func NewFallback(providers ...Transcriber) *Fallback {
	return &Fallback{chain: providers}
}

func (f *Fallback) Transcribe(ctx context.Context, path string) (string, error) {
	for i, t := range f.chain {
		text, err := t.Transcribe(ctx, path)
		if err == nil && text != "" {
			return text, nil
		}
		log.Printf("[transcribe] provider %d/%d failed: %v", i+1, len(f.chain), err)
	}
	return "", fmt.Errorf("%w (%d tried)", ErrTranscriptionFailed, len(f.chain))
}
