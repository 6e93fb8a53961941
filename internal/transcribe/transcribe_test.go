package transcribe

import (
	"context"
	"errors"
	"testing"
)

type fakeTranscriber struct {
	text  string
	err   error
	calls int
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, path string) (string, error) {
	f.calls++
	return f.text, f.err
}

func TestFallbackUsesFirstSuccess(t *testing.T) {
	primary := &fakeTranscriber{text: "olá, bom dia"}
	secondary := &fakeTranscriber{text: "should not run"}

	got, err := NewFallback(primary, secondary).Transcribe(context.Background(), "a.ogg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "olá, bom dia" {
		t.Fatalf("got %q", got)
	}
	if secondary.calls != 0 {
		t.Fatalf("secondary called %d times after primary succeeded", secondary.calls)
	}
}

func TestFallbackAdvancesOnFailure(t *testing.T) {
	primary := &fakeTranscriber{err: errors.New("whisper exploded")}
	secondary := &fakeTranscriber{text: "quanto custa o leite"}

	got, err := NewFallback(primary, secondary).Transcribe(context.Background(), "a.ogg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "quanto custa o leite" {
		t.Fatalf("got %q", got)
	}
}

func TestFallbackAdvancesOnEmptyTranscript(t *testing.T) {
	primary := &fakeTranscriber{text: ""}
	secondary := &fakeTranscriber{text: "oi"}

	got, err := NewFallback(primary, secondary).Transcribe(context.Background(), "a.ogg")
	if err != nil || got != "oi" {
		t.Fatalf("got %q, %v", got, err)
	}
}

func TestFallbackAggregateFailure(t *testing.T) {
	primary := &fakeTranscriber{err: errors.New("no python")}
	secondary := &fakeTranscriber{err: errors.New("api down")}

	_, err := NewFallback(primary, secondary).Transcribe(context.Background(), "a.ogg")
	if !errors.Is(err, ErrTranscriptionFailed) {
		t.Fatalf("got %v, want ErrTranscriptionFailed", err)
	}
	if primary.calls != 1 || secondary.calls != 1 {
		t.Fatalf("expected each provider tried once: %d/%d", primary.calls, secondary.calls)
	}
}
