package transcribe

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func writeAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "voice.ogg")
	if err := os.WriteFile(path, []byte("OggS fake audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAssemblyAITranscribe(t *testing.T) {
	var polls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("authorization") != "key-1" {
			t.Errorf("missing auth header on %s", r.URL.Path)
		}
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/upload":
			fmt.Fprint(w, `{"upload_url": "https://cdn.example/audio"}`)
		case r.Method == http.MethodPost && r.URL.Path == "/transcript":
			fmt.Fprint(w, `{"id": "job-1", "status": "queued"}`)
		case r.Method == http.MethodGet && r.URL.Path == "/transcript/job-1":
			if atomic.AddInt32(&polls, 1) < 3 {
				fmt.Fprint(w, `{"id": "job-1", "status": "processing"}`)
				return
			}
			fmt.Fprint(w, `{"id": "job-1", "status": "completed", "text": " oi, tem oferta hoje? "}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	a := NewAssemblyAI("key-1", srv.URL)
	a.pollInterval = time.Millisecond

	got, err := a.Transcribe(context.Background(), writeAudio(t))
	if err != nil {
		t.Fatalf("transcribe failed: %v", err)
	}
	if got != "oi, tem oferta hoje?" {
		t.Fatalf("got %q", got)
	}
}

func TestAssemblyAIJobError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/upload":
			fmt.Fprint(w, `{"upload_url": "https://cdn.example/audio"}`)
		case r.URL.Path == "/transcript" && r.Method == http.MethodPost:
			fmt.Fprint(w, `{"id": "job-2", "status": "queued"}`)
		default:
			fmt.Fprint(w, `{"id": "job-2", "status": "error", "error": "unsupported codec"}`)
		}
	}))
	defer srv.Close()

	a := NewAssemblyAI("k", srv.URL)
	a.pollInterval = time.Millisecond

	_, err := a.Transcribe(context.Background(), writeAudio(t))
	if err == nil || !strings.Contains(err.Error(), "unsupported codec") {
		t.Fatalf("got %v", err)
	}
}

func TestAssemblyAIUploadRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	a := NewAssemblyAI("wrong", srv.URL)
	a.pollInterval = time.Millisecond

	if _, err := a.Transcribe(context.Background(), writeAudio(t)); err == nil {
		t.Fatal("expected an upload error")
	}
}
