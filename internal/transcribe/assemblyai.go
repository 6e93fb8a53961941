package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	defaultPollInterval = 2 * time.Second
	// maxPolls caps the upload-then-poll protocol at ~3 minutes; beyond
	// that the job counts as failed.
	maxPolls = 90
)

// AssemblyAI is the remote fallback provider: upload the audio, then poll
// the job until it reaches a terminal status.
type AssemblyAI struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	language     string
	pollInterval time.Duration
}

func NewAssemblyAI(apiKey, baseURL string) *AssemblyAI {
	return &AssemblyAI{
		httpClient:   &http.Client{Timeout: 60 * time.Second},
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		apiKey:       apiKey,
		language:     "pt",
		pollInterval: defaultPollInterval,
	}
}

type transcriptJob struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Text   string `json:"text"`
	Error  string `json:"error"`
}

func (a *AssemblyAI) Transcribe(ctx context.Context, path string) (string, error) {
	audio, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read audio: %w", err)
	}

	var uploaded struct {
		UploadURL string `json:"upload_url"`
	}
	if err := a.post(ctx, "/upload", "application/octet-stream", bytes.NewReader(audio), &uploaded); err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}

	body, _ := json.Marshal(map[string]string{
		"audio_url":     uploaded.UploadURL,
		"language_code": a.language,
	})
	var job transcriptJob
	if err := a.post(ctx, "/transcript", "application/json", bytes.NewReader(body), &job); err != nil {
		return "", fmt.Errorf("transcript request failed: %w", err)
	}

	for i := 0; i < maxPolls; i++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(a.pollInterval):
		}
		if err := a.get(ctx, "/transcript/"+job.ID, &job); err != nil {
			return "", fmt.Errorf("poll failed: %w", err)
		}
		switch job.Status {
		case "completed":
			return strings.TrimSpace(job.Text), nil
		case "error":
			return "", fmt.Errorf("transcription job failed: %s", job.Error)
		}
	}
	return "", fmt.Errorf("transcription job %s did not finish within %d polls", job.ID, maxPolls)
}

func (a *AssemblyAI) post(ctx context.Context, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("authorization", a.apiKey)
	req.Header.Set("content-type", contentType)
	return a.do(req, out)
}

func (a *AssemblyAI) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("authorization", a.apiKey)
	return a.do(req, out)
}

func (a *AssemblyAI) do(req *http.Request, out any) error {
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("assemblyai %s: %s", resp.Status, strings.TrimSpace(string(b)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
