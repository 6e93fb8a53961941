package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"
)

// Gateway implements Transport against the WhatsApp gateway's REST API.
type Gateway struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

func NewGateway(baseURL, token string) *Gateway {
	return &Gateway{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
	}
}

func (g *Gateway) SendText(ctx context.Context, to, text string) error {
	return g.postJSON(ctx, "/api/sendText", map[string]string{"to": to, "body": text})
}

func (g *Gateway) SendSeen(ctx context.Context, to string) error {
	return g.postJSON(ctx, "/api/sendSeen", map[string]string{"to": to})
}

func (g *Gateway) StartTyping(ctx context.Context, to string) error {
	return g.postJSON(ctx, "/api/startTyping", map[string]string{"to": to})
}

func (g *Gateway) StopTyping(ctx context.Context, to string) error {
	return g.postJSON(ctx, "/api/stopTyping", map[string]string{"to": to})
}

// SendFile uploads the file as multipart form data alongside the routing
// fields.
func (g *Gateway) SendFile(ctx context.Context, to, path, filename, caption string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("to", to)
	_ = mw.WriteField("filename", filename)
	_ = mw.WriteField("caption", caption)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/sendFile", &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return g.do(req, nil)
}

func (g *Gateway) DownloadMedia(ctx context.Context, mediaID string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/api/media/"+mediaID, nil)
	if err != nil {
		return nil, err
	}
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("gateway media %s: %s", resp.Status, strings.TrimSpace(string(b)))
	}
	return io.ReadAll(resp.Body)
}

func (g *Gateway) postJSON(ctx context.Context, path string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return g.do(req, nil)
}

func (g *Gateway) do(req *http.Request, out any) error {
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("gateway %s %s: %s", req.URL.Path, resp.Status, strings.TrimSpace(string(b)))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
