// Package transport abstracts the WhatsApp gateway: inbound events arrive
// as webhook payloads, outbound actions go through the gateway's REST API.
package transport

import "context"

// Inbound is one chat event as delivered by the gateway webhook.
type Inbound struct {
	From       string `json:"from"`
	Body       string `json:"body"`
	Type       string `json:"type"` // chat | audio | ptt | revoked | ...
	IsGroupMsg bool   `json:"isGroupMsg"`
	FromMe     bool   `json:"fromMe"`
	// MediaID references downloadable media for audio messages.
	MediaID string `json:"mediaId,omitempty"`
}

// Transport is the outbound capability surface the engine consumes.
type Transport interface {
	SendText(ctx context.Context, to, text string) error
	SendFile(ctx context.Context, to, path, filename, caption string) error
	SendSeen(ctx context.Context, to string) error
	StartTyping(ctx context.Context, to string) error
	StopTyping(ctx context.Context, to string) error
	DownloadMedia(ctx context.Context, mediaID string) ([]byte, error)
}
