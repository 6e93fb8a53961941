// Package ai talks to the completion provider (an OpenAI-compatible API,
// OpenRouter in production) and parses the semi-structured directives the
// model is instructed to emit.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"popbot-backend/internal/session"
)

// completionTimeout bounds a single provider call.
const completionTimeout = 20 * time.Second

// ErrEmptyReply marks an empty or invalid provider response; the engine
// treats it as a provider failure for the turn.
var ErrEmptyReply = errors.New("empty completion reply")

// Completer is the narrow contract the engine depends on.
type Completer interface {
	Complete(ctx context.Context, system string, history []session.Message) (string, error)
}

type Client struct {
	api     *openai.Client
	model   string
	persona *PersonaSpec
}

func NewClient(apiKey, baseURL, model string, persona *PersonaSpec) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{
		api:     openai.NewClientWithConfig(cfg),
		model:   model,
		persona: persona,
	}
}

func (c *Client) Persona() *PersonaSpec { return c.persona }

// Complete sends the system instruction plus the bounded history and
// returns the model's reply text.
func (c *Client) Complete(ctx context.Context, system string, history []session.Message) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: system,
	})
	for _, m := range history {
		if m.Role != session.RoleUser && m.Role != session.RoleAssistant {
			continue
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	temperature := c.persona.Style.Temperature
	if temperature <= 0 {
		temperature = 0.7
	}
	maxTokens := c.persona.Style.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 150
	}

	ctx, cancel := context.WithTimeout(ctx, completionTimeout)
	defer cancel()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyReply
	}
	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", ErrEmptyReply
	}
	return reply, nil
}
