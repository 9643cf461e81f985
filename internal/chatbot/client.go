// Package chatbot implements the patient portal assistant: a Gemini-backed
// chat that answers scheduling questions grounded in a read-only snapshot of
// today's schedules and queue state.
package chatbot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// ChatRole tags a transcript message.
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// Message is one turn of the conversation transcript.
type Message struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// Client wraps the Gemini API for the assistant.
type Client struct {
	client  *genai.Client
	modelID string
}

// NewClient creates a Gemini-backed chat client.
func NewClient(ctx context.Context, apiKey, modelID string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("chatbot: api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("chatbot: failed to create gemini client: %w", err)
	}

	return &Client{client: client, modelID: modelID}, nil
}

// Close releases the underlying API client.
func (c *Client) Close() error {
	return c.client.Close()
}

// StreamReply sends the transcript with the clinic context as system
// instruction and calls emit once per generated token chunk. The last
// transcript message must be the user's new turn.
func (c *Client) StreamReply(ctx context.Context, system string, messages []Message, emit func(token string) error) error {
	if len(messages) == 0 {
		return errors.New("chatbot: empty transcript")
	}

	model := c.client.GenerativeModel(c.modelID)
	if strings.TrimSpace(system) != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(system))
	}

	cs := model.StartChat()
	for _, msg := range messages[:len(messages)-1] {
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}
		role := "user"
		if msg.Role == ChatRoleAssistant {
			role = "model"
		}
		cs.History = append(cs.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(content)},
		})
	}

	iter := cs.SendMessageStream(ctx, genai.Text(messages[len(messages)-1].Content))
	for {
		resp, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("chatbot: stream failed: %w", err)
		}
		for _, cand := range resp.Candidates {
			if cand.Content == nil {
				continue
			}
			for _, part := range cand.Content.Parts {
				if text, ok := part.(genai.Text); ok {
					if err := emit(string(text)); err != nil {
						return err
					}
				}
			}
		}
	}
}
