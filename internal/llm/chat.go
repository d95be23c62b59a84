package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go"
)

// Message roles accepted by Chat.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single entry in a chat conversation.
type Message struct {
	Role    string
	Content string
}

// ChatClient issues chat completion requests. It retries rate-limited calls
// with the same bounded backoff policy as the embedder.
type ChatClient struct {
	client *Client
	model  string
}

// NewChatClient creates a ChatClient with the given client and model.
// An empty model falls back to DefaultChatModel.
func NewChatClient(client *Client, model string) *ChatClient {
	if model == "" {
		model = DefaultChatModel
	}
	return &ChatClient{
		client: client,
		model:  model,
	}
}

// Chat sends the ordered messages and returns the response text.
func (c *ChatClient) Chat(ctx context.Context, messages []Message) (string, error) {
	params := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			params = append(params, openai.SystemMessage(m.Content))
		case RoleAssistant:
			params = append(params, openai.AssistantMessage(m.Content))
		case RoleUser:
			params = append(params, openai.UserMessage(m.Content))
		default:
			return "", fmt.Errorf("unknown message role %q", m.Role)
		}
	}

	var content string
	operation := func() error {
		resp, err := c.client.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Messages: params,
			Model:    openai.ChatModel(c.model),
		})
		if err != nil {
			if isRateLimitError(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		if len(resp.Choices) == 0 {
			return backoff.Permanent(fmt.Errorf("chat completion returned no choices"))
		}
		content = resp.Choices[0].Message.Content
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	return content, nil
}
