// Package llm wraps the OpenAI API for the two provider capabilities the
// engine consumes: text embedding and chat completion.
package llm

import (
	"fmt"
	"os"

	"github.com/openai/openai-go"
)

const (
	// DefaultEmbeddingModel is the embedding model used unless overridden.
	DefaultEmbeddingModel = "text-embedding-3-small"

	// DefaultChatModel is the chat model used unless overridden.
	DefaultChatModel = "gpt-4o"
)

// Client wraps the OpenAI client shared by the embedder, the chat client,
// and the digest generator. Its lifecycle is scoped to process start/stop.
type Client struct {
	client *openai.Client
}

// NewClient creates the shared OpenAI client. It requires OPENAI_API_KEY in
// the environment and returns an error if not set.
func NewClient() (*Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	// openai-go automatically reads OPENAI_API_KEY from environment
	client := openai.NewClient()

	return &Client{client: &client}, nil
}

// Client returns the underlying OpenAI client for packages that need direct
// access (e.g. JSON-mode digest generation).
func (c *Client) Client() *openai.Client {
	return c.client
}
