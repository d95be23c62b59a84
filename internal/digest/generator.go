// Package digest produces LLM-generated document summaries.
package digest

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/openai/openai-go"

	"github.com/mfigueroa/docsage/internal/llm"
)

// DefaultMaxChars is the maximum document text length sent for summarization.
const DefaultMaxChars = 16000

// DocumentDigest contains the LLM-generated summary of a document.
type DocumentDigest struct {
	Summary      string   `json:"summary"`
	KeyPoints    []string `json:"key_points"`
	SalientPages []int    `json:"salient_pages"`
	Entities     []string `json:"entities"`
}

// Generator produces digests using JSON-mode chat completions.
type Generator struct {
	client   *llm.Client
	model    string
	maxChars int
}

// NewGenerator creates a digest generator with the given client and model.
// Optional maxChars parameter sets the truncation limit (defaults to
// DefaultMaxChars).
func NewGenerator(client *llm.Client, model string, maxChars ...int) *Generator {
	if model == "" {
		model = llm.DefaultChatModel
	}
	max := DefaultMaxChars
	if len(maxChars) > 0 && maxChars[0] > 0 {
		max = maxChars[0]
	}
	return &Generator{
		client:   client,
		model:    model,
		maxChars: max,
	}
}

// Generate analyzes the document's page text and produces a digest.
func (g *Generator) Generate(ctx context.Context, pages []string) (*DocumentDigest, error) {
	text := g.truncate(joinPages(pages))

	prompt := fmt.Sprintf(`Analyze this document and provide:
1. A concise summary (2-3 sentences) of what the document is about
2. The key points a reader should know
3. The page numbers carrying the most important content
4. The named parties, organizations, or entities mentioned

Document text (pages are marked [page N]):
%s

Respond in JSON format:
{"summary": "...", "key_points": ["..."], "salient_pages": [1], "entities": ["..."]}`, text)

	resp, err := g.client.Client().Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model: openai.ChatModel(g.model),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{
				Type: "json_object",
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	var d DocumentDigest
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &d); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if d.KeyPoints == nil {
		d.KeyPoints = []string{}
	}
	if d.SalientPages == nil {
		d.SalientPages = []int{}
	}
	if d.Entities == nil {
		d.Entities = []string{}
	}
	return &d, nil
}

// joinPages concatenates page text with page markers so the model can report
// salient pages.
func joinPages(pages []string) string {
	var sb strings.Builder
	for i, page := range pages {
		page = strings.TrimSpace(page)
		if page == "" {
			continue
		}
		fmt.Fprintf(&sb, "[page %d]\n%s\n\n", i+1, page)
	}
	return sb.String()
}

// truncate bounds the text sent to the model.
func (g *Generator) truncate(text string) string {
	if len(text) <= g.maxChars {
		return text
	}
	log.Printf("Warning: Truncating digest input from %d to %d characters", len(text), g.maxChars)
	return text[:g.maxChars]
}
