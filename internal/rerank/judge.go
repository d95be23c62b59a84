// Package rerank asks a language model to reorder a small candidate set by
// relevance. Reranking is an optimization, not a correctness requirement:
// every failure path degrades to identity ordering and no error is surfaced.
package rerank

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mfigueroa/docsage/internal/llm"
)

// DefaultPreviewChars bounds each candidate preview sent to the model.
const DefaultPreviewChars = 600

// ChatClient is the chat capability the judge consumes.
type ChatClient interface {
	Chat(ctx context.Context, messages []llm.Message) (string, error)
}

// Judge reorders candidate chunks by asking a language model for a ranking.
type Judge struct {
	chat         ChatClient
	previewChars int
	logger       *slog.Logger
}

// NewJudge creates a Judge. If previewChars is not positive,
// DefaultPreviewChars is used.
func NewJudge(chat ChatClient, previewChars int, logger *slog.Logger) *Judge {
	if previewChars <= 0 {
		previewChars = DefaultPreviewChars
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Judge{
		chat:         chat,
		previewChars: previewChars,
		logger:       logger,
	}
}

// Rerank returns a permutation of [0..k) ordering the first k candidates by
// judged relevance to the question, most relevant first. k is clamped to
// len(texts). Malformed, out-of-range, non-integer, or duplicate entries in
// the model output are discarded; if nothing valid remains, or the chat call
// fails, the identity ordering is returned.
func (j *Judge) Rerank(ctx context.Context, question string, texts []string, k int) []int {
	if k > len(texts) {
		k = len(texts)
	}
	if k <= 0 {
		return nil
	}

	response, err := j.chat.Chat(ctx, j.messages(question, texts[:k]))
	if err != nil {
		j.logger.Warn("Rerank chat failed, keeping original order", "error", err)
		return identity(k)
	}

	ranking := sanitizeRanking(parseRanking(response), k)
	if len(ranking) == 0 {
		j.logger.Warn("Rerank returned no usable ranking, keeping original order")
		return identity(k)
	}

	// Candidates the model omitted keep their original relative order.
	seen := make(map[int]bool, len(ranking))
	for _, idx := range ranking {
		seen[idx] = true
	}
	for i := 0; i < k; i++ {
		if !seen[i] {
			ranking = append(ranking, i)
		}
	}
	return ranking
}

// messages builds the ranking request with bounded candidate previews.
func (j *Judge) messages(question string, texts []string) []llm.Message {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Question: %s\n\nCandidate passages:\n", question)
	for i, text := range texts {
		preview := strings.Join(strings.Fields(text), " ")
		if len(preview) > j.previewChars {
			preview = preview[:j.previewChars]
		}
		fmt.Fprintf(&sb, "[%d] %s\n", i, preview)
	}
	fmt.Fprintf(&sb, "\nReturn a JSON array of the passage indices ordered from "+
		"most to least relevant to the question, e.g. [2,0,1]. Return only the array.")

	return []llm.Message{
		{Role: llm.RoleSystem, Content: "You rank text passages by relevance to a question. Respond with JSON only."},
		{Role: llm.RoleUser, Content: sb.String()},
	}
}

// parseRanking extracts integer indices from the model response. It accepts a
// bare JSON array or an object with a "ranking" field, searching the response
// for the first array if surrounded by prose. External JSON is never trusted
// structurally: anything that does not decode to integral numbers is dropped.
func parseRanking(response string) []int {
	var wrapped struct {
		Ranking []json.Number `json:"ranking"`
	}
	if err := json.Unmarshal([]byte(response), &wrapped); err == nil && len(wrapped.Ranking) > 0 {
		return toInts(wrapped.Ranking)
	}

	start := strings.Index(response, "[")
	end := strings.LastIndex(response, "]")
	if start == -1 || end <= start {
		return nil
	}

	var raw []json.Number
	if err := json.Unmarshal([]byte(response[start:end+1]), &raw); err != nil {
		return nil
	}
	return toInts(raw)
}

// toInts keeps only entries that are integral numbers.
func toInts(nums []json.Number) []int {
	out := make([]int, 0, len(nums))
	for _, n := range nums {
		v, err := n.Int64()
		if err != nil {
			continue
		}
		out = append(out, int(v))
	}
	return out
}

// sanitizeRanking drops out-of-range and duplicate indices.
func sanitizeRanking(ranking []int, k int) []int {
	seen := make(map[int]bool, k)
	out := make([]int, 0, len(ranking))
	for _, idx := range ranking {
		if idx < 0 || idx >= k || seen[idx] {
			continue
		}
		seen[idx] = true
		out = append(out, idx)
	}
	return out
}

// identity returns [0, 1, ..., k-1].
func identity(k int) []int {
	out := make([]int, k)
	for i := range out {
		out[i] = i
	}
	return out
}
