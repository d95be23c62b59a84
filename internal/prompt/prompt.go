// Package prompt assembles page-cited context blocks and the chat messages
// used for grounded answer generation.
package prompt

import (
	"fmt"
	"strings"

	"github.com/mfigueroa/docsage/internal/index"
	"github.com/mfigueroa/docsage/internal/llm"
)

const answerSystem = "You are a document analysis assistant. Answer briefly and " +
	"precisely using ONLY the provided context; if the context lacks the " +
	"information, say so. Cite the relevant page numbers."

const noIndexSystem = "You are a document analysis assistant. No readable text " +
	"is indexed for this document; ask the user for a readable or OCR-processed PDF."

// RenderContext renders the selected chunks as a context block, one line per
// chunk tagged with its page number. Newlines inside chunk text are collapsed
// to spaces so each context item occupies exactly one line.
func RenderContext(ix *index.Index, selected []int) string {
	lines := make([]string, 0, len(selected))
	for _, i := range selected {
		if i < 0 || i >= ix.Len() {
			continue
		}
		text := strings.Join(strings.Fields(ix.Texts[i]), " ")
		lines = append(lines, fmt.Sprintf("(p.%d) %s", ix.Pages[i], text))
	}
	return strings.Join(lines, "\n\n")
}

// AnswerMessages builds the grounded answer-generation conversation.
func AnswerMessages(question, context string) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: answerSystem},
		{Role: llm.RoleUser, Content: "Question: " + question + "\n\nCONTEXT:\n" + context},
	}
}

// NoIndexMessages builds the conversation used when a document has no indexed
// content, so the query still returns a response instead of an error.
func NoIndexMessages(question string) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: noIndexSystem},
		{Role: llm.RoleUser, Content: "Document has no readable index. Question: " + question},
	}
}
