package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mfigueroa/docsage/internal/digest"
	"github.com/mfigueroa/docsage/internal/docstore"
	"github.com/mfigueroa/docsage/internal/engine"
	"github.com/mfigueroa/docsage/internal/feedback"
	"github.com/mfigueroa/docsage/internal/index"
	"github.com/mfigueroa/docsage/internal/rank"
)

// makeAskHandler creates the ask_document tool handler.
// Query flow:
// 1. Load the document's persisted embedding index (missing index answers too)
// 2. Embed the question and rank all chunks by cosine similarity
// 3. Select candidates per strategy (cosine top-k or MMR diversification)
// 4. Optionally rerank the selection via the relevance judge
// 5. Generate a grounded, page-cited answer
func makeAskHandler(eng *engine.Engine) func(
	context.Context, *mcp.CallToolRequest, AskDocumentInput,
) (*mcp.CallToolResult, AskDocumentOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AskDocumentInput) (
		*mcp.CallToolResult, AskDocumentOutput, error,
	) {
		if input.DocID == "" || input.Question == "" {
			return nil, AskDocumentOutput{}, fmt.Errorf("doc_id and question are required")
		}

		strategy := input.Strategy
		if strategy == "" {
			strategy = engine.StrategyMMR
		}
		if !engine.ValidStrategy(strategy) {
			return nil, AskDocumentOutput{}, fmt.Errorf("unknown strategy %q", strategy)
		}

		// An omitted mmr_lambda arrives as zero, which would mean pure
		// diversity; apply the documented default instead.
		mmrLambda := input.MMRLambda
		if mmrLambda <= 0 {
			mmrLambda = rank.DefaultMMRLambda
		}

		answer, err := eng.Answer(ctx, input.DocID, input.Question, engine.Options{
			K:         input.K,
			Strategy:  strategy,
			MMRLambda: mmrLambda,
			UseJudge:  input.UseJudge,
		})
		if err != nil {
			return nil, AskDocumentOutput{}, fmt.Errorf("answer failed: %w", err)
		}

		return nil, AskDocumentOutput{Answer: answer}, nil
	}
}

// makeListHandler creates the list_documents tool handler.
func makeListHandler(docs *docstore.Store, indexes *index.Store) func(
	context.Context, *mcp.CallToolRequest, ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListDocumentsInput) (
		*mcp.CallToolResult, ListDocumentsOutput, error,
	) {
		registered, err := docs.List()
		if err != nil {
			return nil, ListDocumentsOutput{}, fmt.Errorf("failed to list documents: %w", err)
		}

		out := make([]DocumentInfo, 0, len(registered))
		for _, doc := range registered {
			out = append(out, DocumentInfo{
				ID:        doc.ID,
				Filename:  doc.Filename,
				SizeBytes: doc.Size,
				CreatedAt: doc.CreatedAt,
				Indexed:   indexes.Exists(doc.ID),
			})
		}

		return nil, ListDocumentsOutput{
			Documents: out,
			Count:     len(out),
		}, nil
	}
}

// makeDigestHandler creates the digest_document tool handler.
func makeDigestHandler(docs *docstore.Store, generator *digest.Generator) func(
	context.Context, *mcp.CallToolRequest, DigestDocumentInput,
) (*mcp.CallToolResult, DigestDocumentOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input DigestDocumentInput) (
		*mcp.CallToolResult, DigestDocumentOutput, error,
	) {
		pages, err := docs.GetPages(input.DocID)
		if err != nil {
			return nil, DigestDocumentOutput{}, fmt.Errorf("failed to read document: %w", err)
		}

		d, err := generator.Generate(ctx, pages)
		if err != nil {
			return nil, DigestDocumentOutput{}, fmt.Errorf("digest failed: %w", err)
		}

		return nil, DigestDocumentOutput{
			Summary:      d.Summary,
			KeyPoints:    d.KeyPoints,
			SalientPages: d.SalientPages,
			Entities:     d.Entities,
		}, nil
	}
}

// makeStatusHandler creates the get_index_status tool handler.
func makeStatusHandler(docs *docstore.Store, indexes *index.Store) func(
	context.Context, *mcp.CallToolRequest, IndexStatusInput,
) (*mcp.CallToolResult, IndexStatusOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input IndexStatusInput) (
		*mcp.CallToolResult, IndexStatusOutput, error,
	) {
		registered, err := docs.List()
		if err != nil {
			return nil, IndexStatusOutput{}, fmt.Errorf("failed to list documents: %w", err)
		}

		ids, err := indexes.List()
		if err != nil {
			return nil, IndexStatusOutput{}, fmt.Errorf("failed to list indexes: %w", err)
		}
		if ids == nil {
			ids = []string{} // Ensure non-nil for JSON marshaling
		}

		return nil, IndexStatusOutput{
			TotalDocuments:   len(registered),
			IndexedDocuments: len(ids),
			IndexedIDs:       ids,
		}, nil
	}
}

// makeFeedbackHandler creates the record_feedback tool handler.
func makeFeedbackHandler(store *feedback.Store) func(
	context.Context, *mcp.CallToolRequest, RecordFeedbackInput,
) (*mcp.CallToolResult, RecordFeedbackOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input RecordFeedbackInput) (
		*mcp.CallToolResult, RecordFeedbackOutput, error,
	) {
		if input.DocID == "" || input.Query == "" {
			return nil, RecordFeedbackOutput{}, fmt.Errorf("doc_id and query are required")
		}

		err := store.Append(feedback.Record{
			DocID:          input.DocID,
			Query:          input.Query,
			PositiveChunks: input.PositiveChunks,
			NegativeChunks: input.NegativeChunks,
			AnswerQuality:  input.AnswerQuality,
			Notes:          input.Notes,
		})
		if err != nil {
			return nil, RecordFeedbackOutput{}, fmt.Errorf("failed to store feedback: %w", err)
		}

		return nil, RecordFeedbackOutput{OK: true}, nil
	}
}
