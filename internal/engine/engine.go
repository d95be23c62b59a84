// Package engine orchestrates document ingestion and grounded question
// answering: chunking, embedding, index persistence, ranking, diversification,
// optional reranking, and context assembly.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mfigueroa/docsage/internal/chunker"
	"github.com/mfigueroa/docsage/internal/index"
	"github.com/mfigueroa/docsage/internal/llm"
	"github.com/mfigueroa/docsage/internal/prompt"
	"github.com/mfigueroa/docsage/internal/rank"
)

// Retrieval strategies for Answer.
const (
	StrategyCosine = "cosine"
	StrategyMMR    = "mmr"
)

// ValidStrategy reports whether name is a known retrieval strategy.
func ValidStrategy(name string) bool {
	return name == StrategyCosine || name == StrategyMMR
}

// DefaultK is the number of chunks retrieved per question unless overridden.
const DefaultK = 6

// candidatePoolFactor sizes the cosine top-N pool handed to MMR relative to k.
const candidatePoolFactor = 3

// Embedder is the embedding provider capability the engine consumes.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// ChatClient is the text generation capability the engine consumes.
type ChatClient interface {
	Chat(ctx context.Context, messages []llm.Message) (string, error)
}

// Reranker reorders candidate chunks by judged relevance. Implementations
// must not fail; degraded output is the identity ordering.
type Reranker interface {
	Rerank(ctx context.Context, question string, texts []string, k int) []int
}

// PageSource supplies extracted per-page text for a document.
type PageSource interface {
	GetPages(docID string) ([]string, error)
}

// Options control retrieval behavior for a single question.
type Options struct {
	K         int     // number of chunks to retrieve (default DefaultK)
	Strategy  string  // StrategyCosine or StrategyMMR (default StrategyMMR)
	MMRLambda float64 // relevance/diversity trade-off in [0,1]
	UseJudge  bool    // rerank candidates with the relevance judge
}

// IngestResult contains statistics about one ingestion.
type IngestResult struct {
	DocID    string
	Pages    int
	Chunks   int
	Duration time.Duration
}

// Engine wires the retrieval pipeline components together. It holds no
// cross-call state beyond the persisted index store.
type Engine struct {
	pages    PageSource
	chunker  *chunker.Chunker
	embedder Embedder
	chat     ChatClient
	judge    Reranker
	store    *index.Store
	logger   *slog.Logger
}

// New creates an engine with the given components. judge may be nil, in which
// case UseJudge is ignored.
func New(
	pages PageSource,
	ch *chunker.Chunker,
	embedder Embedder,
	chat ChatClient,
	judge Reranker,
	store *index.Store,
	logger *slog.Logger,
) *Engine {
	if ch == nil {
		ch = chunker.New(chunker.DefaultMaxChars, chunker.DefaultOverlap)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		pages:    pages,
		chunker:  ch,
		embedder: embedder,
		chat:     chat,
		judge:    judge,
		store:    store,
		logger:   logger,
	}
}

// Ingest builds the embedding index for docID as a full replacement of any
// prior index. A document with no extractable text persists three empty
// arrays. Any embedding failure aborts the build with nothing written.
func (e *Engine) Ingest(ctx context.Context, docID string) (*IngestResult, error) {
	start := time.Now()

	pages, err := e.pages.GetPages(docID)
	if err != nil {
		return nil, fmt.Errorf("get pages: %w", err)
	}

	chunks := e.chunker.ChunkPages(pages)
	e.logger.Debug("Chunked document", "doc_id", docID, "pages", len(pages), "chunks", len(chunks))

	ix := &index.Index{}
	if len(chunks) > 0 {
		texts := chunker.Texts(chunks)
		vectors, err := e.embedder.Embed(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed chunks: %w", err)
		}
		ix = &index.Index{
			Texts:   texts,
			Pages:   chunker.Pages(chunks),
			Vectors: vectors,
		}
	}

	if err := e.store.Build(docID, ix); err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}

	result := &IngestResult{
		DocID:    docID,
		Pages:    len(pages),
		Chunks:   len(chunks),
		Duration: time.Since(start),
	}
	e.logger.Info("Indexed document",
		"doc_id", docID,
		"pages", result.Pages,
		"chunks", result.Chunks,
		"duration", result.Duration,
	)
	return result, nil
}

// Answer retrieves the most relevant chunks for question from the document's
// index and generates a grounded, page-cited answer. A document with no
// indexed content still returns a response via the no-index framing.
func (e *Engine) Answer(ctx context.Context, docID, question string, opts Options) (string, error) {
	ix, err := e.store.Load(docID)
	if err != nil {
		return "", fmt.Errorf("load index: %w", err)
	}

	if ix.Empty() {
		e.logger.Info("Answering without index", "doc_id", docID)
		return e.chat.Chat(ctx, prompt.NoIndexMessages(question))
	}

	queryVectors, err := e.embedder.Embed(ctx, []string{question})
	if err != nil {
		return "", fmt.Errorf("embed question: %w", err)
	}
	query := rank.NormalizeVector(queryVectors[0])
	vectors := rank.Normalize(ix.Vectors)

	selected := e.selectChunks(vectors, query, ix.Len(), opts)

	if opts.UseJudge && e.judge != nil {
		texts := make([]string, len(selected))
		for i, idx := range selected {
			texts[i] = ix.Texts[idx]
		}
		reordered := make([]int, 0, len(selected))
		for _, pos := range e.judge.Rerank(ctx, question, texts, len(texts)) {
			reordered = append(reordered, selected[pos])
		}
		selected = reordered
	}

	contextBlock := prompt.RenderContext(ix, selected)
	e.logger.Debug("Assembled context", "doc_id", docID, "chunks", len(selected))

	return e.chat.Chat(ctx, prompt.AnswerMessages(question, contextBlock))
}

// selectChunks ranks all chunks by cosine similarity and picks the final
// candidate set per the configured strategy. MMR runs over the cosine top-N
// pool and its picks are mapped back to absolute indices once.
func (e *Engine) selectChunks(vectors [][]float32, query []float32, n int, opts Options) []int {
	k := opts.K
	if k <= 0 {
		k = DefaultK
	}
	if k > n {
		k = n
	}

	order := rank.Rank(vectors, query)

	if opts.Strategy == StrategyCosine {
		return order[:k]
	}

	lambda := opts.MMRLambda
	if lambda < 0 || lambda > 1 {
		lambda = rank.DefaultMMRLambda
	}

	pool := min(k*candidatePoolFactor, len(order))
	candidates := make([][]float32, pool)
	for i := 0; i < pool; i++ {
		candidates[i] = vectors[order[i]]
	}

	picks := rank.MMR(candidates, query, k, lambda)
	selected := make([]int, len(picks))
	for i, p := range picks {
		selected[i] = order[p]
	}
	return selected
}
