package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfigueroa/docsage/internal/chunker"
	"github.com/mfigueroa/docsage/internal/index"
	"github.com/mfigueroa/docsage/internal/llm"
)

// fakePages serves fixed page text per document.
type fakePages struct {
	pages map[string][]string
}

func (f *fakePages) GetPages(docID string) ([]string, error) {
	pages, ok := f.pages[docID]
	if !ok {
		return nil, errors.New("document not found")
	}
	return pages, nil
}

// fakeEmbedder produces deterministic 3-dim vectors keyed by text content.
type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
	calls   int
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if v, ok := f.vectors[text]; ok {
			out[i] = v
		} else {
			out[i] = []float32{1, 1, 1}
		}
	}
	return out, nil
}

// fakeChat records the conversation and returns a fixed answer.
type fakeChat struct {
	lastMessages []llm.Message
	response     string
	err          error
}

func (f *fakeChat) Chat(_ context.Context, messages []llm.Message) (string, error) {
	f.lastMessages = messages
	return f.response, f.err
}

// reverseJudge reverses the candidate order, to make judge use observable.
type reverseJudge struct{ called bool }

func (r *reverseJudge) Rerank(_ context.Context, _ string, texts []string, k int) []int {
	r.called = true
	out := make([]int, 0, k)
	for i := k - 1; i >= 0; i-- {
		out = append(out, i)
	}
	return out
}

func newTestEngine(t *testing.T, pages *fakePages, embedder *fakeEmbedder, chat *fakeChat, judge Reranker) *Engine {
	t.Helper()
	store, err := index.NewStore(t.TempDir())
	require.NoError(t, err)
	return New(pages, chunker.New(1800, 200), embedder, chat, judge, store, nil)
}

func TestIngest_PersistsParallelArrays(t *testing.T) {
	pages := &fakePages{pages: map[string][]string{
		"doc": {"page one text", "", "page three text"},
	}}
	embedder := &fakeEmbedder{}
	e := newTestEngine(t, pages, embedder, &fakeChat{}, nil)

	result, err := e.Ingest(context.Background(), "doc")
	require.NoError(t, err)

	assert.Equal(t, 3, result.Pages)
	assert.Equal(t, 2, result.Chunks) // blank page contributes nothing

	ix, err := e.store.Load("doc")
	require.NoError(t, err)
	assert.Equal(t, ix.Len(), len(ix.Pages))
	assert.Equal(t, ix.Len(), len(ix.Vectors))
	assert.Equal(t, []int{1, 3}, ix.Pages)
}

func TestIngest_EmptyDocumentPersistsEmptyIndex(t *testing.T) {
	pages := &fakePages{pages: map[string][]string{"blank": {"", "  \n"}}}
	embedder := &fakeEmbedder{}
	e := newTestEngine(t, pages, embedder, &fakeChat{}, nil)

	result, err := e.Ingest(context.Background(), "blank")
	require.NoError(t, err)
	assert.Equal(t, 0, result.Chunks)
	assert.Equal(t, 0, embedder.calls, "No provider call for an empty document")

	ix, err := e.store.Load("blank")
	require.NoError(t, err)
	assert.True(t, ix.Empty())
	assert.True(t, e.store.Exists("blank"), "Empty index must still be persisted")
}

func TestIngest_EmbeddingFailureAborts(t *testing.T) {
	pages := &fakePages{pages: map[string][]string{"doc": {"some text"}}}
	embedder := &fakeEmbedder{err: errors.New("provider down")}
	e := newTestEngine(t, pages, embedder, &fakeChat{}, nil)

	_, err := e.Ingest(context.Background(), "doc")
	require.Error(t, err)
	assert.False(t, e.store.Exists("doc"), "No partial index may be written")
}

func TestIngest_Reingest_FullyReplaces(t *testing.T) {
	pages := &fakePages{pages: map[string][]string{"doc": {"first version"}}}
	e := newTestEngine(t, pages, &fakeEmbedder{}, &fakeChat{}, nil)

	_, err := e.Ingest(context.Background(), "doc")
	require.NoError(t, err)

	pages.pages["doc"] = []string{"second version", "now with two pages"}
	_, err = e.Ingest(context.Background(), "doc")
	require.NoError(t, err)

	ix, err := e.store.Load("doc")
	require.NoError(t, err)
	assert.Equal(t, []string{"second version", "now with two pages"}, ix.Texts)
}

func TestAnswer_NoIndexStillAnswers(t *testing.T) {
	chat := &fakeChat{response: "please upload a readable PDF"}
	e := newTestEngine(t, &fakePages{}, &fakeEmbedder{}, chat, nil)

	answer, err := e.Answer(context.Background(), "never-ingested", "what is this?", Options{})
	require.NoError(t, err)
	assert.Equal(t, "please upload a readable PDF", answer)

	require.Len(t, chat.lastMessages, 2)
	assert.Contains(t, chat.lastMessages[1].Content, "no readable index")
}

func TestAnswer_CosineStrategySelectsTopK(t *testing.T) {
	pages := &fakePages{pages: map[string][]string{
		"doc": {"alpha", "bravo", "charlie"},
	}}
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"alpha":    {0, 1, 0},
		"bravo":    {1, 0, 0},
		"charlie":  {0.9, 0.1, 0},
		"question": {1, 0, 0},
	}}
	chat := &fakeChat{response: "grounded answer"}
	e := newTestEngine(t, pages, embedder, chat, nil)

	_, err := e.Ingest(context.Background(), "doc")
	require.NoError(t, err)

	answer, err := e.Answer(context.Background(), "doc", "question",
		Options{K: 2, Strategy: StrategyCosine})
	require.NoError(t, err)
	assert.Equal(t, "grounded answer", answer)

	user := chat.lastMessages[1].Content
	assert.Contains(t, user, "(p.2) bravo")
	assert.Contains(t, user, "(p.3) charlie")
	assert.NotContains(t, user, "alpha")
	// bravo is the better match and must come first.
	assert.Less(t, strings.Index(user, "bravo"), strings.Index(user, "charlie"))
}

func TestAnswer_MMRDiversifies(t *testing.T) {
	pages := &fakePages{pages: map[string][]string{
		"doc": {"best match", "near duplicate", "diverse passage"},
	}}
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"best match":      {1, 0, 0},
		"near duplicate":  {0.999, 0.001, 0},
		"diverse passage": {0.6, 0.8, 0},
		"question":        {1, 0, 0},
	}}
	chat := &fakeChat{response: "ok"}
	e := newTestEngine(t, pages, embedder, chat, nil)

	_, err := e.Ingest(context.Background(), "doc")
	require.NoError(t, err)

	_, err = e.Answer(context.Background(), "doc", "question",
		Options{K: 2, Strategy: StrategyMMR, MMRLambda: 0.3})
	require.NoError(t, err)

	user := chat.lastMessages[1].Content
	assert.Contains(t, user, "best match")
	assert.Contains(t, user, "diverse passage")
	assert.NotContains(t, user, "near duplicate")
}

func TestAnswer_JudgeReorders(t *testing.T) {
	pages := &fakePages{pages: map[string][]string{
		"doc": {"first", "second"},
	}}
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"first":    {1, 0, 0},
		"second":   {0.9, 0.1, 0},
		"question": {1, 0, 0},
	}}
	chat := &fakeChat{response: "ok"}
	judge := &reverseJudge{}
	e := newTestEngine(t, pages, embedder, chat, judge)

	_, err := e.Ingest(context.Background(), "doc")
	require.NoError(t, err)

	_, err = e.Answer(context.Background(), "doc", "question",
		Options{K: 2, Strategy: StrategyCosine, UseJudge: true})
	require.NoError(t, err)

	assert.True(t, judge.called)
	user := chat.lastMessages[1].Content
	// Judge reversed the cosine order, so "second" is cited first.
	assert.Less(t, strings.Index(user, "second"), strings.Index(user, "first"))
}

func TestValidStrategy(t *testing.T) {
	assert.True(t, ValidStrategy(StrategyCosine))
	assert.True(t, ValidStrategy(StrategyMMR))
	assert.False(t, ValidStrategy(""))
	assert.False(t, ValidStrategy("bm25"))
	assert.False(t, ValidStrategy("Cosine"))
}

func TestAnswer_KClampedToIndexSize(t *testing.T) {
	pages := &fakePages{pages: map[string][]string{"doc": {"only chunk"}}}
	chat := &fakeChat{response: "ok"}
	e := newTestEngine(t, pages, &fakeEmbedder{}, chat, nil)

	_, err := e.Ingest(context.Background(), "doc")
	require.NoError(t, err)

	_, err = e.Answer(context.Background(), "doc", "question", Options{K: 25})
	require.NoError(t, err)
	assert.Contains(t, chat.lastMessages[1].Content, "(p.1) only chunk")
}
