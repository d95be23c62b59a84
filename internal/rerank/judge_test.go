package rerank

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfigueroa/docsage/internal/llm"
)

// fakeChat returns a canned response or error and records the last request.
type fakeChat struct {
	response string
	err      error
	lastUser string
}

func (f *fakeChat) Chat(_ context.Context, messages []llm.Message) (string, error) {
	for _, m := range messages {
		if m.Role == llm.RoleUser {
			f.lastUser = m.Content
		}
	}
	return f.response, f.err
}

func TestRerank_ValidRanking(t *testing.T) {
	judge := NewJudge(&fakeChat{response: "[2, 0, 1]"}, 0, nil)

	got := judge.Rerank(context.Background(), "q", []string{"a", "b", "c"}, 3)
	assert.Equal(t, []int{2, 0, 1}, got)
}

func TestRerank_RankingWrappedInProse(t *testing.T) {
	judge := NewJudge(&fakeChat{response: "The best order is: [1, 0] based on relevance."}, 0, nil)

	got := judge.Rerank(context.Background(), "q", []string{"a", "b"}, 2)
	assert.Equal(t, []int{1, 0}, got)
}

func TestRerank_ObjectRanking(t *testing.T) {
	judge := NewJudge(&fakeChat{response: `{"ranking": [1, 2, 0]}`}, 0, nil)

	got := judge.Rerank(context.Background(), "q", []string{"a", "b", "c"}, 3)
	assert.Equal(t, []int{1, 2, 0}, got)
}

func TestRerank_SanitizesBadEntries(t *testing.T) {
	// Out-of-range and duplicate entries are dropped; omitted candidates are
	// appended in original order.
	judge := NewJudge(&fakeChat{response: "[7, 1, 1, -3, 2]"}, 0, nil)

	got := judge.Rerank(context.Background(), "q", []string{"a", "b", "c"}, 3)
	assert.Equal(t, []int{1, 2, 0}, got)
}

func TestRerank_NoValidJSONFallsBackToIdentity(t *testing.T) {
	judge := NewJudge(&fakeChat{response: "I cannot rank these passages."}, 0, nil)

	got := judge.Rerank(context.Background(), "q", []string{"a", "b", "c", "d"}, 4)
	assert.Equal(t, []int{0, 1, 2, 3}, got)
}

func TestRerank_ChatErrorFallsBackToIdentity(t *testing.T) {
	judge := NewJudge(&fakeChat{err: errors.New("provider down")}, 0, nil)

	got := judge.Rerank(context.Background(), "q", []string{"a", "b"}, 2)
	assert.Equal(t, []int{0, 1}, got)
}

func TestRerank_NonIntegerEntriesDiscarded(t *testing.T) {
	judge := NewJudge(&fakeChat{response: "[1.5, 1, 0.25]"}, 0, nil)

	got := judge.Rerank(context.Background(), "q", []string{"a", "b"}, 2)
	assert.Equal(t, []int{1, 0}, got)
}

func TestRerank_KClampedToCandidates(t *testing.T) {
	judge := NewJudge(&fakeChat{response: "[0, 1]"}, 0, nil)

	got := judge.Rerank(context.Background(), "q", []string{"a", "b"}, 10)
	assert.Equal(t, []int{0, 1}, got)
}

func TestRerank_ZeroCandidates(t *testing.T) {
	judge := NewJudge(&fakeChat{response: "[]"}, 0, nil)

	got := judge.Rerank(context.Background(), "q", nil, 5)
	assert.Nil(t, got)
}

func TestRerank_PreviewsAreBounded(t *testing.T) {
	chat := &fakeChat{response: "[0]"}
	judge := NewJudge(chat, 50, nil)

	long := strings.Repeat("verylongword ", 100)
	judge.Rerank(context.Background(), "q", []string{long}, 1)

	require.NotEmpty(t, chat.lastUser)
	// The 1300-char candidate must appear truncated to the preview bound.
	assert.NotContains(t, chat.lastUser, strings.Join(strings.Fields(long), " "))
	assert.Contains(t, chat.lastUser, "[0] verylongword")
}
