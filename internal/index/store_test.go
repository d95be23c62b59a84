package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err, "Failed to create store")
	return store
}

func TestIndexRoundTrip(t *testing.T) {
	store := setupTestStore(t)

	ix := &Index{
		Texts:   []string{"first chunk", "second chunk"},
		Pages:   []int{1, 3},
		Vectors: [][]float32{{0.1, 0.2}, {0.3, 0.4}},
	}

	err := store.Build("doc-1", ix)
	require.NoError(t, err, "Failed to build index")

	loaded, err := store.Load("doc-1")
	require.NoError(t, err, "Failed to load index")

	assert.Equal(t, ix.Texts, loaded.Texts)
	assert.Equal(t, ix.Pages, loaded.Pages)
	assert.Equal(t, ix.Vectors, loaded.Vectors)
	assert.Equal(t, 2, loaded.Len())
}

func TestLoadMissingReturnsEmpty(t *testing.T) {
	store := setupTestStore(t)

	loaded, err := store.Load("never-built")
	require.NoError(t, err, "Missing index must not be an error")

	assert.True(t, loaded.Empty())
	assert.NotNil(t, loaded.Texts)
	assert.NotNil(t, loaded.Pages)
	assert.NotNil(t, loaded.Vectors)
}

func TestBuildEmptyDocument(t *testing.T) {
	store := setupTestStore(t)

	err := store.Build("empty-doc", &Index{})
	require.NoError(t, err)

	loaded, err := store.Load("empty-doc")
	require.NoError(t, err)
	assert.True(t, loaded.Empty())
	assert.Len(t, loaded.Texts, 0)
	assert.Len(t, loaded.Pages, 0)
	assert.Len(t, loaded.Vectors, 0)
}

func TestBuildReplacesPriorIndex(t *testing.T) {
	store := setupTestStore(t)

	first := &Index{
		Texts:   []string{"old a", "old b", "old c"},
		Pages:   []int{1, 1, 2},
		Vectors: [][]float32{{1}, {2}, {3}},
	}
	require.NoError(t, store.Build("doc", first))

	second := &Index{
		Texts:   []string{"new"},
		Pages:   []int{5},
		Vectors: [][]float32{{9}},
	}
	require.NoError(t, store.Build("doc", second))

	loaded, err := store.Load("doc")
	require.NoError(t, err)
	assert.Equal(t, second.Texts, loaded.Texts)
	assert.Equal(t, second.Pages, loaded.Pages)
	assert.Equal(t, second.Vectors, loaded.Vectors)
}

func TestBuildRejectsLengthMismatch(t *testing.T) {
	store := setupTestStore(t)

	err := store.Build("bad", &Index{
		Texts:   []string{"a", "b"},
		Pages:   []int{1},
		Vectors: [][]float32{{1}, {2}},
	})
	assert.ErrorIs(t, err, ErrLengthMismatch)
	assert.False(t, store.Exists("bad"))
}

func TestInvalidDocIDRejected(t *testing.T) {
	store := setupTestStore(t)

	for _, id := range []string{"", "../escape", "a/b", `a\b`} {
		err := store.Build(id, &Index{})
		assert.ErrorIs(t, err, ErrInvalidDocID, "id %q", id)

		_, err = store.Load(id)
		assert.ErrorIs(t, err, ErrInvalidDocID, "id %q", id)
	}
}

func TestNoTempFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Build("doc", &Index{
		Texts:   []string{"x"},
		Pages:   []int{1},
		Vectors: [][]float32{{1}},
	}))

	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches, "Build must not leave temp files")
}

func TestDeleteAndList(t *testing.T) {
	store := setupTestStore(t)

	require.NoError(t, store.Build("a", &Index{}))
	require.NoError(t, store.Build("b", &Index{}))

	ids, err := store.List()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, ids)

	require.NoError(t, store.Delete("a"))
	assert.False(t, store.Exists("a"))
	assert.True(t, store.Exists("b"))

	// Deleting a missing index is not an error.
	require.NoError(t, store.Delete("a"))
}

func TestLoadCorruptIndexFails(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "corrupt.json"), []byte("{not json"), 0o644))

	_, err = store.Load("corrupt")
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	store := setupTestStore(t)
	assert.NoError(t, store.Health(context.Background()))
}
