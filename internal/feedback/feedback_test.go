package feedback

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppend_WritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedback", "relevance.jsonl")
	store, err := New(path)
	require.NoError(t, err)

	require.NoError(t, store.Append(Record{
		DocID:          "doc-1",
		Query:          "termination clause",
		PositiveChunks: []int{0, 2},
		AnswerQuality:  4,
	}))
	require.NoError(t, store.Append(Record{DocID: "doc-2", Query: "parties"}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec Record
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		records = append(records, rec)
	}
	require.NoError(t, scanner.Err())

	require.Len(t, records, 2)
	assert.Equal(t, "doc-1", records[0].DocID)
	assert.Equal(t, []int{0, 2}, records[0].PositiveChunks)
	assert.Equal(t, 4, records[0].AnswerQuality)
	assert.False(t, records[0].Timestamp.IsZero(), "Timestamp must be stamped")
	assert.Equal(t, "doc-2", records[1].DocID)
}
