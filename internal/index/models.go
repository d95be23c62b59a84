package index

// Index holds the parallel arrays persisted for one document: chunk texts,
// 1-based page tags, and embedding vectors. The three slices always have
// equal length; an empty document is three empty slices, not an error.
type Index struct {
	Texts   []string    `json:"texts"`
	Pages   []int       `json:"pages"`
	Vectors [][]float32 `json:"embeddings"`
}

// Len returns the number of indexed chunks.
func (ix *Index) Len() int {
	return len(ix.Texts)
}

// Empty reports whether the index holds no chunks.
func (ix *Index) Empty() bool {
	return ix.Len() == 0
}
