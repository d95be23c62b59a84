// Package index persists per-document embedding indexes as JSON artifacts,
// one file per document identifier, replaced atomically on rebuild.
package index

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store maps document identifiers to their persisted Index.
type Store struct {
	dir string
}

// NewStore creates a file-backed index store rooted at dir, creating the
// directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Health verifies the store directory is reachable.
func (s *Store) Health(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrStoreUnavailable, s.dir)
	}
	return nil
}

// Build persists ix as the full replacement index for docID. The artifact is
// written to a temp file and renamed into place so a concurrent Load never
// observes a half-written index. Any prior index for docID is discarded.
func (s *Store) Build(docID string, ix *Index) error {
	path, err := s.indexPath(docID)
	if err != nil {
		return err
	}
	if len(ix.Texts) != len(ix.Pages) || len(ix.Texts) != len(ix.Vectors) {
		return fmt.Errorf("%w: %d texts, %d pages, %d vectors",
			ErrLengthMismatch, len(ix.Texts), len(ix.Pages), len(ix.Vectors))
	}

	data, err := json.Marshal(normalized(ix))
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, docID+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp index: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp index: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace index: %w", err)
	}
	return nil
}

// Load returns the persisted index for docID. A missing document yields an
// empty index, never an error.
func (s *Store) Load(docID string) (*Index, error) {
	path, err := s.indexPath(docID)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Index{Texts: []string{}, Pages: []int{}, Vectors: [][]float32{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}

	var ix Index
	if err := json.Unmarshal(data, &ix); err != nil {
		return nil, fmt.Errorf("decode index %s: %w", docID, err)
	}
	if len(ix.Texts) != len(ix.Pages) || len(ix.Texts) != len(ix.Vectors) {
		return nil, fmt.Errorf("index %s: %w", docID, ErrLengthMismatch)
	}
	return &ix, nil
}

// Exists reports whether an index artifact is present for docID.
func (s *Store) Exists(docID string) bool {
	path, err := s.indexPath(docID)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Delete removes the index artifact for docID. Deleting a missing index is
// not an error.
func (s *Store) Delete(docID string) error {
	path, err := s.indexPath(docID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete index: %w", err)
	}
	return nil
}

// List returns the identifiers of all persisted indexes.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list indexes: %w", err)
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	return ids, nil
}

// indexPath resolves the artifact path for docID, rejecting identifiers that
// would escape the store directory.
func (s *Store) indexPath(docID string) (string, error) {
	if docID == "" || strings.ContainsAny(docID, `/\`) || docID != filepath.Base(docID) {
		return "", fmt.Errorf("%w: %q", ErrInvalidDocID, docID)
	}
	return filepath.Join(s.dir, docID+".json"), nil
}

// normalized replaces nil slices so the artifact always carries three arrays.
func normalized(ix *Index) *Index {
	out := &Index{Texts: ix.Texts, Pages: ix.Pages, Vectors: ix.Vectors}
	if out.Texts == nil {
		out.Texts = []string{}
	}
	if out.Pages == nil {
		out.Pages = []int{}
	}
	if out.Vectors == nil {
		out.Vectors = [][]float32{}
	}
	return out
}
