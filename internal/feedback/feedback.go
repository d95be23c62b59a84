// Package feedback persists lightweight relevance feedback as append-only
// JSONL records, for later retrieval tuning.
package feedback

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Record is one feedback entry for a document query.
type Record struct {
	DocID          string    `json:"doc_id"`
	Query          string    `json:"query"`
	PositiveChunks []int     `json:"positive_chunk_ids,omitempty"`
	NegativeChunks []int     `json:"negative_chunk_ids,omitempty"`
	AnswerQuality  int       `json:"answer_quality,omitempty"` // 1-5, 0 if unrated
	Notes          string    `json:"notes,omitempty"`
	Timestamp      time.Time `json:"ts"`
}

// Store appends feedback records to a single JSONL file.
type Store struct {
	mu   sync.Mutex
	path string
}

// New creates a feedback store writing to path, creating parent directories
// as needed.
func New(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create feedback dir: %w", err)
	}
	return &Store{path: path}, nil
}

// Append writes one record. A zero Timestamp is stamped with the current time.
func (s *Store) Append(rec Record) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode feedback: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open feedback file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write feedback: %w", err)
	}
	return nil
}
