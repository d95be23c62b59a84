// Package docstore manages the on-disk registry of uploaded PDF documents
// and extracts their per-page text.
package docstore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
)

var ErrDocumentNotFound = errors.New("document not found")

// Document describes a registered PDF file.
type Document struct {
	ID        string
	Filename  string
	Size      int64
	CreatedAt time.Time
	Path      string
}

// Store is a directory-backed document registry. Files are stored as
// "<uuid>_<original-name>" so the identifier is recoverable from the name.
type Store struct {
	dir string
}

// New creates a document store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create document dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save streams r into the store under a fresh identifier and returns the
// registered document.
func (s *Store) Save(filename string, r io.Reader) (*Document, error) {
	docID := uuid.New().String()
	safeName := sanitizeFilename(filename)

	dest := filepath.Join(s.dir, docID+"_"+safeName)
	out, err := os.Create(dest)
	if err != nil {
		return nil, fmt.Errorf("create document file: %w", err)
	}

	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		os.Remove(dest)
		return nil, fmt.Errorf("write document file: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dest)
		return nil, fmt.Errorf("close document file: %w", err)
	}

	info, err := os.Stat(dest)
	if err != nil {
		return nil, fmt.Errorf("stat document file: %w", err)
	}

	return &Document{
		ID:        docID,
		Filename:  safeName,
		Size:      info.Size(),
		CreatedAt: info.ModTime().UTC(),
		Path:      dest,
	}, nil
}

// List returns all registered documents, most recent first.
func (s *Store) List() ([]Document, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	var docs []Document
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		id, filename, ok := strings.Cut(name, "_")
		if !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		docs = append(docs, Document{
			ID:        id,
			Filename:  filename,
			Size:      info.Size(),
			CreatedAt: info.ModTime().UTC(),
			Path:      filepath.Join(s.dir, name),
		})
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	return docs, nil
}

// GetPath resolves the file path for docID. Returns ErrDocumentNotFound if no
// file with that identifier prefix exists.
func (s *Store) GetPath(docID string) (string, error) {
	if docID == "" || strings.ContainsAny(docID, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrDocumentNotFound, docID)
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return "", fmt.Errorf("resolve document: %w", err)
	}
	// Literal prefix match so identifiers with glob metacharacters
	// cannot match other documents.
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), docID+"_") {
			return filepath.Join(s.dir, e.Name()), nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrDocumentNotFound, docID)
}

// GetPages extracts per-page text from the document's PDF, one string per
// page. A page whose extraction fails contributes an empty string rather than
// failing the whole document.
func (s *Store) GetPages(docID string) ([]string, error) {
	path, err := s.GetPath(docID)
	if err != nil {
		return nil, err
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}

// Delete removes the document file for docID.
func (s *Store) Delete(docID string) error {
	path, err := s.GetPath(docID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// sanitizeFilename strips path separators from client-supplied names.
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, `\`, "_")
	if name == "" {
		name = "document.pdf"
	}
	return name
}
