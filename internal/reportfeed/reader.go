// Package reportfeed enumerates and decodes the raw JSON report documents
// the import pipeline consumes. A document is a file whose top level is a
// JSON array of report records.
package reportfeed

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

var (
	// ErrNoDocuments means the report directory held no *.json files at all
	ErrNoDocuments = errors.New("no JSON documents found")
	// ErrInvalidDocumentShape means a document's top level is not an array.
	// This aborts that document, not just one record.
	ErrInvalidDocumentShape = errors.New("top-level JSON must be an array")
)

// Document is one decoded input file
type Document struct {
	Path    string
	Records []map[string]any
}

// ListDocuments returns the sorted paths of all *.json files in dir.
// An empty result is an error: a batch run with nothing to do is a
// misconfiguration, not a success.
func ListDocuments(dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list documents in %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoDocuments, dir)
	}
	sort.Strings(paths)
	return paths, nil
}

// ReadDocument decodes one document. A non-array top level yields
// ErrInvalidDocumentShape.
func ReadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		// Distinguish shape errors from garbage: valid JSON that is not an
		// array is a shape error.
		var probe any
		if json.Unmarshal(data, &probe) == nil {
			return nil, fmt.Errorf("%w in %s", ErrInvalidDocumentShape, path)
		}
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &Document{Path: path, Records: records}, nil
}
