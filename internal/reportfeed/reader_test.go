package reportfeed

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestListDocuments_SortedJSONOnly(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.json", "[]")
	writeFile(t, dir, "a.json", "[]")
	writeFile(t, dir, "notes.txt", "ignore me")

	paths, err := ListDocuments(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(paths))
	}
	if filepath.Base(paths[0]) != "a.json" || filepath.Base(paths[1]) != "b.json" {
		t.Errorf("expected sorted a.json, b.json, got %v", paths)
	}
}

func TestListDocuments_EmptyDirIsError(t *testing.T) {
	_, err := ListDocuments(t.TempDir())
	if !errors.Is(err, ErrNoDocuments) {
		t.Fatalf("expected ErrNoDocuments, got %v", err)
	}
}

func TestReadDocument_HappyPath(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "reports.json", `[
		{"Ticker": "COP US", "Rating": "Buy"},
		{"Ticker": "XOM US"}
	]`)

	doc, err := ReadDocument(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(doc.Records))
	}
	if doc.Records[0]["Ticker"] != "COP US" {
		t.Errorf("unexpected first record: %v", doc.Records[0])
	}
}

func TestReadDocument_NonArrayTopLevel(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.json", `{"Ticker": "COP US"}`)

	_, err := ReadDocument(path)
	if !errors.Is(err, ErrInvalidDocumentShape) {
		t.Fatalf("expected ErrInvalidDocumentShape, got %v", err)
	}
}

func TestReadDocument_Garbage(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "garbage.json", `{{{not json`)

	_, err := ReadDocument(path)
	if err == nil {
		t.Fatal("expected error for unparseable document")
	}
	if errors.Is(err, ErrInvalidDocumentShape) {
		t.Errorf("garbage should be a parse error, not a shape error: %v", err)
	}
}
