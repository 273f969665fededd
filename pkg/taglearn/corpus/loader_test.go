package corpus

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/taglearn/taglearn/pkg/taglearn/internalerr"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadFolderAcceptsTextAndMarkup(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.txt", "plain text document")
	writeFile(t, dir, "a.md", "# Markdown Notes\nsome content")
	writeFile(t, dir, "c.HTML", "<html><body><p>page text</p></body></html>")
	writeFile(t, dir, "skipped.json", `{"not": "a document"}`)
	writeFile(t, dir, "skipped.pdf", "binary-ish")

	docs, err := LoadFolder(dir)
	if err != nil {
		t.Fatalf("LoadFolder: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("loaded %d documents, want 3: %+v", len(docs), docs)
	}

	// Sorted by filename.
	if docs[0].Name != "a.md" || docs[1].Name != "b.txt" || docs[2].Name != "c.HTML" {
		t.Fatalf("document order = [%s %s %s], want sorted by name",
			docs[0].Name, docs[1].Name, docs[2].Name)
	}
	if docs[1].Text != "plain text document" {
		t.Errorf("txt content = %q", docs[1].Text)
	}
	if docs[0].Text != "# Markdown Notes\nsome content" {
		t.Errorf("markdown must be kept verbatim, got %q", docs[0].Text)
	}
}

func TestLoadFolderStripsHTML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "page.html", `<html><head>
<title>Release Notes</title>
<style>body { color: red }</style>
<script>var tracked = true;</script>
</head><body>
<h1>Changes</h1>
<p>Faster indexing and lower memory use.</p>
</body></html>`)

	docs, err := LoadFolder(dir)
	if err != nil {
		t.Fatalf("LoadFolder: %v", err)
	}
	text := docs[0].Text
	for _, want := range []string{"Release Notes", "Changes", "Faster indexing"} {
		if !strings.Contains(text, want) {
			t.Errorf("extracted text missing %q:\n%s", want, text)
		}
	}
	for _, reject := range []string{"<p>", "color: red", "tracked"} {
		if strings.Contains(text, reject) {
			t.Errorf("extracted text kept markup %q:\n%s", reject, text)
		}
	}
	// Text nodes stay on separate lines so positional scoring still works.
	if !strings.Contains(text, "Changes\n") {
		t.Errorf("text nodes not newline-separated:\n%s", text)
	}
}

func TestLoadFolderSkipsSubdirectories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "doc.txt", "content")
	if err := os.Mkdir(filepath.Join(dir, "nested.txt"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	docs, err := LoadFolder(dir)
	if err != nil {
		t.Fatalf("LoadFolder: %v", err)
	}
	if len(docs) != 1 || docs[0].Name != "doc.txt" {
		t.Fatalf("loaded %+v, want only doc.txt", docs)
	}
}

func TestLoadFolderMissing(t *testing.T) {
	_, err := LoadFolder(filepath.Join(t.TempDir(), "absent"))
	if !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Fatalf("LoadFolder error = %v, want ErrInvalidConfig", err)
	}
}

func TestLoadFolderEmpty(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.json", "{}")

	_, err := LoadFolder(dir)
	if !errors.Is(err, internalerr.ErrNoDocuments) {
		t.Fatalf("LoadFolder error = %v, want ErrNoDocuments", err)
	}
}
