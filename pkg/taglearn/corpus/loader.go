package corpus

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/taglearn/taglearn/pkg/taglearn/internalerr"
)

// Document is one loaded text document, immutable once loaded. Name is the
// filename, unique within a run.
type Document struct {
	Name string
	Text string
}

// acceptedExtensions lists the file types the loader picks up. Markup
// content is treated as plain text; HTML is reduced to its text nodes.
var acceptedExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".html": true,
	".htm":  true,
}

// LoadFolder reads all accepted files of a folder into documents, sorted by
// filename. Unreadable individual files are skipped with a warning; a
// missing folder or a folder yielding zero documents is a configuration
// error.
func LoadFolder(path string) ([]Document, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("%w: documents folder %s: %v", internalerr.ErrInvalidConfig, path, err)
	}

	var docs []Document
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !acceptedExtensions[ext] {
			continue
		}

		data, err := os.ReadFile(filepath.Join(path, entry.Name()))
		if err != nil {
			slog.Warn("skipping unreadable document", "file", entry.Name(), "error", err)
			continue
		}

		text := string(data)
		if ext == ".html" || ext == ".htm" {
			text = extractText(text)
		}

		docs = append(docs, Document{Name: entry.Name(), Text: text})
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: no documents found in %s", internalerr.ErrNoDocuments, path)
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].Name < docs[j].Name
	})
	return docs, nil
}

// extractText strips HTML markup, keeping only text node content.
func extractText(s string) string {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		// Fall back to the raw string if parsing fails
		return s
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				buf.WriteString(text)
				buf.WriteString("\n")
			}
		}
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.TrimSpace(buf.String())
}
