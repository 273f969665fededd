package feedback

import "strings"

// headerScanLines bounds how deep the header heuristics look.
const headerScanLines = 10

// PositionScores maps where a tag first appears in a document to a signal
// value. Early, structurally prominent occurrences (title, headers) signal
// more salient tags than late body mentions.
type PositionScores struct {
	Title          float64 `yaml:"title"`
	Header         float64 `yaml:"header"`
	FirstParagraph float64 `yaml:"first_paragraph"`
	Body           float64 `yaml:"body"`
	NotFound       float64 `yaml:"not_found"`
}

// DefaultPositionScores returns the standard position bucket values.
func DefaultPositionScores() PositionScores {
	return PositionScores{
		Title:          1.0,
		Header:         0.8,
		FirstParagraph: 0.6,
		Body:           0.4,
		NotFound:       0.0,
	}
}

// Score locates the tag in the raw document text and returns the bucket
// value for the most prominent place it appears. Matching is
// case-insensitive substring search, so multi-word tags work too.
func (p PositionScores) Score(tag, rawText string) float64 {
	tag = strings.ToLower(tag)
	if tag == "" || rawText == "" {
		return p.NotFound
	}

	lower := strings.ToLower(rawText)
	lines := strings.Split(rawText, "\n")

	// Title: the first line.
	if len(lines) > 0 && strings.Contains(strings.ToLower(lines[0]), tag) {
		return p.Title
	}

	// Headers: markdown headings, short all-caps lines, and short
	// "Label:" lines near the top of the document.
	scan := len(lines)
	if scan > headerScanLines {
		scan = headerScanLines
	}
	for _, line := range lines[:scan] {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || !strings.Contains(strings.ToLower(trimmed), tag) {
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			return p.Header
		}
		if trimmed == strings.ToUpper(trimmed) && trimmed != strings.ToLower(trimmed) && len(trimmed) < 50 {
			return p.Header
		}
		if len(trimmed) < 30 && strings.Contains(trimmed, ":") {
			return p.Header
		}
	}

	// First paragraph: the first substantial non-heading line.
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || len(trimmed) <= 20 {
			continue
		}
		if strings.Contains(strings.ToLower(trimmed), tag) {
			return p.FirstParagraph
		}
		break
	}

	if strings.Contains(lower, tag) {
		return p.Body
	}

	return p.NotFound
}
