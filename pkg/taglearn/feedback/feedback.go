package feedback

import (
	"context"

	"github.com/taglearn/taglearn/pkg/taglearn/tfidf"
)

// Status classifies a tag's reception.
type Status string

// Tag feedback statuses
const (
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Record is the feedback for one (document, tag) pair.
type Record struct {
	Tag       string
	Status    Status
	Relevance float64
}

// DocumentFeedback holds the feedback records for one document's tags.
type DocumentFeedback struct {
	Filename string
	Records  []Record
}

// Document is the feedback view of a source document: the raw text for
// positional lookups and the normalized term-key sequence for frequency
// counts.
type Document struct {
	Name    string
	RawText string
	Keys    []string
}

// Collector scores and classifies a document's generated tags. The shipped
// implementation is the deterministic Simulator; a real human-feedback
// collector can replace it without changing the weight learner, which
// depends only on the Record shape. A collector may leave tags unrated —
// such tags simply keep the default weight.
type Collector interface {
	Collect(ctx context.Context, doc Document, tags []tfidf.TagScore) ([]Record, error)
}
