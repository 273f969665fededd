package store

import (
	"context"
	"time"
)

// Store persists the learned weight table between pipeline runs and keeps
// run records for inspection. The weight table follows a read-at-start,
// replace-at-end lifecycle: the generator loads it before scoring and the
// learner overwrites it whole after learning.
type Store interface {
	Close() error

	// Weights
	SaveWeights(ctx context.Context, weights map[string]float64) error
	LoadWeights(ctx context.Context) (map[string]float64, error)

	// Runs
	SaveRun(ctx context.Context, r Run) error
	GetRun(ctx context.Context, id string) (Run, bool, error)
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)
}

// Run is one complete pipeline invocation: the tags generated per document,
// the feedback synthesized for them, and the weight table learned from that
// feedback.
type Run struct {
	ID        string
	StartedAt time.Time
	Tags      []DocTags
	Feedback  []DocFeedback
	Weights   map[string]float64
}

// DocTags holds one document's generated tags in rank order.
type DocTags struct {
	Filename string
	Tags     []Tag
}

// Tag is a stored generated tag.
type Tag struct {
	Tag      string
	Term     string
	Raw      float64
	Adjusted float64
}

// DocFeedback holds one document's feedback records.
type DocFeedback struct {
	Filename string
	Records  []FeedbackEntry
}

// FeedbackEntry is a stored feedback record.
type FeedbackEntry struct {
	Tag       string
	Status    string
	Relevance float64
}

// RunSummary is a lightweight run listing entry.
type RunSummary struct {
	ID            string
	StartedAt     time.Time
	Documents     int
	TagsGenerated int
	Approved      int
	Rejected      int
}

// Summarize computes the summary counts for a run.
func (r Run) Summarize() RunSummary {
	s := RunSummary{
		ID:        r.ID,
		StartedAt: r.StartedAt,
		Documents: len(r.Tags),
	}
	for _, doc := range r.Tags {
		s.TagsGenerated += len(doc.Tags)
	}
	for _, doc := range r.Feedback {
		for _, rec := range doc.Records {
			if rec.Status == "approved" {
				s.Approved++
			} else {
				s.Rejected++
			}
		}
	}
	return s
}
