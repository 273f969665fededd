package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/taglearn/taglearn/pkg/taglearn/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu      sync.RWMutex
	weights map[string]float64
	runs    map[string]store.Run
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		weights: make(map[string]float64),
		runs:    make(map[string]store.Run),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveWeights replaces the weight table.
func (s *Store) SaveWeights(ctx context.Context, weights map[string]float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.weights = make(map[string]float64, len(weights))
	for tag, w := range weights {
		s.weights[tag] = w
	}
	return nil
}

// LoadWeights returns a copy of the weight table.
func (s *Store) LoadWeights(ctx context.Context) (map[string]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]float64, len(s.weights))
	for tag, w := range s.weights {
		out[tag] = w
	}
	return out, nil
}

// SaveRun stores a run record keyed by ID.
func (s *Store) SaveRun(ctx context.Context, r store.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[r.ID] = copyRun(r)
	return nil
}

// GetRun returns a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (store.Run, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if r, ok := s.runs[id]; ok {
		return copyRun(r), true, nil
	}
	return store.Run{}, false, nil
}

// ListRuns returns run summaries, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]store.RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	summaries := make([]store.RunSummary, 0, len(s.runs))
	for _, r := range s.runs {
		summaries = append(summaries, r.Summarize())
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].StartedAt.After(summaries[j].StartedAt)
	})
	if len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, nil
}

func copyRun(r store.Run) store.Run {
	out := store.Run{
		ID:        r.ID,
		StartedAt: r.StartedAt,
		Weights:   make(map[string]float64, len(r.Weights)),
	}
	for tag, w := range r.Weights {
		out.Weights[tag] = w
	}
	out.Tags = make([]store.DocTags, len(r.Tags))
	for i, doc := range r.Tags {
		out.Tags[i] = store.DocTags{
			Filename: doc.Filename,
			Tags:     append([]store.Tag(nil), doc.Tags...),
		}
	}
	out.Feedback = make([]store.DocFeedback, len(r.Feedback))
	for i, doc := range r.Feedback {
		out.Feedback[i] = store.DocFeedback{
			Filename: doc.Filename,
			Records:  append([]store.FeedbackEntry(nil), doc.Records...),
		}
	}
	return out
}
