package learn

import (
	"fmt"
	"sort"
	"strings"

	"github.com/taglearn/taglearn/pkg/taglearn/feedback"
	"github.com/taglearn/taglearn/pkg/taglearn/internalerr"
)

// Bucket maps an approval-rate floor to a multiplicative tag weight. A tag
// falls into the first bucket whose MinRate it reaches, so boundaries are
// inclusive on the lower bound.
type Bucket struct {
	MinRate float64 `yaml:"min_rate"`
	Weight  float64 `yaml:"weight"`
}

// DefaultBuckets returns the standard approval-rate → weight mapping:
// ≥80% strong boost, ≥50% mild boost, ≥20% mild penalty, below that a
// strong penalty.
func DefaultBuckets() []Bucket {
	return []Bucket{
		{MinRate: 0.80, Weight: 1.3},
		{MinRate: 0.50, Weight: 1.1},
		{MinRate: 0.20, Weight: 0.8},
		{MinRate: 0.00, Weight: 0.5},
	}
}

// TagStats aggregates one tag's feedback counts across a run.
type TagStats struct {
	Approved int
	Rejected int
}

// ApprovalRate returns approved / total for the tag.
func (s TagStats) ApprovalRate() float64 {
	total := s.Approved + s.Rejected
	if total == 0 {
		return 0.0
	}
	return float64(s.Approved) / float64(total)
}

// Learner derives per-tag weights from feedback records.
type Learner struct {
	buckets []Bucket
}

// NewLearner creates a learner with the given buckets. Buckets must be
// non-empty, hold positive weights, and the last bucket must reach down to
// rate zero so every tag lands somewhere.
func NewLearner(buckets []Bucket) (*Learner, error) {
	if len(buckets) == 0 {
		return nil, fmt.Errorf("%w: at least one learning bucket required", internalerr.ErrInvalidConfig)
	}

	sorted := make([]Bucket, len(buckets))
	copy(sorted, buckets)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].MinRate > sorted[j].MinRate
	})

	for _, b := range sorted {
		if b.Weight <= 0 {
			return nil, fmt.Errorf("%w: bucket weights must be positive, got %.2f", internalerr.ErrInvalidConfig, b.Weight)
		}
	}
	if sorted[len(sorted)-1].MinRate > 0 {
		return nil, fmt.Errorf("%w: lowest bucket must cover approval rate 0", internalerr.ErrInvalidConfig)
	}

	return &Learner{buckets: sorted}, nil
}

// Stats groups feedback by tag across all documents of a run and counts
// approvals and rejections. Tags are lowercased so the same tag from
// different documents aggregates into one entry.
func (l *Learner) Stats(docs []feedback.DocumentFeedback) map[string]TagStats {
	stats := make(map[string]TagStats)
	for _, doc := range docs {
		for _, rec := range doc.Records {
			tag := strings.ToLower(rec.Tag)
			s := stats[tag]
			if rec.Status == feedback.StatusApproved {
				s.Approved++
			} else {
				s.Rejected++
			}
			stats[tag] = s
		}
	}
	return stats
}

// Learn produces the weight table for every tag that appeared in the run's
// feedback. The returned table is complete: it replaces, rather than
// merges into, any previously persisted table.
func (l *Learner) Learn(docs []feedback.DocumentFeedback) map[string]float64 {
	stats := l.Stats(docs)

	weights := make(map[string]float64, len(stats))
	for tag, s := range stats {
		weights[tag] = l.weightFor(s.ApprovalRate())
	}
	return weights
}

// weightFor maps an approval rate onto the first bucket whose floor it
// reaches.
func (l *Learner) weightFor(rate float64) float64 {
	for _, b := range l.buckets {
		if rate >= b.MinRate {
			return b.Weight
		}
	}
	// Unreachable: NewLearner guarantees the last bucket covers rate 0.
	return l.buckets[len(l.buckets)-1].Weight
}
