package feedback

import (
	"context"
	"fmt"
	"math"

	"github.com/taglearn/taglearn/pkg/taglearn/internalerr"
	"github.com/taglearn/taglearn/pkg/taglearn/tfidf"
)

// DefaultApprovalThreshold is the composite relevance cutoff for approval.
const DefaultApprovalThreshold = 0.6

// weightSumTolerance absorbs float noise when validating that the signal
// weights sum to 1.0.
const weightSumTolerance = 1e-9

// SignalWeights blends the three relevance signals. The weights must sum
// to 1.0.
type SignalWeights struct {
	TFIDF     float64 `yaml:"tfidf"`
	Frequency float64 `yaml:"frequency"`
	Position  float64 `yaml:"position"`
}

// DefaultSignalWeights returns the standard 0.5/0.2/0.3 blend.
func DefaultSignalWeights() SignalWeights {
	return SignalWeights{TFIDF: 0.5, Frequency: 0.2, Position: 0.3}
}

// Validate checks that the weights sum to 1.0 and are non-negative.
func (w SignalWeights) Validate() error {
	if w.TFIDF < 0 || w.Frequency < 0 || w.Position < 0 {
		return fmt.Errorf("%w: signal weights must be non-negative", internalerr.ErrInvalidConfig)
	}
	sum := w.TFIDF + w.Frequency + w.Position
	if math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("%w: signal weights must sum to 1.0, got %.4f", internalerr.ErrInvalidConfig, sum)
	}
	return nil
}

// Simulator is a deterministic stand-in for human feedback. It scores each
// tag from the same statistical signals used during generation and
// classifies it against the approval threshold. No randomness, no hidden
// state: identical inputs always produce identical records.
type Simulator struct {
	weights   SignalWeights
	threshold float64
	positions PositionScores
}

// NewSimulator creates a simulator and fails fast when the signal weights
// do not sum to 1.0.
func NewSimulator(weights SignalWeights, threshold float64, positions PositionScores) (*Simulator, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return &Simulator{
		weights:   weights,
		threshold: threshold,
		positions: positions,
	}, nil
}

// Collect produces one feedback record per generated tag.
//
// composite = w.tfidf·adjusted + w.frequency·freqScore + w.position·posScore
//
// A tag is approved iff composite ≥ threshold.
func (s *Simulator) Collect(ctx context.Context, doc Document, tags []tfidf.TagScore) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(doc.Keys))
	for _, k := range doc.Keys {
		counts[k]++
	}

	records := make([]Record, 0, len(tags))
	for _, tag := range tags {
		freqScore := frequencyScore(counts[tag.Term])
		posScore := s.positions.Score(tag.Tag, doc.RawText)

		composite := s.weights.TFIDF*tag.Adjusted +
			s.weights.Frequency*freqScore +
			s.weights.Position*posScore

		status := StatusRejected
		if composite >= s.threshold {
			status = StatusApproved
		}

		records = append(records, Record{
			Tag:       tag.Tag,
			Status:    status,
			Relevance: composite,
		})
	}

	return records, nil
}

// frequencyScore maps an occurrence count into [0,1] with logarithmic
// scaling, so high counts see diminishing returns: log10(count+1), capped
// at 1.0 (count ≥ 9 saturates).
func frequencyScore(count int) float64 {
	if count <= 0 {
		return 0.0
	}
	return math.Min(1.0, math.Log10(float64(count)+1))
}
