package tfidf

import "math"

// idfFloor is the minimum inverse-document-frequency. It keeps scores
// positive and finite when a term appears in every document or when the
// corpus holds a single document.
const idfFloor = 0.01

// CorpusStats aggregates corpus-wide term statistics. It is computed once
// over the whole corpus before per-document scoring begins and is read-only
// afterwards, so concurrent scorers can share it without locking.
type CorpusStats struct {
	totalDocs int
	df        map[string]int
	forms     map[string]map[string]int
}

// NewCorpusStats creates an empty stats accumulator.
func NewCorpusStats() *CorpusStats {
	return &CorpusStats{
		df:    make(map[string]int),
		forms: make(map[string]map[string]int),
	}
}

// Add consumes one document's term keys and surface form counts.
func (s *CorpusStats) Add(keys []string, forms map[string]map[string]int) {
	s.totalDocs++

	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		s.df[k]++
	}

	for key, surfaces := range forms {
		if s.forms[key] == nil {
			s.forms[key] = make(map[string]int)
		}
		for surface, count := range surfaces {
			s.forms[key][surface] += count
		}
	}
}

// TotalDocs returns the number of documents consumed.
func (s *CorpusStats) TotalDocs() int {
	return s.totalDocs
}

// DF returns the number of documents containing the given term key.
func (s *CorpusStats) DF(key string) int {
	return s.df[key]
}

// IDF returns ln(totalDocs/df) clamped to idfFloor. A term unseen by the
// stats (df == 0) also gets the floor rather than +Inf.
func (s *CorpusStats) IDF(key string) float64 {
	df := s.df[key]
	if s.totalDocs == 0 || df == 0 {
		return idfFloor
	}
	idf := math.Log(float64(s.totalDocs) / float64(df))
	if idf < idfFloor {
		idf = idfFloor
	}
	return idf
}

// Display returns the tag string shown for a term key: the most frequent
// surface form across the corpus, ties broken lexicographically so output
// is deterministic. Falls back to the key itself when no form was recorded.
func (s *CorpusStats) Display(key string) string {
	surfaces := s.forms[key]
	if len(surfaces) == 0 {
		return key
	}

	best := ""
	bestCount := -1
	for surface, count := range surfaces {
		if count > bestCount || (count == bestCount && surface < best) {
			best = surface
			bestCount = count
		}
	}
	return best
}
