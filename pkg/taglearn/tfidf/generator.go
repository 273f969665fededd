package tfidf

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/taglearn/taglearn/pkg/taglearn/internalerr"
)

// DefaultTopK is the number of tags generated per document when the caller
// does not override it.
const DefaultTopK = 5

// Document is a generator input: a named, normalized term-key sequence.
type Document struct {
	Name string
	Keys []string
}

// TagScore is one generated tag for a document. Raw is the plain TF-IDF
// score; Adjusted is Raw multiplied by the learned weight for the tag
// (1.0 when the tag has no history). Term is the grouping key behind the
// display form, used by downstream signal computation.
type TagScore struct {
	Tag      string
	Term     string
	Raw      float64
	Adjusted float64
}

// DocumentTags holds the ordered tags generated for one document.
type DocumentTags struct {
	Filename string
	Tags     []TagScore
}

// Weights is the learned tag → multiplier table. A nil table behaves as
// all-defaults.
type Weights map[string]float64

// Get returns the weight for a tag, defaulting to 1.0 for unseen tags.
func (w Weights) Get(tag string) float64 {
	if w == nil {
		return 1.0
	}
	if v, ok := w[strings.ToLower(tag)]; ok {
		return v
	}
	return 1.0
}

// Generator extracts the top-K TF-IDF tags per document.
type Generator struct {
	topK int
}

// NewGenerator creates a generator. TopK must be positive.
func NewGenerator(topK int) (*Generator, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive, got %d", internalerr.ErrInvalidConfig, topK)
	}
	return &Generator{topK: topK}, nil
}

// Generate scores every candidate term of every document against the shared
// corpus stats and returns at most TopK tags per document, ordered by
// adjusted score descending. Documents are scored concurrently; output
// order matches input order. An empty document yields an empty tag list.
func (g *Generator) Generate(ctx context.Context, docs []Document, stats *CorpusStats, weights Weights) ([]DocumentTags, error) {
	results := make([]DocumentTags, len(docs))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))

	for i, doc := range docs {
		i, doc := i, doc
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = DocumentTags{
				Filename: doc.Name,
				Tags:     g.scoreDoc(doc, stats, weights),
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// scoreDoc computes tf·idf per unique term key of one document, applies the
// learned weight, sorts, and truncates to TopK.
func (g *Generator) scoreDoc(doc Document, stats *CorpusStats, weights Weights) []TagScore {
	if len(doc.Keys) == 0 {
		return nil
	}

	counts := make(map[string]int, len(doc.Keys))
	for _, k := range doc.Keys {
		counts[k]++
	}

	docLen := float64(len(doc.Keys))
	scored := make([]TagScore, 0, len(counts))
	for key, count := range counts {
		tf := float64(count) / docLen
		raw := tf * stats.IDF(key)
		tag := stats.Display(key)
		scored = append(scored, TagScore{
			Tag:      tag,
			Term:     key,
			Raw:      raw,
			Adjusted: raw * weights.Get(tag),
		})
	}

	// Adjusted descending, ties by raw descending then tag ascending so
	// repeated runs produce identical output.
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Adjusted != scored[j].Adjusted {
			return scored[i].Adjusted > scored[j].Adjusted
		}
		if scored[i].Raw != scored[j].Raw {
			return scored[i].Raw > scored[j].Raw
		}
		return scored[i].Tag < scored[j].Tag
	})

	if len(scored) > g.topK {
		scored = scored[:g.topK]
	}
	return scored
}
