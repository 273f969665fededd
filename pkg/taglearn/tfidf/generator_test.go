package tfidf

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/taglearn/taglearn/pkg/taglearn/internalerr"
)

func buildStats(docs []Document) *CorpusStats {
	stats := NewCorpusStats()
	for _, d := range docs {
		stats.Add(d.Keys, nil)
	}
	return stats
}

func TestNewGeneratorRejectsNonPositiveTopK(t *testing.T) {
	for _, topK := range []int{0, -1} {
		if _, err := NewGenerator(topK); !errors.Is(err, internalerr.ErrInvalidConfig) {
			t.Errorf("NewGenerator(%d) should fail with ErrInvalidConfig, got %v", topK, err)
		}
	}
}

func TestGeneratorTopKAndOrdering(t *testing.T) {
	gen, err := NewGenerator(2)
	if err != nil {
		t.Fatal(err)
	}

	docs := []Document{
		{Name: "a.txt", Keys: []string{"go", "go", "go", "rust", "rust", "python"}},
		{Name: "b.txt", Keys: []string{"java"}},
	}
	stats := buildStats(docs)

	results, err := gen.Generate(context.Background(), docs, stats, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(results) != 2 {
		t.Fatalf("Expected 2 documents, got %d", len(results))
	}
	if results[0].Filename != "a.txt" || results[1].Filename != "b.txt" {
		t.Errorf("Output order should match input order, got %s, %s", results[0].Filename, results[1].Filename)
	}

	tags := results[0].Tags
	if len(tags) != 2 {
		t.Fatalf("Expected top_k=2 tags, got %d", len(tags))
	}
	if tags[0].Tag != "go" || tags[1].Tag != "rust" {
		t.Errorf("Expected [go rust], got [%s %s]", tags[0].Tag, tags[1].Tag)
	}
	for _, tag := range tags {
		if tag.Raw < 0 || tag.Adjusted < 0 {
			t.Errorf("Scores must be non-negative: %+v", tag)
		}
	}
	if tags[0].Adjusted < tags[1].Adjusted {
		t.Error("Tags must be sorted by adjusted score descending")
	}
}

func TestGeneratorAppliesWeightsExactly(t *testing.T) {
	gen, err := NewGenerator(5)
	if err != nil {
		t.Fatal(err)
	}

	docs := []Document{
		{Name: "a.txt", Keys: []string{"go", "rust"}},
		{Name: "b.txt", Keys: []string{"python"}},
	}
	stats := buildStats(docs)
	weights := Weights{"go": 0.5, "rust": 1.3}

	results, err := gen.Generate(context.Background(), docs, stats, weights)
	if err != nil {
		t.Fatal(err)
	}

	for _, tag := range results[0].Tags {
		want := tag.Raw * weights.Get(tag.Tag)
		if tag.Adjusted != want {
			t.Errorf("adjusted(%s) = %v, want raw × weight = %v", tag.Tag, tag.Adjusted, want)
		}
	}

	// Unseen tag defaults to weight 1.0.
	python := results[1].Tags[0]
	if python.Adjusted != python.Raw {
		t.Errorf("Unweighted tag must keep its raw score: %+v", python)
	}
}

func TestWeightsGetDefaults(t *testing.T) {
	var nilWeights Weights
	if got := nilWeights.Get("anything"); got != 1.0 {
		t.Errorf("nil Weights.Get = %v, want 1.0", got)
	}

	w := Weights{"go": 0.8}
	if got := w.Get("Go"); got != 0.8 {
		t.Errorf("Weights.Get should be case-insensitive, got %v", got)
	}
	if got := w.Get("rust"); got != 1.0 {
		t.Errorf("Unseen tag weight = %v, want 1.0", got)
	}
}

func TestGeneratorTieBreaks(t *testing.T) {
	gen, err := NewGenerator(3)
	if err != nil {
		t.Fatal(err)
	}

	// "go" appears twice with weight 0.5; "rust" once with weight 1.0.
	// Adjusted scores tie exactly (2/3·idf·0.5 == 1/3·idf), so the raw
	// score must break the tie in favor of "go".
	docs := []Document{
		{Name: "a.txt", Keys: []string{"go", "go", "rust"}},
		{Name: "b.txt", Keys: []string{"python"}},
	}
	stats := buildStats(docs)

	results, err := gen.Generate(context.Background(), docs, stats, Weights{"go": 0.5})
	if err != nil {
		t.Fatal(err)
	}

	tags := results[0].Tags
	if tags[0].Adjusted != tags[1].Adjusted {
		t.Fatalf("Test premise broken: expected an exact adjusted tie, got %v vs %v", tags[0].Adjusted, tags[1].Adjusted)
	}
	if tags[0].Tag != "go" {
		t.Errorf("Raw score should break adjusted ties, got %q first", tags[0].Tag)
	}

	// Full ties fall back to lexicographic tag order.
	docs = []Document{
		{Name: "a.txt", Keys: []string{"zebra", "apple"}},
		{Name: "b.txt", Keys: []string{"other"}},
	}
	results, err = gen.Generate(context.Background(), docs, buildStats(docs), nil)
	if err != nil {
		t.Fatal(err)
	}
	tags = results[0].Tags
	if tags[0].Tag != "apple" || tags[1].Tag != "zebra" {
		t.Errorf("Lexicographic tie-break failed: %v", tags)
	}
}

func TestGeneratorEmptyDocument(t *testing.T) {
	gen, err := NewGenerator(5)
	if err != nil {
		t.Fatal(err)
	}

	docs := []Document{
		{Name: "empty.txt", Keys: nil},
		{Name: "full.txt", Keys: []string{"content"}},
	}
	stats := buildStats(docs)

	results, err := gen.Generate(context.Background(), docs, stats, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results[0].Tags) != 0 {
		t.Errorf("Empty document should yield an empty tag list, got %v", results[0].Tags)
	}
	if len(results[1].Tags) != 1 {
		t.Errorf("Non-empty document should still be tagged, got %v", results[1].Tags)
	}
}

func TestGeneratorSingleDocumentCorpus(t *testing.T) {
	gen, err := NewGenerator(3)
	if err != nil {
		t.Fatal(err)
	}

	docs := []Document{{Name: "only.txt", Keys: []string{"solo", "solo", "term"}}}
	stats := buildStats(docs)

	results, err := gen.Generate(context.Background(), docs, stats, nil)
	if err != nil {
		t.Fatal(err)
	}

	for _, tag := range results[0].Tags {
		if math.IsNaN(tag.Raw) || math.IsInf(tag.Raw, 0) || tag.Raw <= 0 {
			t.Errorf("Single-doc corpus must produce positive finite scores, got %+v", tag)
		}
	}
	if results[0].Tags[0].Tag != "solo" {
		t.Errorf("Most frequent term should rank first, got %q", results[0].Tags[0].Tag)
	}
}

func TestGeneratorIdempotent(t *testing.T) {
	gen, err := NewGenerator(4)
	if err != nil {
		t.Fatal(err)
	}

	docs := []Document{
		{Name: "a.txt", Keys: []string{"alpha", "beta", "gamma", "alpha"}},
		{Name: "b.txt", Keys: []string{"beta", "delta"}},
	}
	stats := buildStats(docs)
	weights := Weights{"alpha": 1.1, "delta": 0.5}

	first, err := gen.Generate(context.Background(), docs, stats, weights)
	if err != nil {
		t.Fatal(err)
	}
	second, err := gen.Generate(context.Background(), docs, stats, weights)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("Generation must be deterministic for identical inputs")
	}
}
