package ingest

import "testing"

func TestPhraseParserGreedyMatch(t *testing.T) {
	parser := NewPhraseParser([]PhraseEntry{
		{Canonical: "machine learning", Variants: []string{"statistical learning"}},
		{Canonical: "deep neural network"},
	})

	terms := []Term{
		{Surface: "deep", Key: "deep"},
		{Surface: "neural", Key: "neural"},
		{Surface: "network", Key: "network"},
		{Surface: "beats", Key: "beat"},
		{Surface: "machine", Key: "machin"},
		{Surface: "learning", Key: "learn"},
	}

	parsed := parser.Parse(terms)
	if len(parsed) != 3 {
		t.Fatalf("Expected 3 terms after phrase recognition, got %d: %v", len(parsed), parsed)
	}
	if parsed[0].Surface != "deep neural network" {
		t.Errorf("Longest match should win, got %q", parsed[0].Surface)
	}
	if parsed[2].Surface != "machine learning" || parsed[2].Key != "machine learning" {
		t.Errorf("Phrase key should equal the canonical form, got %+v", parsed[2])
	}
}

func TestPhraseParserVariantMapsToCanonical(t *testing.T) {
	parser := NewPhraseParser([]PhraseEntry{
		{Canonical: "machine learning", Variants: []string{"statistical learning"}},
	})

	terms := []Term{
		{Surface: "statistical", Key: "statist"},
		{Surface: "learning", Key: "learn"},
	}

	parsed := parser.Parse(terms)
	if len(parsed) != 1 || parsed[0].Surface != "machine learning" {
		t.Errorf("Variant should normalize to canonical, got %v", parsed)
	}
}

func TestPhraseParserSingleWordVariant(t *testing.T) {
	parser := NewPhraseParser([]PhraseEntry{
		{Canonical: "kubernetes", Variants: []string{"k8s"}},
	})

	terms := []Term{
		{Surface: "k8s", Key: "k8s"},
		{Surface: "upgrades", Key: "upgrad"},
	}

	parsed := parser.Parse(terms)
	if len(parsed) != 2 {
		t.Fatalf("Expected 2 terms, got %v", parsed)
	}
	if parsed[0].Surface != "kubernetes" || parsed[0].Key != "kubernetes" {
		t.Errorf("Single-word variant should normalize to canonical, got %+v", parsed[0])
	}
	if parsed[1].Surface != "upgrades" {
		t.Errorf("Non-variant terms should pass through, got %+v", parsed[1])
	}
}

func TestPhraseParserEmptyDict(t *testing.T) {
	parser := NewPhraseParser(nil)

	terms := []Term{{Surface: "plain", Key: "plain"}, {Surface: "words", Key: "word"}}
	parsed := parser.Parse(terms)
	if len(parsed) != 2 {
		t.Errorf("Empty dictionary should pass terms through, got %v", parsed)
	}
}

func TestPipelineProcess(t *testing.T) {
	tokenizer := NewTokenizer([]string{"the", "for"})
	parser := NewPhraseParser([]PhraseEntry{{Canonical: "machine learning"}})
	pipeline := NewPipeline(tokenizer, parser)

	doc := pipeline.Process("The machine learning toolkit for networks and network tuning")

	keys := doc.Keys()
	if len(keys) != len(doc.Terms) {
		t.Fatalf("Keys length mismatch: %d vs %d", len(keys), len(doc.Terms))
	}
	if keys[0] != "machine learning" {
		t.Errorf("Phrase should survive the pipeline, got %q", keys[0])
	}

	forms := doc.Forms()
	networkKey := KeyFor("networks")
	if got := len(forms[networkKey]); got != 2 {
		t.Errorf("Expected 2 surface forms for %q, got %d: %v", networkKey, got, forms[networkKey])
	}
}
