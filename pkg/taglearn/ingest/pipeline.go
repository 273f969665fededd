package ingest

// Pipeline orchestrates the normalization flow:
// text → tokenization → stemming → phrase recognition
type Pipeline struct {
	tokenizer *Tokenizer
	phrases   *PhraseParser
}

// NewPipeline creates a normalization pipeline with the given components
func NewPipeline(tokenizer *Tokenizer, phrases *PhraseParser) *Pipeline {
	return &Pipeline{
		tokenizer: tokenizer,
		phrases:   phrases,
	}
}

// ProcessedDoc represents a document after normalization
type ProcessedDoc struct {
	Terms []Term
}

// Process runs a document's text through the full normalization pipeline
func (p *Pipeline) Process(text string) ProcessedDoc {
	terms := p.tokenizer.Tokenize(text)
	terms = p.phrases.Parse(terms)
	return ProcessedDoc{Terms: terms}
}

// Keys returns the grouping keys of the term sequence in document order.
func (d ProcessedDoc) Keys() []string {
	keys := make([]string, len(d.Terms))
	for i, t := range d.Terms {
		keys[i] = t.Key
	}
	return keys
}

// Forms returns per-key surface form counts, used to pick a display form
// for each grouping key.
func (d ProcessedDoc) Forms() map[string]map[string]int {
	forms := make(map[string]map[string]int)
	for _, t := range d.Terms {
		if forms[t.Key] == nil {
			forms[t.Key] = make(map[string]int)
		}
		forms[t.Key][t.Surface]++
	}
	return forms
}
