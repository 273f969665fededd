package ingest

import "strings"

// PhraseParser recognizes multi-word phrases so they become single
// candidate tags ("machine learning" instead of "machine" + "learning").
type PhraseParser struct {
	dict   map[string]PhraseEntry // surface phrase → entry
	maxLen int
}

// PhraseEntry maps a canonical phrase and its variants to one tag candidate
type PhraseEntry struct {
	Canonical string   `yaml:"canonical"`
	Variants  []string `yaml:"variants"`
}

// NewPhraseParser creates a new parser with the given phrase dictionary
func NewPhraseParser(entries []PhraseEntry) *PhraseParser {
	dict := make(map[string]PhraseEntry)
	maxLen := 1
	for _, e := range entries {
		canonical := strings.ToLower(e.Canonical)
		dict[canonical] = e
		if l := phraseLen(canonical); l > maxLen {
			maxLen = l
		}
		for _, v := range e.Variants {
			variant := strings.ToLower(v)
			dict[variant] = e
			if l := phraseLen(variant); l > maxLen {
				maxLen = l
			}
		}
	}
	return &PhraseParser{dict: dict, maxLen: maxLen}
}

// Parse applies greedy longest-match over the surface forms of the term
// sequence. A matched phrase replaces its member terms with a single term
// whose surface and key are both the canonical phrase.
func (p *PhraseParser) Parse(terms []Term) []Term {
	if len(p.dict) == 0 {
		return terms
	}

	var result []Term
	i := 0

	for i < len(terms) {
		matched := ""
		matchLen := 1

		maxPhrase := p.maxLen
		if remaining := len(terms) - i; maxPhrase > remaining {
			maxPhrase = remaining
		}
		for n := maxPhrase; n >= 2; n-- {
			parts := make([]string, n)
			for j := 0; j < n; j++ {
				parts[j] = terms[i+j].Surface
			}
			phrase := strings.Join(parts, " ")
			if entry, ok := p.dict[phrase]; ok {
				matched = strings.ToLower(entry.Canonical)
				matchLen = n
				break
			}
		}

		// Single-word variants ("k8s" for "kubernetes") also normalize to
		// their canonical form.
		if matched == "" {
			if entry, ok := p.dict[terms[i].Surface]; ok {
				matched = strings.ToLower(entry.Canonical)
			}
		}

		if matched != "" {
			result = append(result, Term{Surface: matched, Key: matched})
		} else {
			result = append(result, terms[i])
		}
		i += matchLen
	}

	return result
}

func phraseLen(phrase string) int {
	return len(strings.Fields(phrase))
}
