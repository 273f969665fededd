package ingest

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
)

// minTermLength drops tokens shorter than three runes; one- and two-letter
// fragments almost never make useful tags.
const minTermLength = 3

// Term is a single normalized token. Surface is the lowercased form as it
// appeared in the text; Key is the stemmed grouping key so that
// morphological variants ("network", "networks") collapse to one candidate.
type Term struct {
	Surface string
	Key     string
}

// Tokenizer handles text tokenization and normalization
type Tokenizer struct {
	stopwords map[string]struct{}
}

// NewTokenizer creates a new tokenizer with the given stopword list
func NewTokenizer(stopwords []string) *Tokenizer {
	stops := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		stops[strings.ToLower(w)] = struct{}{}
	}
	return &Tokenizer{stopwords: stops}
}

// Tokenize splits text into normalized terms: lowercased, punctuation
// dropped, numeric-only and short tokens removed, stopwords filtered,
// and each surviving token stemmed into its grouping key.
func (t *Tokenizer) Tokenize(text string) []Term {
	var terms []Term
	var current strings.Builder

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '-' {
			current.WriteRune(unicode.ToLower(r))
		} else {
			if current.Len() > 0 {
				if term, ok := t.processToken(current.String()); ok {
					terms = append(terms, term)
				}
				current.Reset()
			}
		}
	}

	// Don't forget the last token
	if current.Len() > 0 {
		if term, ok := t.processToken(current.String()); ok {
			terms = append(terms, term)
		}
	}

	return terms
}

// processToken applies cleaning, stopword filtering, and stemming.
func (t *Tokenizer) processToken(token string) (Term, bool) {
	word := t.cleanToken(token)
	if len([]rune(word)) < minTermLength {
		return Term{}, false
	}

	// Numeric-only tokens carry no tag value. Mixed tokens like
	// "gpt-4" or "utf-8" are kept.
	if isNumericOnly(word) {
		return Term{}, false
	}

	if t.isStopword(word) {
		return Term{}, false
	}

	key := english.Stem(word, false)
	if key == "" || t.isStopword(key) {
		return Term{}, false
	}

	return Term{Surface: word, Key: key}, true
}

// cleanToken strips leading/trailing hyphens and normalizes consecutive hyphens
func (t *Tokenizer) cleanToken(token string) string {
	token = strings.Trim(token, "-")

	for strings.Contains(token, "--") {
		token = strings.ReplaceAll(token, "--", "-")
	}

	return token
}

// isNumericOnly returns true if the token contains only digits and hyphens.
func isNumericOnly(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '-' {
			return false
		}
	}
	return true
}

func (t *Tokenizer) isStopword(word string) bool {
	_, ok := t.stopwords[word]
	return ok
}

// AddStopword adds a word to the stopword list
func (t *Tokenizer) AddStopword(word string) {
	t.stopwords[strings.ToLower(word)] = struct{}{}
}

// RemoveStopword removes a word from the stopword list
func (t *Tokenizer) RemoveStopword(word string) {
	delete(t.stopwords, strings.ToLower(word))
}
