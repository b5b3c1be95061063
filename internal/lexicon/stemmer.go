// Package lexicon implements stage 2.2/4.2's stop-word and stem-word
// dictionaries and the dictionary_offset writeback that converts per-shard
// local word/link identifiers into the single global id space every later
// stage addresses.
package lexicon

import (
	"strings"

	"github.com/surgebase/porter2"
)

// Stemmer normalizes a token to its stem, honoring a minimum length and an
// explicit exclusion list (acronyms, protocol names — anything that should
// pass through unstemmed).
type Stemmer struct {
	enabled    bool
	minLength  int
	exclusions map[string]bool
}

// NewStemmer builds a Stemmer. minLength below 0 is clamped to 0.
func NewStemmer(enabled bool, minLength int, exclusions []string) *Stemmer {
	if minLength < 0 {
		minLength = 0
	}
	excl := make(map[string]bool, len(exclusions))
	for _, w := range exclusions {
		excl[strings.ToLower(w)] = true
	}
	return &Stemmer{enabled: enabled, minLength: minLength, exclusions: excl}
}

// Stem returns the stemmed form of word, or word itself if stemming is
// disabled, the word is excluded, or it is shorter than the minimum length.
func (s *Stemmer) Stem(word string) string {
	if !s.enabled || len(word) < s.minLength || s.exclusions[strings.ToLower(word)] {
		return word
	}
	return porter2.Stem(word)
}

// StemAll applies Stem to every entry in words, preserving order.
func (s *Stemmer) StemAll(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = s.Stem(w)
	}
	return out
}
