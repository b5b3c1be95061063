package lexicon

import "strings"

// StopWords is a case-insensitive membership set. A hit whose term_type
// carries the stop bit (types.TermStop) is resolved against this set rather
// than the per-division Dictionary — stop words get a fixed, pre-assigned
// lexicon id shared by every document instead of one assigned from the log
// stream (§4.2 "retrieves the global word id (either directly for stop
// words via the lexicon or by consuming one id from word_log[d])").
type StopWords struct {
	ids map[string]uint32
}

// NewStopWords builds a StopWords set from an ordered word list; a word's
// index in the list is its fixed lexicon id.
func NewStopWords(words []string) *StopWords {
	ids := make(map[string]uint32, len(words))
	for i, w := range words {
		ids[strings.ToLower(w)] = uint32(i)
	}
	return &StopWords{ids: ids}
}

// ID returns the fixed id for a stop word, or (0, false) if word isn't one.
func (s *StopWords) ID(word string) (uint32, bool) {
	id, ok := s.ids[strings.ToLower(word)]
	return id, ok
}

// Contains reports whether word is in the stop-word set.
func (s *StopWords) Contains(word string) bool {
	_, ok := s.ids[strings.ToLower(word)]
	return ok
}

// Len returns the number of distinct stop words.
func (s *StopWords) Len() int { return len(s.ids) }
