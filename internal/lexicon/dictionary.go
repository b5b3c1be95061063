package lexicon

import "sync"

// Dictionary interns per-division word strings into local 0-based ids, the
// shape dictionary writeback later offsets into the global WordId space
// (dictionary_offset.word_offset[d] + local). One Dictionary instance
// covers a single log division.
type Dictionary struct {
	mu     sync.RWMutex
	ids    map[string]uint32
	words  []string
	counts []int64
}

// NewDictionary returns an empty per-division dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{ids: make(map[string]uint32)}
}

// Intern returns word's local id, assigning the next sequential id and
// recording a first occurrence if word hasn't been seen in this division
// before. Safe for concurrent use by multiple tokenizer-stream readers.
func (d *Dictionary) Intern(word string) uint32 {
	d.mu.RLock()
	if id, ok := d.ids[word]; ok {
		d.mu.RUnlock()
		d.mu.Lock()
		d.counts[id]++
		d.mu.Unlock()
		return id
	}
	d.mu.RUnlock()

	d.mu.Lock()
	defer d.mu.Unlock()
	if id, ok := d.ids[word]; ok {
		d.counts[id]++
		return id
	}
	id := uint32(len(d.words))
	d.ids[word] = id
	d.words = append(d.words, word)
	d.counts = append(d.counts, 1)
	return id
}

// Lookup returns word's local id without interning it.
func (d *Dictionary) Lookup(word string) (uint32, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	id, ok := d.ids[word]
	return id, ok
}

// Word returns the text for a local id.
func (d *Dictionary) Word(id uint32) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if int(id) >= len(d.words) {
		return "", false
	}
	return d.words[id], true
}

// Occurrences returns the interning count recorded for a local id (how many
// times Intern observed this word in the division's token stream).
func (d *Dictionary) Occurrences(id uint32) int64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if int(id) >= len(d.counts) {
		return 0
	}
	return d.counts[id]
}

// Len returns the number of distinct words interned so far.
func (d *Dictionary) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.words)
}

// Words returns the interned words in local-id order (index i is id i's
// text). The returned slice is a copy; callers may not mutate it back into
// the dictionary.
func (d *Dictionary) Words() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, len(d.words))
	copy(out, d.words)
	return out
}

// AllOccurrences returns every interned word's occurrence count, in
// local-id order, for callers that need the whole table (writeback) rather
// than one id at a time.
func (d *Dictionary) AllOccurrences() []int64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]int64, len(d.counts))
	copy(out, d.counts)
	return out
}
