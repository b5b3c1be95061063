package hitlist

import (
	"fmt"

	pdxerrors "github.com/standardbeagle/pulsedex/internal/errors"
	"github.com/standardbeagle/pulsedex/internal/lexicon"
	"github.com/standardbeagle/pulsedex/internal/types"
)

// GlobalIdResolver turns one RawHit into a global WordId per §4.2's "Global
// id mapping": stop-word hits already carry their resolved id; every other
// hit consumes the next local id from its named division's WordLogReader
// and offsets it through the dictionary_offset record.
type GlobalIdResolver struct {
	offsets  *lexicon.DictionaryOffset
	wordLogs map[int]*WordLogReader // division -> reader
}

// NewGlobalIdResolver builds a resolver over one client's word-log readers,
// keyed by division.
func NewGlobalIdResolver(offsets *lexicon.DictionaryOffset, wordLogs map[int]*WordLogReader) *GlobalIdResolver {
	return &GlobalIdResolver{offsets: offsets, wordLogs: wordLogs}
}

// Resolve returns the global WordId for hit, or an error if hit names a
// division with no word-log reader, or the reader is exhausted (a
// corruption per §4.2: "a token whose local id is not present in
// word_log[d]").
func (r *GlobalIdResolver) Resolve(hit RawHit) (types.WordId, error) {
	if hit.TermType.Has(types.TermStop) {
		return types.WordId(uint32(hit.LogDivOrWordId)), nil
	}

	div := int(hit.LogDivOrWordId)
	reader, ok := r.wordLogs[div]
	if !ok {
		return 0, pdxerrors.NewMismatch("hitlist", "LogIdMismatch",
			fmt.Sprintf("word_log reader for division %d", div), "no reader registered")
	}

	local, ok := reader.Next()
	if !ok {
		return 0, pdxerrors.NewMismatch("hitlist", "LogIdMismatch",
			fmt.Sprintf("unconsumed local id in word_log[%d]", div), "stream exhausted")
	}

	off, err := r.offsets.ForDivision(div)
	if err != nil {
		return 0, fmt.Errorf("hitlist: resolve global word id: %w", err)
	}
	return types.WordId(off.WordOffset + local), nil
}

// ResolveLink maps a link-cluster target to a global DocId. Local (same
// logical division) links pass the low-bit base-doc/URL distinction
// through unchanged; callers needing the non-spidered-URL offset do so via
// dictionary_offset's LinkOffset the same way Resolve does for words.
func (r *GlobalIdResolver) ResolveLink(div int, localOrGlobal uint64, spidered bool) (types.DocId, error) {
	if spidered {
		return types.DocId(localOrGlobal >> 1), nil
	}
	off, err := r.offsets.ForDivision(div)
	if err != nil {
		return 0, fmt.Errorf("hitlist: resolve link target: %w", err)
	}
	return types.DocId(uint64(off.LinkOffset) + (localOrGlobal >> 1)), nil
}
