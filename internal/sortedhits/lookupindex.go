package sortedhits

import "github.com/standardbeagle/pulsedex/internal/types"

// BuildLookupIndex walks a word-id-major sorted hit stream and emits
// SLookupIndex records at fixed spatial boundaries (default every
// MaxSpatNum bytes), per §4.7: "a second pass emits ... a sequence of
// SLookupIndex records containing, at fixed spatial boundaries ..., the
// byte offset into each per-type hit file. A per-word-id starting record
// allows O(1) seek to any word's first hit and O(1) step across
// word-id-boundaries."
//
// sorted must already be ordered by (word_id, cluster_doc_id, enc); the
// three per-type offsets tracked here are the same byte positions a
// writer streaming SplitByType's three files in lockstep with sorted
// would be at.
func BuildLookupIndex(sorted []types.HitItem, maxSpatNum int) []types.SLookupIndex {
	if maxSpatNum <= 0 {
		maxSpatNum = 255
	}

	var records []types.SLookupIndex
	var offsets types.SLookupIndex // reused as a running (title, excerpt, image) offset accumulator
	bytesSinceLastRecord := 0
	haveLastWord := false
	var lastWord types.WordId

	emit := func(wordID types.WordId, wordStart bool) {
		records = append(records, types.SLookupIndex{
			WordId:        wordID,
			TitleOffset:   offsets.TitleOffset,
			ExcerptOffset: offsets.ExcerptOffset,
			ImageOffset:   offsets.ImageOffset,
			WordStart:     wordStart,
		})
		bytesSinceLastRecord = 0
	}

	for _, h := range sorted {
		newWord := !haveLastWord || h.WordId != lastWord
		if newWord {
			emit(h.WordId, true)
			lastWord = h.WordId
			haveLastWord = true
		} else if bytesSinceLastRecord >= maxSpatNum {
			emit(h.WordId, false)
		}

		switch h.Enc.Type() {
		case types.HitTitle:
			offsets.TitleOffset += hitItemEncodedSize
		case types.HitExcerpt:
			offsets.ExcerptOffset += hitItemEncodedSize
		case types.HitImage:
			offsets.ImageOffset += hitItemEncodedSize
		}
		bytesSinceLastRecord += hitItemEncodedSize
	}

	return records
}

// LookupWordStart returns the byte offsets recorded for a word's first
// hit, giving O(1) seek into the per-type hit files. It assumes records
// is sorted by WordId ascending, the order BuildLookupIndex produces.
func LookupWordStart(records []types.SLookupIndex, wordID types.WordId) (types.SLookupIndex, bool) {
	lo, hi := 0, len(records)
	for lo < hi {
		mid := (lo + hi) / 2
		if records[mid].WordId < wordID {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(records) && records[lo].WordId == wordID && records[lo].WordStart {
		return records[lo], true
	}
	return types.SLookupIndex{}, false
}
