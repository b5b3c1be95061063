// Package hitlist implements stage 4.2 of the pipeline: turning
// per-document tokenizer output (meta hit streams, word/link-url logs) into
// globally identified HitItems sharded by word_id mod HitListBreadth.
package hitlist

import "github.com/standardbeagle/pulsedex/internal/types"

// RawHit is one meta_hit_list entry prior to global id resolution. Per
// §4.2, LogDivOrWordId carries one of two meanings depending on TermType:
// if the stop bit is set, it IS the already-resolved global word id (the
// tokenizer assigned it directly from the lexicon); otherwise it names the
// log division to pop the next local id from.
type RawHit struct {
	TermType       types.HitTermFlags
	LogDivOrWordId int32
	Exclude        bool // stop+exclude hits are dropped, never indexed
}

// IsDropped reports whether this hit is discarded rather than indexed: a
// stop-bit hit that is also marked exclude.
func (h RawHit) IsDropped(exclude bool) bool {
	return h.TermType.Has(types.TermStop) && exclude
}

// DocMeta is one document's meta_hit_list record: its token count and
// ordered hit list.
type DocMeta struct {
	DocId        types.DocId
	DocSize      int // count of non-excluded tokens (§4.2 invariant)
	IsExcerptDoc bool
	Hits         []RawHit
}

// LinkEntry is one outbound link from a document's link cluster.
type LinkEntry struct {
	Target       types.DocId
	SameServer   types.ServerRelation
	IsSpidered   bool // false => target is a non-spidered URL, anchor-duplicated
}

// DocLinkCluster is a document's full link cluster: local links (same-site,
// cheaper global-id resolution) followed by global links, in file order.
type DocLinkCluster struct {
	Local  []LinkEntry
	Global []LinkEntry
}

// All returns Local followed by Global, the order hits are matched against.
func (c DocLinkCluster) All() []LinkEntry {
	out := make([]LinkEntry, 0, len(c.Local)+len(c.Global))
	out = append(out, c.Local...)
	out = append(out, c.Global...)
	return out
}

// ExcerptEntry is one (word_id, occurrence_enc) side-channel emission for
// the association/excerpt-keyword pipeline (§4.2 "excerpt-term side
// channel").
type ExcerptEntry struct {
	WordId        types.WordId
	OccurrenceEnc uint32
}

// ShardFor returns the word-shard a HitItem for wordId belongs in.
func ShardFor(wordId types.WordId, hitListBreadth int) int {
	if hitListBreadth <= 0 {
		return 0
	}
	return int(uint32(wordId) % uint32(hitListBreadth))
}
