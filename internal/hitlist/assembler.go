package hitlist

import (
	"fmt"

	"github.com/standardbeagle/pulsedex/internal/types"
)

// ExcerptThreshold decides whether a hit's word occurs rarely enough in the
// corpus to feed the excerpt-term side channel (§4.2: "hits under a
// word-occurrence threshold, computed earlier by a k-th-order-statistic
// pass at a configured percentile"). The percentile computation itself
// lives upstream (internal/shuffle's key-occurrence aggregation feeds it);
// the assembler only consults the resulting per-word boundary.
type ExcerptThreshold func(wordId types.WordId) bool

// Assembler turns one document's meta hit stream and link cluster into
// HitItems, title tokens, and excerpt side-channel entries.
type Assembler struct {
	resolver       *GlobalIdResolver
	hitListBreadth int
	underThreshold ExcerptThreshold

	imageCounter uint32
}

// NewAssembler builds an Assembler sharding HitItems by word_id mod
// hitListBreadth. underThreshold may be nil to disable the excerpt side
// channel entirely.
func NewAssembler(resolver *GlobalIdResolver, hitListBreadth int, underThreshold ExcerptThreshold) *Assembler {
	return &Assembler{resolver: resolver, hitListBreadth: hitListBreadth, underThreshold: underThreshold}
}

// Result is one document's assembled output.
type Result struct {
	BaseHits     []types.HitItem // emitted to base_fin_hit.<shard>.client.<c>
	AnchorHits   []types.HitItem // emitted to anchor_fin_hit.<shard>.client.<c>, target doc id
	TitleTokens  []types.WordId
	Excerpts     []ExcerptEntry
	ObservedSize int // non-excluded token count, must equal doc.DocSize
}

// ProcessDocument assembles one document's hits in order. links is the
// already-flattened (local-then-global) link cluster; link hits (TermLink)
// consume one entry from links in order, matching §4.2's "reads its link
// cluster ... for each hit in order."
func (a *Assembler) ProcessDocument(doc DocMeta, links []LinkEntry) (Result, error) {
	var res Result
	linkIdx := 0

	for _, hit := range doc.Hits {
		if hit.IsDropped(hit.Exclude) {
			continue
		}

		wordId, err := a.resolver.Resolve(hit)
		if err != nil {
			return res, fmt.Errorf("hitlist: document %s: %w", doc.DocId, err)
		}
		res.ObservedSize++

		// Meta hits carrying the capital bit are title tokens (§4.2 "records
		// title tokens to a title-segment file").
		if hit.TermType.Has(types.TermMeta) && hit.TermType.Has(types.TermCapital) {
			res.TitleTokens = append(res.TitleTokens, wordId)
		}

		if hit.TermType.Has(types.TermImage) && hit.TermType.Has(types.TermNewImage) {
			a.imageCounter++
		}

		item := types.HitItem{
			WordId: wordId,
			DocId:  doc.DocId,
			Enc:    types.EncodeHit(a.hitType(hit), res.ObservedSize-1),
		}
		if hit.TermType.Has(types.TermImage) {
			item.HasImage = true
			item.ImageId = types.DocId(a.imageCounter)
		}

		if hit.TermType.Has(types.TermLink) {
			if linkIdx >= len(links) {
				return res, fmt.Errorf("hitlist: document %s: link hit with no matching link-cluster entry", doc.DocId)
			}
			link := links[linkIdx]
			linkIdx++
			if !link.IsSpidered {
				anchor := item
				anchor.DocId = link.Target
				res.AnchorHits = append(res.AnchorHits, anchor)
				continue
			}
		}

		res.BaseHits = append(res.BaseHits, item)

		if a.underThreshold != nil && a.underThreshold(wordId) {
			res.Excerpts = append(res.Excerpts, ExcerptEntry{
				WordId:        wordId,
				OccurrenceEnc: uint32(item.Enc),
			})
		}
	}

	if res.ObservedSize != doc.DocSize {
		return res, fmt.Errorf("hitlist: document %s: doc_size mismatch: observed %d, declared %d",
			doc.DocId, res.ObservedSize, doc.DocSize)
	}
	return res, nil
}

func (a *Assembler) hitType(hit RawHit) types.HitType {
	switch {
	case hit.TermType.Has(types.TermImage):
		return types.HitImage
	case hit.TermType.Has(types.TermMeta):
		return types.HitTitle
	default:
		return types.HitExcerpt
	}
}

// ShardHits partitions hits by word_id mod hitListBreadth into per-shard
// slices, the layout base_fin_hit.<shard>.client.<c> is segmented by.
func ShardHits(hits []types.HitItem, hitListBreadth int) map[int][]types.HitItem {
	out := make(map[int][]types.HitItem)
	for _, h := range hits {
		shard := ShardFor(h.WordId, hitListBreadth)
		out[shard] = append(out[shard], h)
	}
	return out
}
