package hitlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/pulsedex/internal/lexicon"
	"github.com/standardbeagle/pulsedex/internal/types"
)

func newTestResolver(t *testing.T, wordLogIds map[int][]uint32) *GlobalIdResolver {
	t.Helper()
	offsets := lexicon.NewDictionaryOffset(100, 1000, []uint32{10, 20})
	readers := make(map[int]*WordLogReader, len(wordLogIds))
	for div, ids := range wordLogIds {
		readers[div] = &WordLogReader{}
		readers[div].ids = ids
	}
	return NewGlobalIdResolver(offsets, readers)
}

func TestResolveStopWordUsesEmbeddedId(t *testing.T) {
	r := newTestResolver(t, nil)
	id, err := r.Resolve(RawHit{TermType: types.TermStop, LogDivOrWordId: 42})
	require.NoError(t, err)
	assert.Equal(t, types.WordId(42), id)
}

func TestResolveNonStopConsumesWordLogAndOffsets(t *testing.T) {
	r := newTestResolver(t, map[int][]uint32{1: {5, 6}})
	id, err := r.Resolve(RawHit{LogDivOrWordId: 1})
	require.NoError(t, err)
	// division 1's word_offset is 10 (first division owns [0,10)).
	assert.Equal(t, types.WordId(15), id)

	id2, err := r.Resolve(RawHit{LogDivOrWordId: 1})
	require.NoError(t, err)
	assert.Equal(t, types.WordId(16), id2)
}

func TestResolveExhaustedWordLogIsMismatch(t *testing.T) {
	r := newTestResolver(t, map[int][]uint32{0: {1}})
	_, err := r.Resolve(RawHit{LogDivOrWordId: 0})
	require.NoError(t, err)
	_, err = r.Resolve(RawHit{LogDivOrWordId: 0})
	require.Error(t, err)
}

func TestResolveMissingDivisionReaderIsMismatch(t *testing.T) {
	r := newTestResolver(t, nil)
	_, err := r.Resolve(RawHit{LogDivOrWordId: 3})
	require.Error(t, err)
}

func TestShardForDistributesByModulo(t *testing.T) {
	assert.Equal(t, 3, ShardFor(types.WordId(19), 16))
	assert.Equal(t, 0, ShardFor(types.WordId(32), 16))
}

func TestAssemblerEmitsBaseHitsAndTracksDocSize(t *testing.T) {
	resolver := newTestResolver(t, map[int][]uint32{0: {1, 2}})
	asm := NewAssembler(resolver, 16, nil)

	doc := DocMeta{
		DocId:   types.DocId(7),
		DocSize: 2,
		Hits: []RawHit{
			{LogDivOrWordId: 0},
			{LogDivOrWordId: 0},
		},
	}

	res, err := asm.ProcessDocument(doc, nil)
	require.NoError(t, err)
	require.Len(t, res.BaseHits, 2)
	assert.Equal(t, types.DocId(7), res.BaseHits[0].DocId)
	assert.Equal(t, 2, res.ObservedSize)
}

func TestAssemblerDropsExcludedStopHits(t *testing.T) {
	resolver := newTestResolver(t, nil)
	asm := NewAssembler(resolver, 16, nil)

	doc := DocMeta{
		DocId:   types.DocId(1),
		DocSize: 0,
		Hits: []RawHit{
			{TermType: types.TermStop, LogDivOrWordId: 99, Exclude: true},
		},
	}

	res, err := asm.ProcessDocument(doc, nil)
	require.NoError(t, err)
	assert.Empty(t, res.BaseHits)
	assert.Equal(t, 0, res.ObservedSize)
}

func TestAssemblerDocSizeMismatchIsError(t *testing.T) {
	resolver := newTestResolver(t, map[int][]uint32{0: {1}})
	asm := NewAssembler(resolver, 16, nil)

	doc := DocMeta{
		DocId:   types.DocId(1),
		DocSize: 5,
		Hits:    []RawHit{{LogDivOrWordId: 0}},
	}

	_, err := asm.ProcessDocument(doc, nil)
	require.Error(t, err)
}

func TestAssemblerDuplicatesNonSpideredLinkHitsAsAnchors(t *testing.T) {
	resolver := newTestResolver(t, map[int][]uint32{0: {1}})
	asm := NewAssembler(resolver, 16, nil)

	doc := DocMeta{
		DocId:   types.DocId(1),
		DocSize: 1,
		Hits: []RawHit{
			{TermType: types.TermLink, LogDivOrWordId: 0},
		},
	}
	links := []LinkEntry{{Target: types.DocId(55), IsSpidered: false}}

	res, err := asm.ProcessDocument(doc, links)
	require.NoError(t, err)
	assert.Empty(t, res.BaseHits)
	require.Len(t, res.AnchorHits, 1)
	assert.Equal(t, types.DocId(55), res.AnchorHits[0].DocId)
}

func TestAssemblerIncrementsImageCounterOnFirstHit(t *testing.T) {
	resolver := newTestResolver(t, map[int][]uint32{0: {1, 2}})
	asm := NewAssembler(resolver, 16, nil)

	doc := DocMeta{
		DocId:   types.DocId(1),
		DocSize: 2,
		Hits: []RawHit{
			{TermType: types.TermImage | types.TermNewImage, LogDivOrWordId: 0},
			{TermType: types.TermImage, LogDivOrWordId: 0},
		},
	}

	res, err := asm.ProcessDocument(doc, nil)
	require.NoError(t, err)
	require.Len(t, res.BaseHits, 2)
	assert.Equal(t, types.DocId(1), res.BaseHits[0].ImageId)
	assert.Equal(t, types.DocId(1), res.BaseHits[1].ImageId)
}

func TestAssemblerExcerptSideChannelRespectsThreshold(t *testing.T) {
	resolver := newTestResolver(t, map[int][]uint32{0: {1}})
	under := func(wordId types.WordId) bool { return wordId == types.WordId(1) }
	asm := NewAssembler(resolver, 16, under)

	doc := DocMeta{
		DocId:   types.DocId(1),
		DocSize: 1,
		Hits:    []RawHit{{LogDivOrWordId: 0}},
	}

	res, err := asm.ProcessDocument(doc, nil)
	require.NoError(t, err)
	require.Len(t, res.Excerpts, 1)
	assert.Equal(t, types.WordId(1), res.Excerpts[0].WordId)
}

func TestShardHitsGroupsByWordIdModulo(t *testing.T) {
	hits := []types.HitItem{
		{WordId: 1}, {WordId: 17}, {WordId: 2},
	}
	sharded := ShardHits(hits, 16)
	assert.Len(t, sharded[1], 2)
	assert.Len(t, sharded[2], 1)
}
