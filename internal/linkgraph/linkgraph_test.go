package linkgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/pulsedex/internal/types"
)

func constPulse(score float32) PulseLookup {
	return func(types.DocId) float32 { return score }
}

func TestMergeRunSumsDuplicateDestinations(t *testing.T) {
	m := NewMerger(constPulse(1))
	run := []RawEdge{
		{Src: 1, Dst: 10, Prob: 0.5, Source: SourceWebgraph},
		{Src: 1, Dst: 10, Prob: 0.25, Source: SourceWebgraph},
		{Src: 1, Dst: 20, Prob: 1.0, Source: SourceWebgraph},
	}
	out, err := m.MergeRun(run)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, types.DocId(10), out[0].Dst)
	assert.InDelta(t, 0.75, out[0].Weight, 1e-6)
	assert.Equal(t, types.DocId(20), out[1].Dst)
	assert.InDelta(t, 1.0, out[1].Weight, 1e-6)
}

func TestMergeRunScalesKeywordEdgesByPointOne(t *testing.T) {
	m := NewMerger(constPulse(1))
	run := []RawEdge{
		{Src: 1, Dst: 10, Prob: 1.0, Source: SourceWebgraph},
		{Src: 1, Dst: 20, Prob: 1.0, Source: SourceKeyword},
	}
	out, err := m.MergeRun(run)
	require.NoError(t, err)
	weights := map[types.DocId]float32{out[0].Dst: out[0].Weight, out[1].Dst: out[1].Weight}
	assert.InDelta(t, 1.0, weights[10], 1e-6)
	assert.InDelta(t, 0.1, weights[20], 1e-6)
}

func TestMergeRunNormalizesByPulseScore(t *testing.T) {
	m := NewMerger(constPulse(2))
	run := []RawEdge{{Src: 1, Dst: 10, Prob: 1.0, Source: SourceWebgraph}}
	out, err := m.MergeRun(run)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, out[0].Weight, 1e-6)
}

func TestMergeRunRejectsMixedSources(t *testing.T) {
	m := NewMerger(constPulse(1))
	_, err := m.MergeRun([]RawEdge{{Src: 1, Dst: 10}, {Src: 2, Dst: 11}})
	require.Error(t, err)
}

func TestMergeRunEmptyRun(t *testing.T) {
	m := NewMerger(constPulse(1))
	out, err := m.MergeRun(nil)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestSplitRunsGroupsContiguousSources(t *testing.T) {
	edges := []RawEdge{
		{Src: 1, Dst: 10}, {Src: 1, Dst: 20},
		{Src: 2, Dst: 10},
		{Src: 5, Dst: 30},
	}
	runs := SplitRuns(edges)
	require.Len(t, runs, 3)
	assert.Len(t, runs[0], 2)
	assert.Len(t, runs[1], 1)
	assert.Len(t, runs[2], 1)
}

func TestShardForIsModClientCount(t *testing.T) {
	assert.Equal(t, 3, ShardFor(types.DocId(19), 16))
	assert.Equal(t, 0, ShardFor(types.DocId(32), 16))
}

func TestShardEdgesPartitionsBySrc(t *testing.T) {
	edges := []Edge{{Src: 1, Dst: 10}, {Src: 17, Dst: 20}, {Src: 2, Dst: 30}}
	sharded := ShardEdges(edges, 16)
	assert.Len(t, sharded[1], 2)
	assert.Len(t, sharded[2], 1)
}

func TestNeighbourShardsHashesByDestinationAndDedupes(t *testing.T) {
	edges := []Edge{
		{Src: 1, Dst: 20},
		{Src: 2, Dst: 20},
		{Src: 1, Dst: 20}, // duplicate endpoint pair, should not double-count
	}
	n := NeighbourShards(edges, 16)
	shard := ShardFor(types.DocId(20), 16)
	require.Contains(t, n, shard)
	assert.ElementsMatch(t, []types.DocId{1, 2, 20}, n[shard])
}

func TestMergeAllProducesShardedEdgesAndNeighbours(t *testing.T) {
	edges := []RawEdge{
		{Src: 1, Dst: 10, Prob: 1, Source: SourceWebgraph},
		{Src: 1, Dst: 10, Prob: 1, Source: SourceWebgraph},
		{Src: 2, Dst: 11, Prob: 1, Source: SourceKeyword},
	}
	m := NewMerger(constPulse(1))
	sharded, neighbours, err := MergeAll(m, edges, 16)
	require.NoError(t, err)

	var total int
	for _, es := range sharded {
		total += len(es)
	}
	assert.Equal(t, 2, total)
	assert.NotEmpty(t, neighbours)
}
