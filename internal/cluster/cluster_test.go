package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/pulsedex/internal/linkgraph"
	"github.com/standardbeagle/pulsedex/internal/types"
)

func TestIdentityLabelsSeedsEachNodeAsItself(t *testing.T) {
	labels := IdentityLabels([]types.DocId{1, 2, 3})
	assert.Equal(t, Label(1), labels[1])
	assert.Equal(t, Label(3), labels[3])
}

func TestAccumulateAssignsMaxWeightLabelTiesByLowerId(t *testing.T) {
	labels := LabelState{10: 10}
	forward := map[types.DocId]map[Label]float32{
		10: {5: 1.0, 2: 1.0, 7: 0.5},
	}
	out := accumulate(forward, labels)
	assert.Equal(t, Label(2), out[10]) // tie between 5 and 2, lower id wins
}

func TestAccumulateKeepsPreviousLabelWhenAbsentFromForward(t *testing.T) {
	labels := LabelState{10: 3}
	out := accumulate(map[types.DocId]map[Label]float32{}, labels)
	assert.Equal(t, Label(3), out[10])
}

func TestThinToMaxIncomingKeepsOnlyHeaviestEdgePerDst(t *testing.T) {
	edges := []linkgraph.Edge{
		{Src: 1, Dst: 10, Weight: 0.5},
		{Src: 2, Dst: 10, Weight: 0.9},
		{Src: 3, Dst: 20, Weight: 0.1},
	}
	out := ThinToMaxIncoming(edges)
	require.Len(t, out, 2)
	for _, e := range out {
		if e.Dst == 10 {
			assert.Equal(t, types.DocId(2), e.Src)
		}
	}
}

func TestEnforceCapSplitsOversizedGroups(t *testing.T) {
	labels := LabelState{1: 1, 2: 1, 3: 1, 4: 1, 5: 1}
	out := EnforceCap(labels, 2)
	counts := make(map[Label]int)
	for _, l := range out {
		counts[l]++
	}
	for _, c := range counts {
		assert.LessOrEqual(t, c, 2)
	}
}

func TestEnforceCapLeavesSmallGroupsUnchanged(t *testing.T) {
	labels := LabelState{1: 9, 2: 9}
	out := EnforceCap(labels, 10)
	assert.Equal(t, Label(9), out[1])
	assert.Equal(t, Label(9), out[2])
}

func TestRunnerConverges(t *testing.T) {
	edges := []linkgraph.Edge{
		{Src: 1, Dst: 2, Weight: 1.0},
		{Src: 2, Dst: 1, Weight: 1.0},
	}
	initial := IdentityLabels([]types.DocId{1, 2})
	r := NewRunner(2, 1, 10)
	labels, thinned := r.Run(edges, initial)
	assert.Equal(t, labels[1], labels[2])
	assert.NotEmpty(t, thinned)
}

func TestMergeHierarchiesGroupsByLabelPreservingSegmentOrder(t *testing.T) {
	segments := []Segment{
		{HashDiv: 0, Nodes: []types.DocId{1, 2}},
		{HashDiv: 1, Nodes: []types.DocId{3}},
	}
	labels := LabelState{1: 100, 2: 100, 3: 200}
	pulse := func(types.DocId) float32 { return 1.0 }

	var next types.DocId = 1000
	alloc := func() types.DocId { next++; return next }

	results, clusterMap := MergeHierarchies(segments, labels, pulse, 4, 8, alloc)

	require.Len(t, results, 2) // label-100 group plus node 3's orphan group
	assert.Equal(t, []types.DocId{1, 2}, results[0].Members)
	assert.Equal(t, uint32(2), results[0].Stat.TotalNodeNum)
	assert.Equal(t, []types.DocId{3}, results[1].Members)
	assert.Len(t, clusterMap, 3)
}

func TestMergeHierarchiesCapsOrphanGroupSize(t *testing.T) {
	segments := []Segment{
		{HashDiv: 0, Nodes: []types.DocId{1, 2, 3, 4, 5}},
	}
	labels := LabelState{1: 1, 2: 2, 3: 3, 4: 4, 5: 5} // all singletons/orphans
	pulse := func(d types.DocId) float32 { return float32(d) }
	var next types.DocId = 0
	alloc := func() types.DocId { next++; return next }

	results, _ := MergeHierarchies(segments, labels, pulse, 2, 10, alloc)
	for _, r := range results {
		assert.LessOrEqual(t, len(r.Members), 2)
	}
}

func TestSubsumeLevelFindsFirstSharedLabelCycle(t *testing.T) {
	link := types.ClusterLink{BaseSrc: 1, BaseDst: 2}
	history := []LabelState{
		{1: 1, 2: 2},
		{1: 1, 2: 2},
		{1: 5, 2: 5},
	}
	level, subsumed := SubsumeLevel(link, history)
	require.True(t, subsumed)
	assert.Equal(t, uint8(2), level)
}

func TestSubsumeLevelNeverSharedReturnsFalse(t *testing.T) {
	link := types.ClusterLink{BaseSrc: 1, BaseDst: 2}
	history := []LabelState{{1: 1, 2: 2}}
	_, subsumed := SubsumeLevel(link, history)
	assert.False(t, subsumed)
}

func TestNewWaveClassDistributionNormalizesToOneAndIsDeterministic(t *testing.T) {
	rng1 := NewSeededRand(42)
	rng2 := NewSeededRand(42)
	d1 := NewWaveClassDistribution(rng1, 4)
	d2 := NewWaveClassDistribution(rng2, 4)
	assert.Equal(t, d1, d2)

	var sum float32
	for _, v := range d1 {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-5)
}
