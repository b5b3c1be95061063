package pulserank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/pulsedex/internal/linkgraph"
	"github.com/standardbeagle/pulsedex/internal/types"
)

func TestInitialScoreIsOneOverBaseNodeCount(t *testing.T) {
	assert.InDelta(t, 0.1, InitialScore(10), 1e-6)
	assert.Equal(t, float32(0), InitialScore(0))
}

func TestNewInitialStateSeedsAllNodes(t *testing.T) {
	s := NewInitialState([]types.DocId{1, 2, 3}, 3)
	require.Len(t, s, 3)
	for _, n := range []types.DocId{1, 2, 3} {
		assert.InDelta(t, 1.0/3.0, s[n], 1e-6)
	}
}

func TestDistributeSumsWeightedContributionsPerDst(t *testing.T) {
	back := State{1: 0.5, 2: 0.25}
	edges := []linkgraph.Edge{
		{Src: 1, Dst: 10, Weight: 1.0},
		{Src: 2, Dst: 10, Weight: 1.0},
		{Src: 1, Dst: 20, Weight: 0.5},
	}
	forward, net := distribute(edges, back)
	assert.InDelta(t, 0.75, forward[10], 1e-6)
	assert.InDelta(t, 0.25, forward[20], 1e-6)
	assert.InDelta(t, 1.0, net, 1e-6)
}

func TestDistributeSkipsEdgesFromUnknownSource(t *testing.T) {
	back := State{1: 0.5}
	edges := []linkgraph.Edge{{Src: 99, Dst: 10, Weight: 1.0}}
	forward, net := distribute(edges, back)
	assert.Empty(t, forward)
	assert.Equal(t, float32(0), net)
}

func TestAccumulateNormalizesByNetScore(t *testing.T) {
	forward := map[types.DocId]float32{10: 0.75, 20: 0.25}
	out := accumulate(forward, 1.0)
	assert.InDelta(t, 0.75, out[10], 1e-6)
	assert.InDelta(t, 0.25, out[20], 1e-6)
}

func TestAccumulateHandlesZeroNetScore(t *testing.T) {
	forward := map[types.DocId]float32{10: 0}
	out := accumulate(forward, 0)
	assert.Contains(t, out, types.DocId(10))
}

func TestWithExternalNodesKeepsUnreachedPreviousScore(t *testing.T) {
	back := State{1: 0.5, 2: 0.5}
	newBack := State{1: 0.9}
	out := withExternalNodes(back, newBack)
	assert.InDelta(t, 0.9, out[1], 1e-6)
	assert.InDelta(t, 0.5, out[2], 1e-6)
}

func TestRunnerAppliesExternalPassOnlyOnFinalCycle(t *testing.T) {
	// Node 2 has no incoming edges, so it would vanish from the forward
	// buffer every cycle; only the final-cycle external pass must restore it.
	edges := []linkgraph.Edge{{Src: 1, Dst: 1, Weight: 1.0}}
	initial := State{1: 0.5, 2: 0.5}
	r := NewRunner(3)

	out := r.Run(edges, initial)

	var node2Score float32
	found := false
	for _, pm := range out {
		if pm.Node == types.DocId(2) {
			node2Score = pm.PulseScore
			found = true
		}
	}
	require.True(t, found)
	assert.InDelta(t, 0.5, node2Score, 1e-6)
}

func TestRunnerProducesSortedOutput(t *testing.T) {
	edges := []linkgraph.Edge{
		{Src: 1, Dst: 1, Weight: 1},
		{Src: 2, Dst: 2, Weight: 1},
	}
	initial := State{1: 0.5, 2: 0.5}
	out := NewRunner(5).Run(edges, initial)
	require.Len(t, out, 2)
	assert.True(t, out[0].Node < out[1].Node)
}

func TestAveragedLookupAveragesBothStreams(t *testing.T) {
	a := State{1: 0.4}
	b := State{1: 0.6, 2: 0.2}
	lookup := AveragedLookup(a, b, 0.1)
	assert.InDelta(t, 0.5, lookup(types.DocId(1)), 1e-6)
	assert.InDelta(t, 0.2, lookup(types.DocId(2)), 1e-6)
	assert.InDelta(t, 0.1, lookup(types.DocId(3)), 1e-6)
}
