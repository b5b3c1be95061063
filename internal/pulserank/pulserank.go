// Package pulserank computes a per-node stationary-distribution score over
// the integrated link graph via fixed-point back/forward buffer iteration,
// per §4.4 (Pulse-Rank).
package pulserank

import (
	"sort"

	"github.com/standardbeagle/pulsedex/internal/linkgraph"
	"github.com/standardbeagle/pulsedex/internal/types"
)

// State is one cycle's back (or forward) buffer: node -> pulse score. Real
// back_wave_pass.<shard> / forward_wave_pass.<dst_shard> files are sharded
// on disk; here the whole node set lives in one map, since pulse-rank's
// arithmetic is shard-agnostic — only the I/O layout shards it.
type State map[types.DocId]float32

// InitialScore returns pulse-rank's seed score, per §4.4: "Initial score is
// 1 / BaseNodeCount."
func InitialScore(baseNodeCount int) float32 {
	if baseNodeCount <= 0 {
		return 0
	}
	return 1 / float32(baseNodeCount)
}

// NewInitialState seeds every known node at InitialScore(baseNodeCount).
func NewInitialState(nodes []types.DocId, baseNodeCount int) State {
	s := make(State, len(nodes))
	init := InitialScore(baseNodeCount)
	for _, n := range nodes {
		s[n] = init
	}
	return s
}

// distribute streams the back buffer against the cluster link set in
// lockstep, writing (dst, src_score × link_weight) into the forward
// buffer for each outgoing edge, per §4.4 step (a). netScore is the total
// flow emitted this cycle, the divisor the accumulation phase normalizes
// by.
func distribute(edges []linkgraph.Edge, back State) (forward map[types.DocId]float32, netScore float32) {
	forward = make(map[types.DocId]float32, len(back))
	for _, e := range edges {
		srcScore, ok := back[e.Src]
		if !ok {
			continue
		}
		contribution := srcScore * e.Weight
		forward[e.Dst] += contribution
		netScore += contribution
	}
	return forward, netScore
}

// accumulate groups forward entries by dst (already done by distribute's
// map), sums them (already summed), and normalizes by the cycle's net
// score, per §4.4 step (b). A zero net score (no edges fired) leaves the
// forward buffer as the new back buffer unnormalized, since dividing by
// zero would discard every node's score.
func accumulate(forward map[types.DocId]float32, netScore float32) State {
	out := make(State, len(forward))
	if netScore == 0 {
		for n, s := range forward {
			out[n] = s
		}
		return out
	}
	for n, s := range forward {
		out[n] = s / netScore
	}
	return out
}

// withExternalNodes adds base nodes absent from the forward stream back
// into newBack, keeping their previous score, per §4.4's final-cycle-only
// external-node pass.
func withExternalNodes(back, newBack State) State {
	out := make(State, len(back))
	for n, s := range newBack {
		out[n] = s
	}
	for n, s := range back {
		if _, ok := out[n]; !ok {
			out[n] = s
		}
	}
	return out
}

// Runner drives the fixed cycle count iteration, per §4.4's "no
// per-iteration delta test; stability relies on the iteration count."
type Runner struct {
	Cycles int // PulseRankCycles, default 20
}

// NewRunner builds a Runner for the given fixed cycle count.
func NewRunner(cycles int) *Runner {
	return &Runner{Cycles: cycles}
}

// Run executes Cycles iterations of distribute/accumulate over a static
// edge set, applying the external-node pass only on the final cycle, and
// returns the resulting sorted_pulse_score stream: every node's final
// score, sorted ascending by DocId per shard-file convention.
func (r *Runner) Run(edges []linkgraph.Edge, initial State) []types.PulseMap {
	back := initial
	for cycle := 0; cycle < r.Cycles; cycle++ {
		forward, net := distribute(edges, back)
		newBack := accumulate(forward, net)
		if cycle == r.Cycles-1 {
			newBack = withExternalNodes(back, newBack)
			// Nodes that dropped out of the forward stream in an earlier
			// cycle are absent from back too; restore them at their seed score.
			newBack = withExternalNodes(initial, newBack)
		}
		back = newBack
	}
	return sortedPulseScores(back)
}

// AveragedLookup builds a linkgraph.PulseLookup that averages a node's
// score across two pulse streams, per §4.3's "the source's pulse score
// (averaged from the two pulse streams)." A node absent from both falls
// back to fallback (typically InitialScore(baseNodeCount)).
func AveragedLookup(a, b State, fallback float32) linkgraph.PulseLookup {
	return func(node types.DocId) float32 {
		sa, oka := a[node]
		sb, okb := b[node]
		switch {
		case oka && okb:
			return (sa + sb) / 2
		case oka:
			return sa
		case okb:
			return sb
		default:
			return fallback
		}
	}
}

func sortedPulseScores(s State) []types.PulseMap {
	out := make([]types.PulseMap, 0, len(s))
	for n, score := range s {
		out = append(out, types.PulseMap{Node: n, PulseScore: score})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Node < out[j].Node })
	return out
}
