// Package cluster implements label propagation and hierarchy merge, per
// §4.5 (Clustering Engine): grouping base nodes into a hierarchy whose
// internal nodes dominate their children by intra-group edge weight.
package cluster

import (
	"sort"

	"github.com/standardbeagle/pulsedex/internal/linkgraph"
	"github.com/standardbeagle/pulsedex/internal/types"
)

// Label identifies the cluster a base node currently carries. Initially
// every node is its own label, per §4.5: "Each base node carries a label
// (initially itself)."
type Label = types.DocId

// LabelState is the label assignment for every known base node, the
// in-memory stand-in for the on-disk cluster-label file MergeClusterNodes
// rewrites every cycle.
type LabelState map[types.DocId]Label

// IdentityLabels seeds every node as its own label.
func IdentityLabels(nodes []types.DocId) LabelState {
	s := make(LabelState, len(nodes))
	for _, n := range nodes {
		s[n] = n
	}
	return s
}

// distribute emits (dst_shard, src_label, w) for every edge, grouped here
// by dst since shard ownership is an I/O concern this in-memory pass
// doesn't need to model, per §4.5 step 1.
func distribute(edges []linkgraph.Edge, labels LabelState) map[types.DocId]map[Label]float32 {
	forward := make(map[types.DocId]map[Label]float32)
	for _, e := range edges {
		label, ok := labels[e.Src]
		if !ok {
			continue
		}
		byLabel := forward[e.Dst]
		if byLabel == nil {
			byLabel = make(map[Label]float32)
			forward[e.Dst] = byLabel
		}
		byLabel[label] += e.Weight
	}
	return forward
}

// accumulate sums incoming weight per label for each dst and assigns the
// maximum-weight label, ties broken by lower label id, per §4.5 step 2. A
// dst absent from the forward stream keeps its previous label.
func accumulate(forward map[types.DocId]map[Label]float32, prev LabelState) LabelState {
	out := make(LabelState, len(prev))
	for n, l := range prev {
		out[n] = l
	}
	for dst, byLabel := range forward {
		best, bestWeight := Label(0), float32(-1)
		for label, w := range byLabel {
			if w > bestWeight || (w == bestWeight && label < best) {
				best, bestWeight = label, w
			}
		}
		out[dst] = best
	}
	return out
}

// ThinToMaxIncoming keeps, per dst, only the maximum-weighted incoming
// edge, per §4.5 step 3's "maximum link" pass: "keeps, per dst, only the
// maximum-weighted incoming edge; other edges are negatively flagged so
// the rebuild step drops them." Here the drop is immediate (no on-disk
// flag/rebuild pass needed): this is the spanning-graph thinning that
// sparsifies the graph enough for hierarchy merge.
func ThinToMaxIncoming(edges []linkgraph.Edge) []linkgraph.Edge {
	best := make(map[types.DocId]linkgraph.Edge)
	for _, e := range edges {
		cur, ok := best[e.Dst]
		if !ok || e.Weight > cur.Weight || (e.Weight == cur.Weight && e.Src < cur.Src) {
			best[e.Dst] = e
		}
	}
	out := make([]linkgraph.Edge, 0, len(best))
	for _, e := range best {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Dst < out[j].Dst })
	return out
}

// EnforceCap splits any label group exceeding maxClusNodeNum into smaller
// groups by remapping overflow members to a new representative label,
// per §4.5 step 3's "detect label-components where a single label's group
// exceeds MaxClusNodeNum; if so, split greedily keeping cluster members
// under the cap." Splitting is deterministic: members of an oversized
// group are sorted by DocId and chunked, each chunk relabeled to its
// lowest member's id.
func EnforceCap(labels LabelState, maxClusNodeNum int) LabelState {
	if maxClusNodeNum <= 0 {
		return labels
	}
	groups := make(map[Label][]types.DocId)
	for node, label := range labels {
		groups[label] = append(groups[label], node)
	}

	out := make(LabelState, len(labels))
	for label, members := range groups {
		if len(members) <= maxClusNodeNum {
			for _, m := range members {
				out[m] = label
			}
			continue
		}
		sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })
		for start := 0; start < len(members); start += maxClusNodeNum {
			end := start + maxClusNodeNum
			if end > len(members) {
				end = len(members)
			}
			chunk := members[start:end]
			rep := chunk[0]
			for _, m := range chunk {
				out[m] = rep
			}
		}
	}
	return out
}

// Runner drives label propagation for WavePassCycles × WavePassInst total
// cycles, per §4.5: "Cycles continue for WavePassCycles (default 6) ×
// WavePassInst (default 1)."
type Runner struct {
	Cycles         int
	MaxClusNodeNum int
}

// NewRunner builds a Runner for wavePassCycles*wavePassInst total cycles.
func NewRunner(wavePassCycles, wavePassInst, maxClusNodeNum int) *Runner {
	return &Runner{Cycles: wavePassCycles * wavePassInst, MaxClusNodeNum: maxClusNodeNum}
}

// Run executes label propagation to a fixed point (by cycle count, not
// convergence test) and returns the final labels plus the thinned
// spanning-graph edge set hierarchy merge consumes.
func (r *Runner) Run(edges []linkgraph.Edge, initial LabelState) (LabelState, []linkgraph.Edge) {
	labels := initial
	thinned := edges
	for cycle := 0; cycle < r.Cycles; cycle++ {
		forward := distribute(thinned, labels)
		labels = accumulate(forward, labels)
		labels = EnforceCap(labels, r.MaxClusNodeNum)
		thinned = ThinToMaxIncoming(thinned)
	}
	return labels, thinned
}
