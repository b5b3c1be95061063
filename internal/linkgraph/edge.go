// Package linkgraph integrates the webgraph and keyword link sets produced
// upstream into a single deduplicated, pulse-normalized, sharded edge set
// per §4.3 (Link-Graph Construction).
package linkgraph

import "github.com/standardbeagle/pulsedex/internal/types"

// EdgeSource distinguishes the two input link sets mixed by the merge: the
// crawled webgraph (weight scale 1) and the keyword-co-occurrence graph
// (weight scale 0.1).
type EdgeSource uint8

const (
	SourceWebgraph EdgeSource = iota
	SourceKeyword
)

// scale returns the source-specific weight multiplier applied before
// mixing, per §4.3: "Webgraph edges and keyword edges are scaled by 1 and
// 0.1 respectively before mixing."
func (s EdgeSource) scale() float32 {
	if s == SourceKeyword {
		return 0.1
	}
	return 1
}

// RawEdge is one input traversal observation prior to dedup and
// normalization. Src runs are expected contiguous in the input stream, the
// ordering the merge's open-addressing table relies on.
type RawEdge struct {
	Src, Dst types.DocId
	Prob     float32 // traversal probability contributed by this observation
	Source   EdgeSource
}

// Edge is one deduplicated, normalized output edge: exactly one per unique
// (src, dst) pair, written to bin_link_set0.set.<c>.
type Edge struct {
	Src, Dst types.DocId
	Weight   float32
}
