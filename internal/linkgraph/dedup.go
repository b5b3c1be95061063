package linkgraph

import (
	"fmt"

	"github.com/standardbeagle/pulsedex/internal/types"
)

// destTable is an open-addressing (linear-probing) hash table keyed by
// destination DocId, scoped to one contiguous source run. §4.3: "opens an
// open-addressing table keyed by destination; accumulates traversal
// probability across duplicates; emits one edge per unique (src, dst) with
// summed weight." A fresh table per src run keeps memory bounded by one
// node's out-degree rather than the whole shard.
type destTable struct {
	slots []destSlot
	used  []int // indices into slots that hold a live entry, in first-seen order
	mask  uint64
}

type destSlot struct {
	dst    types.DocId
	weight float32
	live   bool
}

// newDestTable sizes the table to the next power of two at least double the
// expected out-degree, keeping load factor low enough for short probe
// chains.
func newDestTable(expectedOutDegree int) *destTable {
	size := 8
	for size < expectedOutDegree*2 {
		size *= 2
	}
	return &destTable{
		slots: make([]destSlot, size),
		mask:  uint64(size - 1),
	}
}

func (t *destTable) hash(dst types.DocId) uint64 {
	h := uint64(dst)
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	return h & t.mask
}

// add accumulates weight into dst's slot, growing via linear probing on
// collision, and resizing (rehashing) if the table fills past 70% load.
func (t *destTable) add(dst types.DocId, weight float32) {
	if len(t.used)*10 >= len(t.slots)*7 {
		t.grow()
	}
	i := t.hash(dst)
	for {
		s := &t.slots[i]
		if !s.live {
			s.dst = dst
			s.weight = weight
			s.live = true
			t.used = append(t.used, int(i))
			return
		}
		if s.dst == dst {
			s.weight += weight
			return
		}
		i = (i + 1) & t.mask
	}
}

func (t *destTable) grow() {
	old := t.slots
	oldUsed := t.used
	t.slots = make([]destSlot, len(old)*2)
	t.mask = uint64(len(t.slots) - 1)
	t.used = make([]int, 0, len(oldUsed))
	for _, j := range oldUsed {
		s := old[j]
		i := t.hash(s.dst)
		for t.slots[i].live {
			i = (i + 1) & t.mask
		}
		t.slots[i] = s
		t.used = append(t.used, int(i))
	}
}

// entries returns the accumulated (dst, weight) pairs in first-seen order.
func (t *destTable) entries() []destSlot {
	out := make([]destSlot, 0, len(t.used))
	for _, i := range t.used {
		out = append(out, t.slots[i])
	}
	return out
}

// PulseLookup returns a node's current pulse score, averaged from the two
// pulse streams (base and incremental) upstream maintains. Implementations
// may fall back to 1/BaseNodeCount for nodes not yet scored.
type PulseLookup func(node types.DocId) float32

// Merger runs the duplicate-edge merge over one contiguous-by-source run of
// RawEdges at a time, normalizing by the source node's pulse score.
type Merger struct {
	pulse PulseLookup
}

// NewMerger builds a Merger consulting pulse for per-source normalization.
func NewMerger(pulse PulseLookup) *Merger {
	return &Merger{pulse: pulse}
}

// MergeRun deduplicates and normalizes one source node's contiguous run of
// RawEdges (all sharing run[0].Src). It is an error to pass a run mixing
// more than one source id.
func (m *Merger) MergeRun(run []RawEdge) ([]Edge, error) {
	if len(run) == 0 {
		return nil, nil
	}
	src := run[0].Src
	for _, e := range run {
		if e.Src != src {
			return nil, fmt.Errorf("linkgraph: MergeRun: mixed source nodes %d and %d in one run", src, e.Src)
		}
	}

	table := newDestTable(len(run))
	for _, e := range run {
		table.add(e.Dst, e.Prob*e.Source.scale())
	}

	norm := m.pulse(src)
	if norm <= 0 {
		norm = 1
	}

	entries := table.entries()
	out := make([]Edge, 0, len(entries))
	for _, s := range entries {
		out = append(out, Edge{Src: src, Dst: s.dst, Weight: s.weight / norm})
	}
	return out, nil
}
