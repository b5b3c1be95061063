package shuffle

import (
	"container/heap"
	"sort"
)

// Comparator reports whether a sorts before b. The data_handler_name
// selects which comparator a stage plugs in here (spec §4.1: "same but
// with a comparator chosen by data_handler_name").
type Comparator func(a, b Record) bool

// CreateQuickSortedBlock sorts records with an arbitrary comparator
// (§4.1 create_quick_sorted_block). Unlike the radix primitives this isn't
// restricted to a fixed-width key prefix — any stage-specific ordering
// (numeric doc id, composite cluster tuple, ...) can be expressed as a
// Comparator.
func CreateQuickSortedBlock(records []Record, less Comparator) []Record {
	out := make([]Record, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// MergeQuickSortedBlocks k-way merges blocks already sorted by
// CreateQuickSortedBlock under the same comparator (§4.1
// merge_quick_sorted_blocks).
func MergeQuickSortedBlocks(blocks [][]Record, less Comparator) []Record {
	h := &quickMergeHeap{less: less}
	heap.Init(h)
	for bi, block := range blocks {
		if len(block) == 0 {
			continue
		}
		heap.Push(h, quickHeapItem{rec: block[0], block: bi, index: 0})
	}

	var out []Record
	for h.Len() > 0 {
		top := heap.Pop(h).(quickHeapItem)
		out = append(out, top.rec)
		next := top.index + 1
		if next < len(blocks[top.block]) {
			heap.Push(h, quickHeapItem{rec: blocks[top.block][next], block: top.block, index: next})
		}
	}
	return out
}

type quickHeapItem struct {
	rec   Record
	block int
	index int
}

type quickMergeHeap struct {
	items []quickHeapItem
	less  Comparator
}

func (h *quickMergeHeap) Len() int { return len(h.items) }
func (h *quickMergeHeap) Less(i, j int) bool {
	return h.less(h.items[i].rec, h.items[j].rec)
}
func (h *quickMergeHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *quickMergeHeap) Push(x any)    { h.items = append(h.items, x.(quickHeapItem)) }
func (h *quickMergeHeap) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	h.items = old[:n-1]
	return item
}
