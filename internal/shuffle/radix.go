package shuffle

import (
	"container/heap"

	pdxerrors "github.com/standardbeagle/pulsedex/internal/errors"
)

// CreateRadixSortedBlock stably sorts records by the low keyWidth bytes of
// their key using LSD (least-significant-digit-first) base-256 counting
// sort, one pass per byte from the last byte of the prefix back to the
// first (§4.1 create_radix_sorted_block). keyWidth must not exceed the
// shortest key's length; BadItemSize (modeled as CorruptedError here,
// matching §7's "Radix sort fails with BadItemSize if the sort width
// exceeds the record width") is returned otherwise.
func CreateRadixSortedBlock(records []Record, keyWidth int) ([]Record, error) {
	out := make([]Record, len(records))
	copy(out, records)

	for _, r := range out {
		if len(r.Key) < keyWidth {
			return nil, pdxerrors.NewCorrupted("shuffle", 0, "radix_sort", "BadItemSize",
				errBadItemSize(keyWidth, len(r.Key)))
		}
	}

	for byteIdx := keyWidth - 1; byteIdx >= 0; byteIdx-- {
		out = countingSortPass(out, byteIdx)
	}
	return out, nil
}

func errBadItemSize(width, got int) error {
	return &badItemSizeError{width: width, got: got}
}

type badItemSizeError struct {
	width, got int
}

func (e *badItemSizeError) Error() string {
	return "sort width exceeds record key width"
}

func countingSortPass(records []Record, byteIdx int) []Record {
	var counts [257]int
	for _, r := range records {
		counts[int(r.Key[byteIdx])+1]++
	}
	for i := 1; i < 257; i++ {
		counts[i] += counts[i-1]
	}
	out := make([]Record, len(records))
	positions := counts
	for _, r := range records {
		b := r.Key[byteIdx]
		out[positions[b]] = r
		positions[b]++
	}
	return out
}

// radixHeapItem is one k-way merge candidate: the next record from a given
// pre-sorted block, tagged with which block it came from so the heap can
// pull the next item from the same block once this one is consumed.
type radixHeapItem struct {
	rec      Record
	block    int
	index    int
	keyWidth int
}

type radixMergeHeap []radixHeapItem

func (h radixMergeHeap) Len() int { return len(h) }
func (h radixMergeHeap) Less(i, j int) bool {
	w := h[i].keyWidth
	return lessKeyPrefix(h[i].rec.Key, h[j].rec.Key, w)
}
func (h radixMergeHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *radixMergeHeap) Push(x any)        { *h = append(*h, x.(radixHeapItem)) }
func (h *radixMergeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func lessKeyPrefix(a, b []byte, width int) bool {
	if width <= 0 || width > len(a) || width > len(b) {
		width = minInt(len(a), len(b))
	}
	for i := 0; i < width; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// MergeRadixSortedBlocks k-way merges blocks already individually sorted by
// CreateRadixSortedBlock into a single run, comparing the same keyWidth-byte
// prefix used to sort them (§4.1 merge_radix_sorted_blocks).
func MergeRadixSortedBlocks(blocks [][]Record, keyWidth int) []Record {
	h := &radixMergeHeap{}
	heap.Init(h)
	for bi, block := range blocks {
		if len(block) == 0 {
			continue
		}
		heap.Push(h, radixHeapItem{rec: block[0], block: bi, index: 0, keyWidth: keyWidth})
	}

	var out []Record
	for h.Len() > 0 {
		top := heap.Pop(h).(radixHeapItem)
		out = append(out, top.rec)
		next := top.index + 1
		if next < len(blocks[top.block]) {
			heap.Push(h, radixHeapItem{rec: blocks[top.block][next], block: top.block, index: next, keyWidth: keyWidth})
		}
	}
	return out
}
