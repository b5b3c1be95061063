package abtree

import (
	"fmt"
	"io"

	"github.com/standardbeagle/pulsedex/internal/types"
)

// PageSource reads one shard's packed node stream at arbitrary offsets,
// the on-disk ab_node file a Reader seeks into.
type PageSource interface {
	io.ReaderAt
}

// Reader looks up documents in one shard's AB-tree by DocId, per §4.6:
// binary search the root index, then descend following child offsets,
// reading each block on demand through an LRU page cache.
type Reader struct {
	shard  int
	src    PageSource
	root   *RootIndex
	cache  *PageCache
}

// NewReader builds a Reader over one shard's packed node stream.
func NewReader(shard int, src PageSource, root *RootIndex, cache *PageCache) *Reader {
	return &Reader{shard: shard, src: src, root: root, cache: cache}
}

// Result is one leaf lookup's outcome.
type Result struct {
	DocId types.DocId
	Aux   []byte
}

// Lookup finds the leaf for docID, descending from the root index entry
// whose range may contain it. Since the wire format carries no explicit
// per-child key range (only child byte offsets and leaf counts), descent
// picks the last child whose own leftmost leaf is <= docID — the same
// "peek the first leaf, compare, keep going" scan the teacher's
// SymbolLocationIndex range lookups use, just walking tree pages instead
// of a flat line index.
func (r *Reader) Lookup(docID types.DocId) (Result, bool, error) {
	entry, ok := r.root.Lookup(docID)
	if !ok {
		return Result{}, false, nil
	}

	offset := entry.ByteOffset
	for {
		node, err := r.readPage(offset)
		if err != nil {
			return Result{}, false, err
		}
		if node.isLeaf {
			if node.leaf == docID {
				return Result{DocId: node.leaf, Aux: node.aux}, true, nil
			}
			return Result{}, false, nil
		}

		nextOffset, descended, err := r.pickChild(node, offset, docID)
		if err != nil {
			return Result{}, false, err
		}
		if !descended {
			return Result{}, false, nil
		}
		offset = nextOffset
	}
}

// pickChild scans node's children (reading each on demand) for the last
// one whose leftmost leaf is <= docID.
func (r *Reader) pickChild(node *decodedNode, nodeOffset int64, docID types.DocId) (int64, bool, error) {
	best := int64(-1)
	found := false
	for _, delta := range node.childOffsets {
		childOffset := nodeOffset + delta
		leaf, err := r.leftmostLeafAt(childOffset)
		if err != nil {
			return 0, false, err
		}
		if leaf > docID {
			break
		}
		best, found = childOffset, true
	}
	return best, found, nil
}

// leftmostLeafAt reads childOffset and descends its own leftmost spine
// until a leaf is reached, to discover the child subtree's minimum DocId.
func (r *Reader) leftmostLeafAt(offset int64) (types.DocId, error) {
	for {
		node, err := r.readPage(offset)
		if err != nil {
			return 0, err
		}
		if node.isLeaf {
			return node.leaf, nil
		}
		if len(node.childOffsets) == 0 {
			return 0, fmt.Errorf("abtree: internal node at offset %d has no children", offset)
		}
		offset = offset + node.childOffsets[0]
	}
}

func (r *Reader) readPage(offset int64) (*decodedNode, error) {
	if node, ok := r.cache.Get(r.shard, offset); ok {
		return node, nil
	}
	sr := io.NewSectionReader(r.src, offset, 1<<30)
	node, err := decodeNode(sr, r.shard)
	if err != nil {
		return nil, err
	}
	r.cache.Put(r.shard, offset, node)
	return node, nil
}
