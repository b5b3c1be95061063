package abtree

import (
	"bytes"
	"fmt"

	"github.com/standardbeagle/pulsedex/internal/types"
)

// Builder packs a forest of top-level hierarchy subtrees into one shard's
// node stream plus its root index, via a depth-first walk per §4.6.
type Builder struct {
	sizeCache map[*Node]int64
}

// NewBuilder builds an empty Builder.
func NewBuilder() *Builder {
	return &Builder{sizeCache: make(map[*Node]int64)}
}

// subtreeSize returns the total encoded size of n and everything beneath
// it, memoized since the pre-order writer and the offset computation both
// need it.
func (b *Builder) subtreeSize(n *Node) int64 {
	if size, ok := b.sizeCache[n]; ok {
		return size
	}
	size := encodedSize(n)
	for _, c := range n.Children {
		size += b.subtreeSize(c)
	}
	b.sizeCache[n] = size
	return size
}

// BuildShard packs subtrees (one per top-level hierarchy group owned by
// this shard) into a single node stream, in the order given, and returns
// the corresponding ab_root.<shard> entries.
func (b *Builder) BuildShard(subtrees []*Node) ([]byte, []RootEntry, error) {
	var buf bytes.Buffer
	var root []RootEntry
	for _, st := range subtrees {
		offset := int64(buf.Len())
		if err := b.writeSubtree(&buf, st); err != nil {
			return nil, nil, fmt.Errorf("abtree: build shard: %w", err)
		}
		root = append(root, RootEntry{Start: leftmostLeaf(st), ByteOffset: offset})
	}
	return buf.Bytes(), root, nil
}

// writeSubtree lays out n followed immediately by each child's whole
// subtree in order (pre-order), so every child offset is a small positive
// delta computed from already-known subtree sizes — the invariant that
// "child offsets are strictly positive."
func (b *Builder) writeSubtree(buf *bytes.Buffer, n *Node) error {
	ownSize := encodedSize(n)
	offsets := make([]int64, len(n.Children))
	acc := ownSize
	for i, c := range n.Children {
		offsets[i] = acc
		acc += b.subtreeSize(c)
	}

	if err := encodeNode(buf, n, offsets); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := b.writeSubtree(buf, c); err != nil {
			return err
		}
	}
	return nil
}

// leftmostLeaf returns the DocId of n's first leaf in pre-order, which —
// by the invariant that the pre-order leaf sequence equals sorted
// base-doc-id order — is n's subtree's minimum DocId.
func leftmostLeaf(n *Node) types.DocId {
	for !n.IsLeaf {
		n = n.Children[0]
	}
	return n.Leaf
}
