// Package abtree packs a cluster hierarchy into a random-access,
// doc-id-keyed tree, per §4.6 (AB-Tree Builder).
package abtree

import "github.com/standardbeagle/pulsedex/internal/types"

// Node is the builder's in-memory hierarchy representation, prior to
// packing: either an internal node with Children, or a leaf carrying an
// external DocId and its auxiliary excerpt-keyword payload.
type Node struct {
	IsLeaf       bool
	Leaf         types.DocId // leaf only
	Aux          []byte      // leaf only: length-prefixed excerpt-keyword payload
	TravProb     float32
	TotalNodeNum uint32 // leaf count under this subtree (1 for a leaf)
	SLinks       []types.SSummaryLink
	Children     []*Node

	// Start, End, and Level are attachment-time-only metadata (not
	// encoded on disk — the invariant "subsume_level equals this node's
	// level and is implicit" is why Level never needs to be written).
	// They describe this node's covered doc-id range [Start, End) and
	// its level counted up from the leaves (a leaf is level 0), letting
	// AttachSummaryLinks find the deepest owning node for each input link.
	Start, End types.DocId
	Level      uint8
}

// RootEntry is one ab_root.<shard> record: the starting DocId of a
// top-level subtree and its byte offset into the shard's node stream.
type RootEntry struct {
	Start      types.DocId
	ByteOffset int64
}
