package abtree

import (
	"encoding/binary"
	"fmt"
	"io"

	pdxerrors "github.com/standardbeagle/pulsedex/internal/errors"
	"github.com/standardbeagle/pulsedex/internal/types"
)

// headerSize is the fixed ABNode header: ChildNum, SLinkNum, TotalNodeNum,
// TravProb, IsLeaf.
const headerSize = 2 + 2 + 4 + 4 + 1

// ssummaryLinkSize is the reduced SSummaryLink's on-disk width: Src, Dst,
// TravProb, IsForward, CreateLevel — subsume_level is implicit (the
// carrying node's own level), per §4.6's node encoding.
const ssummaryLinkSize = 8 + 8 + 4 + 1 + 1

// childOffsetSize is one signed byte-offset delta back to a child's start.
const childOffsetSize = 8

// leafFixedSize is the external DocId plus a uint32 aux length prefix.
const leafFixedSize = 8 + 4

// encodedSize returns how many bytes n's own header (excluding its
// children's subtrees) occupies.
func encodedSize(n *Node) int64 {
	size := int64(headerSize)
	if n.IsLeaf {
		size += leafFixedSize + int64(len(n.Aux))
	} else {
		size += int64(len(n.Children)) * childOffsetSize
	}
	size += int64(len(n.SLinks)) * ssummaryLinkSize
	return size
}

// encodeNode writes n's own fields (not its children's subtrees), using
// childOffsets[i] as the signed byte delta from n's own start to child i's
// start, per §4.6: "for each child the signed byte-offset delta back to
// the child's start."
func encodeNode(w io.Writer, n *Node, childOffsets []int64) error {
	fields := []any{
		uint16(len(n.Children)),
		uint16(len(n.SLinks)),
		n.TotalNodeNum,
		n.TravProb,
		n.IsLeaf,
	}
	for _, f := range fields {
		if err := binary.Write(w, binary.LittleEndian, f); err != nil {
			return fmt.Errorf("abtree: write node header: %w", err)
		}
	}

	if n.IsLeaf {
		if err := binary.Write(w, binary.LittleEndian, uint64(n.Leaf)); err != nil {
			return fmt.Errorf("abtree: write leaf id: %w", err)
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(len(n.Aux))); err != nil {
			return fmt.Errorf("abtree: write aux length: %w", err)
		}
		if _, err := w.Write(n.Aux); err != nil {
			return fmt.Errorf("abtree: write aux payload: %w", err)
		}
	} else {
		for _, off := range childOffsets {
			if off <= 0 {
				return fmt.Errorf("abtree: child offset %d is not strictly positive", off)
			}
			if err := binary.Write(w, binary.LittleEndian, off); err != nil {
				return fmt.Errorf("abtree: write child offset: %w", err)
			}
		}
	}

	for _, link := range n.SLinks {
		if err := encodeSSummaryLink(w, link); err != nil {
			return err
		}
	}
	return nil
}

func encodeSSummaryLink(w io.Writer, link types.SSummaryLink) error {
	fields := []any{
		uint64(link.Src),
		uint64(link.Dst),
		link.TravProb,
		link.IsForward,
		link.CreateLevel,
	}
	for _, f := range fields {
		if err := binary.Write(w, binary.LittleEndian, f); err != nil {
			return fmt.Errorf("abtree: write summary link: %w", err)
		}
	}
	return nil
}

// decodedNode is one node's own fields as read off disk, with child
// offsets left unresolved (absolute positions are derived by the reader
// from the node's own file position).
type decodedNode struct {
	childNum     uint16
	slinkNum     uint16
	totalNodeNum uint32
	travProb     float32
	isLeaf       bool
	leaf         types.DocId
	aux          []byte
	childOffsets []int64
	slinks       []types.SSummaryLink
}

// decodeNode reads one ABNode block from r, which must be positioned at
// the node's start.
func decodeNode(r io.Reader, shard int) (*decodedNode, error) {
	d := &decodedNode{}
	fields := []any{&d.childNum, &d.slinkNum, &d.totalNodeNum, &d.travProb, &d.isLeaf}
	for i, f := range fields {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return nil, pdxerrors.NewCorrupted("abtree", shard, "ab_node", fmt.Sprintf("truncated header field %d", i), err)
		}
	}

	if d.isLeaf {
		var leaf uint64
		if err := binary.Read(r, binary.LittleEndian, &leaf); err != nil {
			return nil, pdxerrors.NewCorrupted("abtree", shard, "ab_node", "truncated leaf id", err)
		}
		d.leaf = types.DocId(leaf)
		var auxLen uint32
		if err := binary.Read(r, binary.LittleEndian, &auxLen); err != nil {
			return nil, pdxerrors.NewCorrupted("abtree", shard, "ab_node", "truncated aux length", err)
		}
		d.aux = make([]byte, auxLen)
		if _, err := io.ReadFull(r, d.aux); err != nil {
			return nil, pdxerrors.NewCorrupted("abtree", shard, "ab_node", "truncated aux payload", err)
		}
	} else {
		d.childOffsets = make([]int64, d.childNum)
		for i := range d.childOffsets {
			if err := binary.Read(r, binary.LittleEndian, &d.childOffsets[i]); err != nil {
				return nil, pdxerrors.NewCorrupted("abtree", shard, "ab_node", "truncated child offset", err)
			}
		}
	}

	d.slinks = make([]types.SSummaryLink, d.slinkNum)
	for i := range d.slinks {
		link, err := decodeSSummaryLink(r, shard)
		if err != nil {
			return nil, err
		}
		d.slinks[i] = link
	}
	return d, nil
}

func decodeSSummaryLink(r io.Reader, shard int) (types.SSummaryLink, error) {
	var src, dst uint64
	var link types.SSummaryLink
	if err := binary.Read(r, binary.LittleEndian, &src); err != nil {
		return link, pdxerrors.NewCorrupted("abtree", shard, "ab_node", "truncated summary link src", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &dst); err != nil {
		return link, pdxerrors.NewCorrupted("abtree", shard, "ab_node", "truncated summary link dst", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &link.TravProb); err != nil {
		return link, pdxerrors.NewCorrupted("abtree", shard, "ab_node", "truncated summary link trav_prob", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &link.IsForward); err != nil {
		return link, pdxerrors.NewCorrupted("abtree", shard, "ab_node", "truncated summary link is_forward", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &link.CreateLevel); err != nil {
		return link, pdxerrors.NewCorrupted("abtree", shard, "ab_node", "truncated summary link create_level", err)
	}
	link.Src, link.Dst = types.DocId(src), types.DocId(dst)
	return link, nil
}
