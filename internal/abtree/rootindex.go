package abtree

import (
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	pdxerrors "github.com/standardbeagle/pulsedex/internal/errors"
	"github.com/standardbeagle/pulsedex/internal/types"
)

// RootIndex is one shard's ab_root.<shard>: a sorted-by-Start list of
// top-level subtree entries, per §4.6: "lists, per top-level subtree, a
// (DocId range start, byte_offset) pair."
type RootIndex struct {
	entries []RootEntry // sorted ascending by Start
}

// NewRootIndex builds a RootIndex, sorting entries by Start.
func NewRootIndex(entries []RootEntry) *RootIndex {
	sorted := append([]RootEntry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
	return &RootIndex{entries: sorted}
}

// Lookup finds the subtree that may contain docID via binary search: the
// last entry whose Start is <= docID, per §4.6: "Lookup by doc_id does a
// binary search in the root index, then descends following child
// offsets."
func (ri *RootIndex) Lookup(docID types.DocId) (RootEntry, bool) {
	i := sort.Search(len(ri.entries), func(i int) bool { return ri.entries[i].Start > docID })
	if i == 0 {
		return RootEntry{}, false
	}
	return ri.entries[i-1], true
}

// Encode writes the root index in Start order.
func (ri *RootIndex) Encode(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(ri.entries))); err != nil {
		return fmt.Errorf("abtree: write root index count: %w", err)
	}
	for _, e := range ri.entries {
		if err := binary.Write(w, binary.LittleEndian, uint64(e.Start)); err != nil {
			return fmt.Errorf("abtree: write root index start: %w", err)
		}
		if err := binary.Write(w, binary.LittleEndian, e.ByteOffset); err != nil {
			return fmt.Errorf("abtree: write root index offset: %w", err)
		}
	}
	return nil
}

// DecodeRootIndex reads a root index previously written by Encode.
func DecodeRootIndex(r io.Reader, shard int) (*RootIndex, error) {
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, pdxerrors.NewCorrupted("abtree", shard, "ab_root", "truncated entry count", err)
	}
	entries := make([]RootEntry, count)
	for i := range entries {
		var start uint64
		if err := binary.Read(r, binary.LittleEndian, &start); err != nil {
			return nil, pdxerrors.NewCorrupted("abtree", shard, "ab_root", "truncated start", err)
		}
		if err := binary.Read(r, binary.LittleEndian, &entries[i].ByteOffset); err != nil {
			return nil, pdxerrors.NewCorrupted("abtree", shard, "ab_root", "truncated byte_offset", err)
		}
		entries[i].Start = types.DocId(start)
	}
	return &RootIndex{entries: entries}, nil
}
