package lexicon

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	pdxerrors "github.com/standardbeagle/pulsedex/internal/errors"
)

// GlobalIndexOffset is SGlobalIndexOffset[d] from §4.2: the per-division
// base every local id in division d is added to, to become global.
type GlobalIndexOffset struct {
	WordOffset  uint32
	LinkOffset  uint32
	BaseURLSize int64
}

// DictionaryOffset is the dictionary_offset prefix record (§6 "File
// layout"): a flat, shard_count+1-length prefix-sum of word counts per
// division, plus the two scalars every division's offset derivation needs.
type DictionaryOffset struct {
	BaseURLCount   int64
	TotalNodeCount int64
	WordCount      uint32
	// Offsets holds shard_count+1 cumulative word-id boundaries: division d
	// owns local ids [0, Offsets[d+1]-Offsets[d]), based at Offsets[d].
	Offsets []uint32
}

// NewDictionaryOffset builds a DictionaryOffset from each division's
// distinct-word count, in division order.
func NewDictionaryOffset(baseURLCount, totalNodeCount int64, perDivisionWordCounts []uint32) *DictionaryOffset {
	offsets := make([]uint32, len(perDivisionWordCounts)+1)
	var total uint32
	for d, count := range perDivisionWordCounts {
		offsets[d] = total
		total += count
	}
	offsets[len(perDivisionWordCounts)] = total
	return &DictionaryOffset{
		BaseURLCount:   baseURLCount,
		TotalNodeCount: totalNodeCount,
		WordCount:      total,
		Offsets:        offsets,
	}
}

// ForDivision derives SGlobalIndexOffset[d] (§4.2): WordOffset is this
// record's own word-id prefix sum; LinkOffset places non-spidered URL ids
// immediately after every base-doc id, so it starts at BaseURLCount and
// advances by the same per-division prefix-sum shape as words.
func (do *DictionaryOffset) ForDivision(d int) (GlobalIndexOffset, error) {
	if d < 0 || d+1 >= len(do.Offsets) {
		return GlobalIndexOffset{}, fmt.Errorf("lexicon: division %d out of range for %d offsets", d, len(do.Offsets))
	}
	return GlobalIndexOffset{
		WordOffset:  do.Offsets[d],
		LinkOffset:  uint32(do.BaseURLCount) + do.Offsets[d],
		BaseURLSize: do.BaseURLCount,
	}, nil
}

// DivisionCount returns the number of divisions this record covers.
func (do *DictionaryOffset) DivisionCount() int {
	if len(do.Offsets) == 0 {
		return 0
	}
	return len(do.Offsets) - 1
}

// Encode writes the dictionary_offset prefix record.
func (do *DictionaryOffset) Encode(w io.Writer) error {
	fields := []any{
		do.BaseURLCount,
		do.TotalNodeCount,
		do.WordCount,
		uint32(len(do.Offsets)),
	}
	for _, f := range fields {
		if err := binary.Write(w, binary.LittleEndian, f); err != nil {
			return fmt.Errorf("lexicon: write dictionary_offset header: %w", err)
		}
	}
	for _, off := range do.Offsets {
		if err := binary.Write(w, binary.LittleEndian, off); err != nil {
			return fmt.Errorf("lexicon: write dictionary_offset entry: %w", err)
		}
	}
	return nil
}

// DecodeDictionaryOffset reads a dictionary_offset prefix record.
func DecodeDictionaryOffset(r io.Reader) (*DictionaryOffset, error) {
	do := &DictionaryOffset{}
	var offsetCount uint32

	if err := binary.Read(r, binary.LittleEndian, &do.BaseURLCount); err != nil {
		return nil, pdxerrors.NewCorrupted("lexicon", 0, "dictionary_offset", "truncated base_url_count", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &do.TotalNodeCount); err != nil {
		return nil, pdxerrors.NewCorrupted("lexicon", 0, "dictionary_offset", "truncated total_node_count", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &do.WordCount); err != nil {
		return nil, pdxerrors.NewCorrupted("lexicon", 0, "dictionary_offset", "truncated word_count", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &offsetCount); err != nil {
		return nil, pdxerrors.NewCorrupted("lexicon", 0, "dictionary_offset", "truncated offset_count", err)
	}

	do.Offsets = make([]uint32, offsetCount)
	for i := range do.Offsets {
		if err := binary.Read(r, binary.LittleEndian, &do.Offsets[i]); err != nil {
			return nil, pdxerrors.NewCorrupted("lexicon", i, "dictionary_offset", "truncated offsets array", err)
		}
	}
	return do, nil
}

// EncodeToBytes is a convenience wrapper for callers that want an in-memory
// buffer rather than streaming to a file.
func (do *DictionaryOffset) EncodeToBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := do.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
