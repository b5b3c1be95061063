// Package assoc implements stage 4.8: turning per-document excerpt tokens
// into a ranked association table, a per-excerpt keyword list, and a
// text-index from a query string to the associated-term list.
package assoc

import (
	"encoding/binary"

	"github.com/standardbeagle/pulsedex/internal/shuffle"
	"github.com/standardbeagle/pulsedex/internal/types"
)

// PairKey is a candidate association: two tokens observed adjacent in an
// excerpt's culled word stream.
type PairKey struct {
	A, B types.WordId
}

// SlidingPairs extracts every consecutive-token pair from a culled excerpt
// word stream, per §4.8: "sliding-window pairs of consecutive tokens form
// candidate associations."
func SlidingPairs(tokens []types.WordId) []PairKey {
	if len(tokens) < 2 {
		return nil
	}
	pairs := make([]PairKey, 0, len(tokens)-1)
	for i := 0; i+1 < len(tokens); i++ {
		pairs = append(pairs, PairKey{A: tokens[i], B: tokens[i+1]})
	}
	return pairs
}

// EncodeKey packs a PairKey as the 8-byte shuffle.Record key pair
// occurrence counting sorts and groups by.
func (p PairKey) EncodeKey() []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(p.A))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(p.B))
	return buf[:]
}

// DecodePairKey is EncodeKey's inverse.
func DecodePairKey(key []byte) PairKey {
	return PairKey{
		A: types.WordId(binary.LittleEndian.Uint32(key[0:4])),
		B: types.WordId(binary.LittleEndian.Uint32(key[4:8])),
	}
}

// PairCount is one distinct pair's joint occurrence count across the
// corpus.
type PairCount struct {
	Pair  PairKey
	Joint int64
}

// CountPairs shards candidate pairs through the shuffle substrate's
// key-occurrence primitive (§4.8: "pair occurrences are counted (shuffle +
// KeyOccurrence)"): pairs are turned into Records keyed by EncodeKey,
// radix-sorted by that fixed-width key, then grouped by FindKeyOccurrence.
func CountPairs(pairs []PairKey) ([]PairCount, error) {
	records := make([]shuffle.Record, len(pairs))
	for i, p := range pairs {
		records[i] = shuffle.Record{Key: p.EncodeKey()}
	}

	sorted, err := shuffle.CreateRadixSortedBlock(records, 8)
	if err != nil {
		return nil, err
	}

	grouped := shuffle.FindKeyOccurrence(sorted)
	out := make([]PairCount, len(grouped))
	for i, g := range grouped {
		out[i] = PairCount{Pair: DecodePairKey(g.Key), Joint: shuffle.DecodeCount(g.Value)}
	}
	return out, nil
}
