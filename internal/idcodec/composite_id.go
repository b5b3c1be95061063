package idcodec

import (
	"github.com/standardbeagle/pulsedex/internal/encoding"
)

// ShardedID packing:
// - Lower 32 bits: shard-local offset
// - Upper 32 bits: shard index
//
// Used to hand operators a single copy-pasteable token for a record that is
// really identified by (shard, local offset) — e.g. a HierarchyStat's
// position within GlobalData/ClusterHiearchy, or a word dictionary's
// per-shard local index before global-id resolution (§3, dictionary_offset).

// EncodeSharded encodes a (shard, localOffset) pair into a single base-63
// string.
func EncodeSharded(shard int, localOffset uint32) string {
	combined := encoding.PackUint32Pair(localOffset, uint32(shard))
	return EncodeNoZero(combined)
}

// DecodeSharded decodes a base-63 string back into (shard, localOffset).
func DecodeSharded(encoded string) (shard int, localOffset uint32, err error) {
	if encoded == "" {
		return 0, 0, ErrEmptyString
	}
	combined, err := Decode(encoded)
	if err != nil {
		return 0, 0, err
	}
	lower, upper := encoding.UnpackUint32Pair(combined)
	return int(upper), lower, nil
}
