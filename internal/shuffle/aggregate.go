package shuffle

import (
	"encoding/binary"
	"math"
)

// EncodeCount packs a per-key occurrence count as an 8-byte little-endian
// integer, the Value half of the records FindKeyOccurrence/
// FindDuplicateKeyOccurrence emit.
func EncodeCount(n int64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(n))
	return buf[:]
}

// DecodeCount is EncodeCount's inverse.
func DecodeCount(v []byte) int64 {
	return int64(binary.LittleEndian.Uint64(v))
}

// EncodeWeight packs a per-key weight sum as an 8-byte little-endian
// float64, the Value half of the records FindKeyWeight/
// FindDuplicateKeyWeight emit.
func EncodeWeight(w float64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(w))
	return buf[:]
}

// DecodeWeight is EncodeWeight's inverse.
func DecodeWeight(v []byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(v))
}

// WeightFunc extracts a record's contribution to its key's weight sum; the
// data_type string in spec §4.1 selects which WeightFunc a caller plugs in.
type WeightFunc func(Record) float64

// FindKeyOccurrence groups sorted-by-key records by key and emits one
// (key, count) record per distinct key, in the order keys first appear
// (§4.1 find_key_occurrence). Input must already be key-sorted, e.g. by
// CreateRadixSortedBlock/MergeRadixSortedBlocks.
func FindKeyOccurrence(sorted []Record) []Record {
	return groupByKey(sorted, func(group []Record) []byte {
		return EncodeCount(int64(len(group)))
	})
}

// FindKeyWeight groups sorted-by-key records by key and emits one
// (key, sum_of_weight) record per distinct key (§4.1 find_key_weight).
func FindKeyWeight(sorted []Record, weightOf WeightFunc) []Record {
	return groupByKey(sorted, func(group []Record) []byte {
		var sum float64
		for _, r := range group {
			sum += weightOf(r)
		}
		return EncodeWeight(sum)
	})
}

// FindDuplicateKeyOccurrence is FindKeyOccurrence's counterpart that
// re-emits one (key, aggregate) record per *input* record rather than per
// distinct key, preserving input order within the shard (§4.1
// find_duplicate_key_occurrence) — every record sharing a key gets the
// same count stamped onto it.
func FindDuplicateKeyOccurrence(sorted []Record) []Record {
	return stampByKey(sorted, func(group []Record) []byte {
		return EncodeCount(int64(len(group)))
	})
}

// FindDuplicateKeyWeight is FindKeyWeight's re-emit-per-input-record
// counterpart (§4.1 find_duplicate_key_weight).
func FindDuplicateKeyWeight(sorted []Record, weightOf WeightFunc) []Record {
	return stampByKey(sorted, func(group []Record) []byte {
		var sum float64
		for _, r := range group {
			sum += weightOf(r)
		}
		return EncodeWeight(sum)
	})
}

func groupByKey(sorted []Record, aggregate func(group []Record) []byte) []Record {
	var out []Record
	i := 0
	for i < len(sorted) {
		j := i + 1
		for j < len(sorted) && string(sorted[j].Key) == string(sorted[i].Key) {
			j++
		}
		out = append(out, Record{Key: sorted[i].Key, Value: aggregate(sorted[i:j])})
		i = j
	}
	return out
}

func stampByKey(sorted []Record, aggregate func(group []Record) []byte) []Record {
	out := make([]Record, 0, len(sorted))
	i := 0
	for i < len(sorted) {
		j := i + 1
		for j < len(sorted) && string(sorted[j].Key) == string(sorted[i].Key) {
			j++
		}
		value := aggregate(sorted[i:j])
		for k := i; k < j; k++ {
			out = append(out, Record{Key: sorted[k].Key, Value: value})
		}
		i = j
	}
	return out
}
