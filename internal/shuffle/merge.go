package shuffle

import (
	"bufio"
	"bytes"
)

// PackValues concatenates a group of values into one length-prefixed blob,
// the Value payload MergeSet/MergeSortedSet emit for a single key.
func PackValues(values [][]byte) []byte {
	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)
	for _, v := range values {
		_ = EncodeRecord(bw, Record{Value: v})
	}
	bw.Flush()
	return buf.Bytes()
}

// UnpackValues is PackValues' inverse.
func UnpackValues(packed []byte) [][]byte {
	recs, err := DecodeAllRecords(bytes.NewReader(packed))
	if err != nil {
		return nil
	}
	out := make([][]byte, len(recs))
	for i, r := range recs {
		out[i] = r.Value
	}
	return out
}

// MergeSet groups arbitrarily-ordered key/value records by key, emitting
// one record per distinct key (Value = PackValues of every member's
// Value), in first-appearance order (§4.1 merge_set).
func MergeSet(records []Record) []Record {
	order := make([]string, 0)
	groups := make(map[string][][]byte)
	keys := make(map[string][]byte)
	for _, r := range records {
		k := string(r.Key)
		if _, ok := groups[k]; !ok {
			order = append(order, k)
			keys[k] = r.Key
		}
		groups[k] = append(groups[k], r.Value)
	}

	out := make([]Record, 0, len(order))
	for _, k := range order {
		out = append(out, Record{Key: keys[k], Value: PackValues(groups[k])})
	}
	return out
}

// MergeSortedSet is MergeSet's counterpart for already key-sorted input: it
// groups by scanning adjacent runs rather than hashing the whole input
// (§4.1 merge_sorted_set).
func MergeSortedSet(sorted []Record) []Record {
	return groupByKey(sorted, func(group []Record) []byte {
		values := make([][]byte, len(group))
		for i, r := range group {
			values[i] = r.Value
		}
		return PackValues(values)
	})
}
