package sortedhits

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"

	"github.com/standardbeagle/pulsedex/internal/shuffle"
	"github.com/standardbeagle/pulsedex/internal/types"
)

// Sort orders hits by (word_id, cluster_doc_id, enc), per §4.7's "posting
// lists from 4.2 are sorted by (word_id, cluster_doc_id, enc), where
// cluster_doc_id is the hierarchy-renumbered doc id read from the backward
// cluster map." Returns an error the moment any hit's DocId is missing
// from clusters, since that is a fatal cross-stream Mismatch, not a
// recoverable condition.
//
// The composite key is packed into a shuffle.Record and ordered with
// create_quick_sorted_block (§4.1) rather than a bare sort.Slice, the same
// general-comparator sort primitive every stage's own prose calls for.
func Sort(hits []types.HitItem, clusters BackwardClusterMap) ([]types.HitItem, error) {
	records := make([]shuffle.Record, len(hits))
	for i, h := range hits {
		c, err := clusters.Resolve(h.DocId)
		if err != nil {
			return nil, err
		}
		value, err := encodeHitValue(h)
		if err != nil {
			return nil, err
		}
		records[i] = shuffle.Record{Key: sortKey(h.WordId, c, h.Enc), Value: value}
	}

	sorted := shuffle.CreateQuickSortedBlock(records, func(a, b shuffle.Record) bool {
		return bytes.Compare(a.Key, b.Key) < 0
	})

	out := make([]types.HitItem, len(sorted))
	for i, r := range sorted {
		h, err := decodeHitValue(r.Value)
		if err != nil {
			return nil, err
		}
		out[i] = h
	}
	return out, nil
}

// sortKey packs (word_id, cluster_doc_id, enc) big-endian so byte
// comparison matches numeric comparison on all three fields in order.
func sortKey(wordID types.WordId, cluster types.ClusterId, enc types.HitEnc) []byte {
	buf := make([]byte, 8+8+4)
	binary.BigEndian.PutUint64(buf[0:8], uint64(wordID))
	binary.BigEndian.PutUint64(buf[8:16], uint64(cluster))
	binary.BigEndian.PutUint32(buf[16:20], uint32(enc))
	return buf
}

func encodeHitValue(h types.HitItem) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(h); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeHitValue(b []byte) (types.HitItem, error) {
	var h types.HitItem
	err := gob.NewDecoder(bytes.NewReader(b)).Decode(&h)
	return h, err
}

// SplitByType partitions a word-id-sorted hit stream into the three
// per-type retrieval streams (title_hit, excerpt_hit, image_hit per §6's
// file layout), preserving relative order within each type.
func SplitByType(hits []types.HitItem) map[types.HitType][]types.HitItem {
	out := map[types.HitType][]types.HitItem{
		types.HitTitle:   nil,
		types.HitExcerpt: nil,
		types.HitImage:   nil,
	}
	for _, h := range hits {
		t := h.Enc.Type()
		out[t] = append(out[t], h)
	}
	return out
}

// SplitBaseAndImage separates the combined sorted_base_hits stream (every
// hit, any type) from the sorted_image_hits stream (image-type hits
// only), the two SortedHits-directory output files named in §6.
func SplitBaseAndImage(hits []types.HitItem) (base, image []types.HitItem) {
	base = hits
	for _, h := range hits {
		if h.Enc.Type() == types.HitImage {
			image = append(image, h)
		}
	}
	return base, image
}
