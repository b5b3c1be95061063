// Package shuffle implements the MapReduce-style substrate named in spec
// §4.1: hash-partitioning, external sort, per-key aggregation, hash-join,
// and order-preserving re-stitch, all operating on the opaque
// key/value Records every later stage shards and sorts by.
package shuffle

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
)

// Record is the universal (key, value) tuple every primitive moves around.
// Key is the sort/partition/group key; Value is opaque payload a stage's
// own codec (HitItem, ClusterLink, PulseMap entry, ...) packs and unpacks.
type Record struct {
	Key   []byte
	Value []byte
}

// Clone returns a deep copy, since slices returned by Decode may alias a
// shared read buffer.
func (r Record) Clone() Record {
	k := make([]byte, len(r.Key))
	copy(k, r.Key)
	v := make([]byte, len(r.Value))
	copy(v, r.Value)
	return Record{Key: k, Value: v}
}

// HashDiv returns the shard a key is assigned to under a hashDivNum-way
// hash partition (§4.1 distribute_keys/distribute_maps). xxhash gives a
// fast, well-distributed 64-bit hash with no per-call allocation.
func HashDiv(key []byte, hashDivNum int) int {
	if hashDivNum <= 0 {
		return 0
	}
	return int(xxhash.Sum64(key) % uint64(hashDivNum))
}

// EncodeRecord writes one length-prefixed record: a u32 key length, the key
// bytes, a u32 value length, then the value bytes. This is the default
// "data_handler" every primitive falls back to when a stage doesn't need a
// fixed-width record layout.
func EncodeRecord(w *bufio.Writer, r Record) error {
	if err := writeU32(w, uint32(len(r.Key))); err != nil {
		return err
	}
	if _, err := w.Write(r.Key); err != nil {
		return fmt.Errorf("shuffle: write key: %w", err)
	}
	if err := writeU32(w, uint32(len(r.Value))); err != nil {
		return err
	}
	if _, err := w.Write(r.Value); err != nil {
		return fmt.Errorf("shuffle: write value: %w", err)
	}
	return nil
}

// DecodeRecord reads one record written by EncodeRecord. Returns io.EOF
// (unwrapped) once the stream is exhausted cleanly, i.e. at a record
// boundary.
func DecodeRecord(r *bufio.Reader) (Record, error) {
	keyLen, err := readU32(r)
	if err != nil {
		return Record{}, err
	}
	key := make([]byte, keyLen)
	if _, err := io.ReadFull(r, key); err != nil {
		return Record{}, fmt.Errorf("shuffle: truncated key: %w", err)
	}
	valLen, err := readU32(r)
	if err != nil {
		return Record{}, fmt.Errorf("shuffle: truncated value length: %w", err)
	}
	val := make([]byte, valLen)
	if _, err := io.ReadFull(r, val); err != nil {
		return Record{}, fmt.Errorf("shuffle: truncated value: %w", err)
	}
	return Record{Key: key, Value: val}, nil
}

// DecodeAllRecords reads every record out of r until a clean EOF.
func DecodeAllRecords(r io.Reader) ([]Record, error) {
	br := bufio.NewReader(r)
	var out []Record
	for {
		rec, err := DecodeRecord(br)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
}

// EncodeAllRecords writes every record to w.
func EncodeAllRecords(w io.Writer, records []Record) error {
	bw := bufio.NewWriter(w)
	for _, rec := range records {
		if err := EncodeRecord(bw, rec); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeU32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readU32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}
