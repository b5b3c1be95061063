package idcodec

import (
	"github.com/standardbeagle/pulsedex/internal/types"
)

// EncodeWordId encodes a WordId to a base-63 string for operator-facing
// output (CLI `decode-id`).
func EncodeWordId(id types.WordId) string {
	return Encode(uint64(id))
}

// DecodeWordId decodes a base-63 string to a WordId.
func DecodeWordId(encoded string) (types.WordId, error) {
	value, err := Decode(encoded)
	if err != nil {
		return 0, err
	}
	if value > uint64(^types.WordId(0)) {
		return 0, ErrOverflow
	}
	return types.WordId(value), nil
}

// EncodeDocId encodes a DocId (40-bit) to a base-63 string.
func EncodeDocId(id types.DocId) string {
	return Encode(uint64(id))
}

// DecodeDocId decodes a base-63 string to a DocId, rejecting values that do
// not fit in 40 bits.
func DecodeDocId(encoded string) (types.DocId, error) {
	value, err := Decode(encoded)
	if err != nil {
		return 0, err
	}
	if value > uint64(types.MaxDocId) {
		return 0, ErrOverflow
	}
	return types.DocId(value), nil
}

// EncodeAssocId encodes an AssocId (40-bit) to a base-63 string.
func EncodeAssocId(id types.AssocId) string {
	return Encode(uint64(id))
}

// DecodeAssocId decodes a base-63 string to an AssocId.
func DecodeAssocId(encoded string) (types.AssocId, error) {
	value, err := Decode(encoded)
	if err != nil {
		return 0, err
	}
	if value > uint64(types.MaxDocId) {
		return 0, ErrOverflow
	}
	return types.AssocId(value), nil
}

// EncodeClusterId encodes a ClusterId (40-bit, high bit set while the id is
// still cluster-space only) to a base-63 string.
func EncodeClusterId(id types.ClusterId) string {
	return Encode(uint64(id))
}

// DecodeClusterId decodes a base-63 string to a ClusterId.
func DecodeClusterId(encoded string) (types.ClusterId, error) {
	value, err := Decode(encoded)
	if err != nil {
		return 0, err
	}
	if value > uint64(types.MaxDocId) {
		return 0, ErrOverflow
	}
	return types.ClusterId(value), nil
}
