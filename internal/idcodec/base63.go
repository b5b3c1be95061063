// Package idcodec provides the operator-facing id encodings (word, doc,
// assoc, cluster, sharded) every stage's internal uint64/uint40 ids get
// translated through before they appear in CLI output. It delegates the
// core base-63 algorithm to internal/encoding and type-checks the result
// against each id's own width and zero-value convention.
//
// Base-63 Alphabet: A-Z (0-25), a-z (26-51), 0-9 (52-61), _ (62)
// This provides ~6 character IDs for typical projects (vs ~16 for hex).
package idcodec

import (
	"github.com/standardbeagle/pulsedex/internal/encoding"
)

// Re-export errors from encoding package for use with errors.Is
var (
	ErrEmptyString = encoding.ErrEmptyString
	ErrInvalidChar = encoding.ErrInvalidChar
	ErrOverflow    = encoding.ErrOverflow
)

// Encode encodes a uint64 value to a base-63 string.
// Returns "A" for zero (minimum non-empty encoding).
func Encode(value uint64) string {
	return encoding.Base63Encode(value)
}

// EncodeNoZero encodes a uint64 value to a base-63 string.
// Returns empty string for zero value (used for composite IDs where 0 means "none").
func EncodeNoZero(value uint64) string {
	return encoding.Base63EncodeNoZero(value)
}

// Decode decodes a base-63 string to a uint64 value.
// Returns error for empty strings or invalid characters.
func Decode(encoded string) (uint64, error) {
	return encoding.Base63Decode(encoded)
}
