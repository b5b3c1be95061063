package idcodec

import (
	"errors"
	"fmt"

	"github.com/standardbeagle/pulsedex/internal/types"
)

// DecodeErrorReason indicates why a CLI-supplied id string failed to decode
// or resolve against a segmented file.
type DecodeErrorReason int

const (
	ReasonMalformed DecodeErrorReason = iota
	ReasonOutOfRange
	ReasonNotFound
)

func (r DecodeErrorReason) String() string {
	switch r {
	case ReasonMalformed:
		return "malformed"
	case ReasonOutOfRange:
		return "out of range"
	case ReasonNotFound:
		return "not found"
	default:
		return "unknown"
	}
}

// DecodeError reports why decoding or resolving an operator-supplied id
// string (via `pulsedex decode-id`) failed.
type DecodeError struct {
	Input  string
	Reason DecodeErrorReason
	Detail string
}

func (e *DecodeError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("decode %q: %s (%s)", e.Input, e.Reason, e.Detail)
	}
	return fmt.Sprintf("decode %q: %s", e.Input, e.Reason)
}

func (e *DecodeError) Is(target error) bool {
	var de *DecodeError
	if errors.As(target, &de) {
		return e.Reason == de.Reason
	}
	return false
}

func NewMalformedError(input, detail string) *DecodeError {
	return &DecodeError{Input: input, Reason: ReasonMalformed, Detail: detail}
}

func NewOutOfRangeError(input string, limit types.DocId) *DecodeError {
	return &DecodeError{Input: input, Reason: ReasonOutOfRange, Detail: fmt.Sprintf("limit=%d", limit)}
}

func NewNotFoundError(input string) *DecodeError {
	return &DecodeError{Input: input, Reason: ReasonNotFound}
}
