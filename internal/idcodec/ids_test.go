package idcodec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/pulsedex/internal/types"
)

func TestDocIdRoundTrip(t *testing.T) {
	for _, id := range []types.DocId{0, 1, 12345, types.MaxDocId} {
		encoded := EncodeDocId(id)
		decoded, err := DecodeDocId(encoded)
		require.NoError(t, err)
		assert.Equal(t, id, decoded)
	}
}

func TestDocIdDecodeOverflow(t *testing.T) {
	// MaxDocId + 1 does not fit in 40 bits.
	encoded := Encode(uint64(types.MaxDocId) + 1)
	_, err := DecodeDocId(encoded)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestShardedRoundTrip(t *testing.T) {
	encoded := EncodeSharded(7, 42)
	shard, local, err := DecodeSharded(encoded)
	require.NoError(t, err)
	assert.Equal(t, 7, shard)
	assert.Equal(t, uint32(42), local)
}

func TestShardedEmptyInput(t *testing.T) {
	_, _, err := DecodeSharded("")
	assert.ErrorIs(t, err, ErrEmptyString)
}
