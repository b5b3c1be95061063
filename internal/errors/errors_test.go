package errors

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorruptedErrorUnwrap(t *testing.T) {
	underlying := errors.New("block length mismatch")
	err := NewCorrupted("hitlist", 3, "base_fin_hit.3", "declared length disagrees with decoded length", underlying)

	require.ErrorIs(t, err, underlying)
	assert.Contains(t, err.Error(), "stage=hitlist")
	assert.Contains(t, err.Error(), "shard=3")
}

func TestTransientErrorExhausted(t *testing.T) {
	err := NewTransient("pulserank", "open back buffer", 5, 5, errors.New("no such file"))
	assert.True(t, err.Exhausted())

	err2 := NewTransient("pulserank", "open back buffer", 1, 5, errors.New("no such file"))
	assert.False(t, err2.Exhausted())
}

func TestWorkerTimeoutErrorMessage(t *testing.T) {
	err := NewWorkerTimeout("cluster", 2, time.Unix(0, 0).UTC(), 2*time.Second, true)
	assert.Contains(t, err.Error(), "restarting worker")

	err2 := NewWorkerTimeout("cluster", 2, time.Unix(0, 0).UTC(), 2*time.Second, false)
	assert.Contains(t, err2.Error(), "failing job")
}

func TestMultiErrorNilWhenEmpty(t *testing.T) {
	assert.Nil(t, NewMultiError(nil))
	assert.Nil(t, NewMultiError([]error{nil, nil}))

	me := NewMultiError([]error{errors.New("a"), nil, errors.New("b")})
	require.NotNil(t, me)
	assert.Len(t, me.Errors, 2)
	assert.Contains(t, me.Error(), "2 errors")
}

func TestMismatchError(t *testing.T) {
	err := NewMismatch("hitlist", "log id present in word_log[d]", "local_id<N", "local_id=N+1")
	assert.Contains(t, err.Error(), "invariant=log id present in word_log[d]")
}
