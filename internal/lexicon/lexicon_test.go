package lexicon

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStemmerAppliesPorter2WhenEnabled(t *testing.T) {
	s := NewStemmer(true, 3, nil)
	assert.Equal(t, "run", s.Stem("running"))
}

func TestStemmerRespectsExclusions(t *testing.T) {
	s := NewStemmer(true, 1, []string{"API"})
	assert.Equal(t, "api", s.Stem("api"))
}

func TestStemmerDisabledPassesThrough(t *testing.T) {
	s := NewStemmer(false, 3, nil)
	assert.Equal(t, "running", s.Stem("running"))
}

func TestStemmerRespectsMinLength(t *testing.T) {
	s := NewStemmer(true, 10, nil)
	assert.Equal(t, "running", s.Stem("running"))
}

func TestDictionaryInternAssignsSequentialIds(t *testing.T) {
	d := NewDictionary()
	id1 := d.Intern("hello")
	id2 := d.Intern("world")
	id3 := d.Intern("hello")

	assert.Equal(t, uint32(0), id1)
	assert.Equal(t, uint32(1), id2)
	assert.Equal(t, id1, id3)
	assert.Equal(t, 2, d.Len())
	assert.Equal(t, int64(2), d.Occurrences(id1))

	word, ok := d.Word(id2)
	require.True(t, ok)
	assert.Equal(t, "world", word)
}

func TestStopWordsAssignsFixedIdsByPosition(t *testing.T) {
	sw := NewStopWords([]string{"the", "a", "of"})
	id, ok := sw.ID("The")
	require.True(t, ok)
	assert.Equal(t, uint32(0), id)
	assert.True(t, sw.Contains("a"))
	assert.False(t, sw.Contains("banana"))
}

func TestDictionaryOffsetForDivisionDerivesGlobalBases(t *testing.T) {
	do := NewDictionaryOffset(1000, 5000, []uint32{10, 20, 30})

	off0, err := do.ForDivision(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), off0.WordOffset)
	assert.Equal(t, int64(1000), off0.BaseURLSize)
	assert.Equal(t, uint32(1000), off0.LinkOffset)

	off1, err := do.ForDivision(1)
	require.NoError(t, err)
	assert.Equal(t, uint32(10), off1.WordOffset)

	off2, err := do.ForDivision(2)
	require.NoError(t, err)
	assert.Equal(t, uint32(30), off2.WordOffset)

	assert.Equal(t, uint32(60), do.WordCount)
	assert.Equal(t, 3, do.DivisionCount())

	_, err = do.ForDivision(3)
	require.Error(t, err)
}

func TestDictionaryOffsetEncodeDecodeRoundTrip(t *testing.T) {
	do := NewDictionaryOffset(42, 9999, []uint32{5, 7})

	var buf bytes.Buffer
	require.NoError(t, do.Encode(&buf))

	got, err := DecodeDictionaryOffset(&buf)
	require.NoError(t, err)
	assert.Equal(t, do.BaseURLCount, got.BaseURLCount)
	assert.Equal(t, do.TotalNodeCount, got.TotalNodeCount)
	assert.Equal(t, do.WordCount, got.WordCount)
	assert.Equal(t, do.Offsets, got.Offsets)
}

func TestDecodeDictionaryOffsetTruncatedIsCorrupted(t *testing.T) {
	_, err := DecodeDictionaryOffset(bytes.NewReader([]byte{1, 2, 3}))
	require.Error(t, err)
}
