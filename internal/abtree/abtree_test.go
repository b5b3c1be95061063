package abtree

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/pulsedex/internal/types"
)

// bytesAt adapts a []byte to io.ReaderAt for test fixtures.
type bytesAt []byte

func (b bytesAt) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(b)) {
		return 0, io.EOF
	}
	n := copy(p, b[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func leaf(id types.DocId, aux []byte) *Node {
	return &Node{IsLeaf: true, Leaf: id, Aux: aux, TotalNodeNum: 1}
}

func internal(children ...*Node) *Node {
	var total uint32
	for _, c := range children {
		total += c.TotalNodeNum
	}
	return &Node{Children: children, TotalNodeNum: total}
}

func buildTestTree() *Node {
	// leaves 10, 20, 30 under one internal node.
	return internal(leaf(10, []byte("a")), leaf(20, []byte("bb")), leaf(30, nil))
}

func TestEncodedSizeAccountsForLeafAuxAndSLinks(t *testing.T) {
	n := leaf(10, []byte("hello"))
	n.SLinks = []types.SSummaryLink{{Src: 1, Dst: 2}}
	size := encodedSize(n)
	assert.Equal(t, int64(headerSize+leafFixedSize+5+ssummaryLinkSize), size)
}

func TestBuildShardProducesStrictlyPositiveChildOffsets(t *testing.T) {
	tree := buildTestTree()
	b := NewBuilder()
	data, root, err := b.BuildShard([]*Node{tree})
	require.NoError(t, err)
	require.Len(t, root, 1)
	assert.Equal(t, types.DocId(10), root[0].Start)
	assert.Equal(t, int64(0), root[0].ByteOffset)
	assert.NotEmpty(t, data)
}

func TestRootIndexLookupFindsOwningSubtree(t *testing.T) {
	ri := NewRootIndex([]RootEntry{
		{Start: 0, ByteOffset: 0},
		{Start: 100, ByteOffset: 500},
		{Start: 200, ByteOffset: 900},
	})
	e, ok := ri.Lookup(150)
	require.True(t, ok)
	assert.Equal(t, int64(500), e.ByteOffset)

	_, ok = ri.Lookup(-1)
	assert.False(t, ok)
}

func TestReaderLookupFindsLeafAcrossTree(t *testing.T) {
	tree := buildTestTree()
	b := NewBuilder()
	data, root, err := b.BuildShard([]*Node{tree})
	require.NoError(t, err)

	ri := NewRootIndex(root)
	cache := NewPageCache(16)
	reader := NewReader(0, bytesAt(data), ri, cache)

	res, found, err := reader.Lookup(types.DocId(20))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("bb"), res.Aux)

	_, found, err = reader.Lookup(types.DocId(999))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestPageCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewPageCache(2)
	n1 := &decodedNode{isLeaf: true, leaf: 1}
	n2 := &decodedNode{isLeaf: true, leaf: 2}
	n3 := &decodedNode{isLeaf: true, leaf: 3}

	c.Put(0, 1, n1)
	c.Put(0, 2, n2)
	c.Get(0, 1) // touch 1, making 2 the LRU
	c.Put(0, 3, n3)

	_, ok := c.Get(0, 2)
	assert.False(t, ok, "entry 2 should have been evicted as least-recently-used")
	_, ok = c.Get(0, 1)
	assert.True(t, ok)
	assert.Equal(t, int64(1), c.Stats().Evictions)
}

func TestAssignRangesComputesCoverageAndLevel(t *testing.T) {
	tree := buildTestTree()
	AssignRanges(tree)
	assert.Equal(t, types.DocId(10), tree.Start)
	assert.Equal(t, types.DocId(31), tree.End)
	assert.Equal(t, uint8(1), tree.Level)
	assert.Equal(t, uint8(0), tree.Children[0].Level)
}

func TestAttachSummaryLinksAttachesToDeepestMatchingNode(t *testing.T) {
	tree := buildTestTree()
	AssignRanges(tree)

	link := types.SummaryLink{Src: 20, Dst: 99, SubsumeLevel: 0, TravProb: 0.5}
	unattached := AttachSummaryLinks(tree, []types.SummaryLink{link})
	assert.Empty(t, unattached)
	require.Len(t, tree.Children[1].SLinks, 1)
	assert.Equal(t, types.DocId(99), tree.Children[1].SLinks[0].Dst)
}

func TestAttachSummaryLinksReportsUnattachedOutOfRange(t *testing.T) {
	tree := buildTestTree()
	AssignRanges(tree)

	link := types.SummaryLink{Src: 9999, Dst: 1, SubsumeLevel: 0}
	unattached := AttachSummaryLinks(tree, []types.SummaryLink{link})
	assert.Len(t, unattached, 1)
}
