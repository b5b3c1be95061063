package sortedhits

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/pulsedex/internal/types"
)

func clusterMap(pairs ...types.ClusterMap) BackwardClusterMap {
	return NewBackwardClusterMap(pairs)
}

func hit(wordID types.WordId, docID types.DocId, t types.HitType, pos int) types.HitItem {
	return types.HitItem{WordId: wordID, DocId: docID, Enc: types.EncodeHit(t, pos)}
}

func TestSortOrdersByWordThenClusterThenEnc(t *testing.T) {
	clusters := clusterMap(
		types.ClusterMap{BaseNode: 10, Cluster: 5},
		types.ClusterMap{BaseNode: 20, Cluster: 2},
	)
	hits := []types.HitItem{
		hit(1, 10, types.HitExcerpt, 0),
		hit(1, 20, types.HitExcerpt, 0),
	}

	sorted, err := Sort(hits, clusters)
	require.NoError(t, err)
	require.Len(t, sorted, 2)
	assert.Equal(t, types.DocId(20), sorted[0].DocId, "cluster 2 sorts before cluster 5")
	assert.Equal(t, types.DocId(10), sorted[1].DocId)
}

func TestSortReturnsErrorForUnmappedBaseNode(t *testing.T) {
	_, err := Sort([]types.HitItem{hit(1, 99, types.HitExcerpt, 0)}, clusterMap())
	assert.Error(t, err)
}

func TestSplitByTypeSeparatesStreams(t *testing.T) {
	hits := []types.HitItem{
		hit(1, 1, types.HitTitle, 0),
		hit(1, 1, types.HitExcerpt, 1),
		hit(1, 1, types.HitImage, 2),
	}
	byType := SplitByType(hits)
	assert.Len(t, byType[types.HitTitle], 1)
	assert.Len(t, byType[types.HitExcerpt], 1)
	assert.Len(t, byType[types.HitImage], 1)
}

func TestSplitBaseAndImageKeepsAllInBaseAndImageOnlyInImage(t *testing.T) {
	hits := []types.HitItem{
		hit(1, 1, types.HitTitle, 0),
		hit(1, 1, types.HitImage, 1),
	}
	base, image := SplitBaseAndImage(hits)
	assert.Len(t, base, 2)
	require.Len(t, image, 1)
	assert.Equal(t, types.HitImage, image[0].Enc.Type())
}

func TestEncodeDecodeHitItemRoundTrips(t *testing.T) {
	h := types.HitItem{
		WordId:   42,
		DocId:    types.DocId(123456),
		Enc:      types.EncodeHit(types.HitImage, 7),
		ImageId:  types.DocId(9),
		HasImage: true,
	}
	var buf bytes.Buffer
	require.NoError(t, EncodeHitItem(&buf, h))
	assert.Equal(t, hitItemEncodedSize, buf.Len())

	decoded, err := DecodeHitItem(&buf, 0, "sorted_base_hits.0")
	require.NoError(t, err)
	assert.Equal(t, h, decoded)
}

func TestDecodeHitItemReportsCorruptionOnTruncation(t *testing.T) {
	_, err := DecodeHitItem(bytes.NewReader([]byte{1, 2, 3}), 4, "sorted_base_hits.4")
	assert.Error(t, err)
}

func TestBuildLookupIndexEmitsWordStartRecords(t *testing.T) {
	hits := []types.HitItem{
		hit(1, 1, types.HitTitle, 0),
		hit(1, 1, types.HitExcerpt, 1),
		hit(2, 1, types.HitExcerpt, 0),
	}
	records := BuildLookupIndex(hits, 255)
	require.Len(t, records, 2)
	assert.True(t, records[0].WordStart)
	assert.Equal(t, types.WordId(1), records[0].WordId)
	assert.Equal(t, int64(0), records[0].TitleOffset)
	assert.True(t, records[1].WordStart)
	assert.Equal(t, types.WordId(2), records[1].WordId)
	assert.Equal(t, int64(hitItemEncodedSize), records[1].TitleOffset)
	assert.Equal(t, int64(hitItemEncodedSize), records[1].ExcerptOffset)
}

func TestBuildLookupIndexEmitsSpatialBoundaryWithinLongWordRun(t *testing.T) {
	var hits []types.HitItem
	for i := 0; i < 20; i++ {
		hits = append(hits, hit(1, types.DocId(i), types.HitExcerpt, i))
	}
	// small boundary forces multiple records within the single word run.
	records := BuildLookupIndex(hits, hitItemEncodedSize*3)
	require.Greater(t, len(records), 1)
	assert.True(t, records[0].WordStart)
	for _, r := range records[1:] {
		assert.False(t, r.WordStart)
		assert.Equal(t, types.WordId(1), r.WordId)
	}
}

func TestLookupWordStartFindsStartingOffsets(t *testing.T) {
	hits := []types.HitItem{
		hit(1, 1, types.HitTitle, 0),
		hit(2, 1, types.HitExcerpt, 0),
		hit(2, 1, types.HitExcerpt, 1),
		hit(3, 1, types.HitImage, 0),
	}
	records := BuildLookupIndex(hits, 255)

	rec, ok := LookupWordStart(records, 2)
	require.True(t, ok)
	assert.Equal(t, types.WordId(2), rec.WordId)
	assert.Equal(t, int64(hitItemEncodedSize), rec.TitleOffset)

	_, ok = LookupWordStart(records, 99)
	assert.False(t, ok)
}
