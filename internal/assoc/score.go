package assoc

import (
	"sort"

	"github.com/standardbeagle/pulsedex/internal/types"
)

// GlobalCount resolves a token's global corpus occurrence count (n_a, n_b
// in §4.8's scoring formula), fed by the same word-occurrence shuffle pass
// that builds the dictionary.
type GlobalCount func(wordId types.WordId) int64

// Score computes §4.8's pair-association score: n_ab / ((n_a - n_ab + 1) *
// (n_b - n_ab + 1)). Higher means the pair co-occurs more than its
// individual frequencies would predict.
func Score(nab, na, nb int64) float64 {
	da := float64(na - nab + 1)
	db := float64(nb - nab + 1)
	return float64(nab) / (da * db)
}

// Scored pairs a PairCount with its computed score, the unit
// kthOrderStatisticCutoff selects over.
type Scored struct {
	PairCount
	Score float64
}

// ScoreAll scores every counted pair against the global per-token counts.
func ScoreAll(counts []PairCount, globalCount GlobalCount) []Scored {
	out := make([]Scored, len(counts))
	for i, c := range counts {
		na := globalCount(c.Pair.A)
		nb := globalCount(c.Pair.B)
		out[i] = Scored{PairCount: c, Score: Score(c.Joint, na, nb)}
	}
	return out
}

// KthOrderStatisticCutoff keeps at most maxAssocNum pairs, per §4.8: "a
// k-th-order-statistic cutoff keeps at most MaxAssocNum pairs." Rather
// than a full sort, this partitions around the k-th largest score
// (quickselect) and only fully orders the surviving slice, matching the
// "order statistic" framing: finding the k-th largest element is O(n)
// rather than paying an O(n log n) full sort just to discard the tail.
func KthOrderStatisticCutoff(scored []Scored, maxAssocNum int) []Scored {
	if maxAssocNum < 0 {
		maxAssocNum = 0
	}
	if len(scored) <= maxAssocNum {
		out := append([]Scored(nil), scored...)
		sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
		return out
	}
	if maxAssocNum == 0 {
		return nil
	}

	work := append([]Scored(nil), scored...)
	quickselectDescending(work, maxAssocNum-1)
	top := work[:maxAssocNum]
	sort.Slice(top, func(i, j int) bool { return top[i].Score > top[j].Score })
	return top
}

// quickselectDescending partitions work in place so that work[k] holds the
// element that would sit at index k were work sorted by Score descending,
// with every element before it scoring >= and every element after it
// scoring <=.
func quickselectDescending(work []Scored, k int) {
	lo, hi := 0, len(work)-1
	for lo < hi {
		p := partitionDescending(work, lo, hi)
		switch {
		case p == k:
			return
		case p < k:
			lo = p + 1
		default:
			hi = p - 1
		}
	}
}

func partitionDescending(work []Scored, lo, hi int) int {
	pivot := work[hi].Score
	i := lo
	for j := lo; j < hi; j++ {
		if work[j].Score > pivot {
			work[i], work[j] = work[j], work[i]
			i++
		}
	}
	work[i], work[hi] = work[hi], work[i]
	return i
}
