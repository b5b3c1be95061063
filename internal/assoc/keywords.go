package assoc

import (
	"sort"

	"github.com/standardbeagle/pulsedex/internal/types"
)

// FinalKeywords selects §4.8's final per-excerpt keyword list: after the
// grouped-term cycles, the top-N keywords (by Weight) are kept, then
// re-sorted by original token Position, since "After cycles, the top-N
// keywords (default FinalKeywordCount = 17) are selected, sorted by
// original token position."
func FinalKeywords(terms []Term, finalKeywordCount int) []Term {
	ranked := append([]Term(nil), terms...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Weight > ranked[j].Weight })
	if finalKeywordCount >= 0 && len(ranked) > finalKeywordCount {
		ranked = ranked[:finalKeywordCount]
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].Position < ranked[j].Position })
	return ranked
}

// CheckSum is the excerpt identity hash named in §4.8: "a check_sum that
// uniquely identifies the excerpt (sum of keyword ids)."
func CheckSum(keywords []Term) uint32 {
	var sum uint32
	for _, k := range keywords {
		sum += uint32(k.ID)
	}
	return sum
}

// PulseScoreStream resolves the pulse score for a doc by walking a
// doc-id-ascending pulse score sequence in lockstep, per §4.8: "a
// pulse_score obtained by streaming the sorted pulse map in lockstep with
// the excerpt file." Both docs and pulseMap must be in ascending DocId
// order; cursor is advanced in place so repeat calls across an
// ascending-doc-id excerpt stream remain O(1) amortized per call.
type PulseScoreStream struct {
	pulseMap []types.PulseMap
	cursor   int
}

// NewPulseScoreStream wraps an ascending-DocId-ordered pulse map sequence.
func NewPulseScoreStream(pulseMap []types.PulseMap) *PulseScoreStream {
	return &PulseScoreStream{pulseMap: pulseMap}
}

// ScoreFor advances the cursor to doc (which must be >= every previously
// requested doc) and returns its pulse score, or 0 if doc has no entry.
func (s *PulseScoreStream) ScoreFor(doc types.DocId) float32 {
	for s.cursor < len(s.pulseMap) && s.pulseMap[s.cursor].Node < doc {
		s.cursor++
	}
	if s.cursor < len(s.pulseMap) && s.pulseMap[s.cursor].Node == doc {
		return s.pulseMap[s.cursor].PulseScore
	}
	return 0
}

// BuildKeywordHits assembles the final per-excerpt types.KeywordHit
// records (one per surviving keyword) for doc, carrying the shared
// CheckSum and pulse score.
func BuildKeywordHits(doc types.DocId, keywords []Term, pulseScore float32) []types.KeywordHit {
	checkSum := CheckSum(keywords)
	out := make([]types.KeywordHit, len(keywords))
	for i, k := range keywords {
		out[i] = types.KeywordHit{
			DocId:        doc,
			KeywordId:    types.DocId(k.ID),
			CheckSum:     checkSum,
			KeywordScore: float32(k.Weight),
			PulseScore:   pulseScore,
		}
	}
	return out
}
