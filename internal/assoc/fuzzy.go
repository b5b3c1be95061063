package assoc

import (
	"sort"

	"github.com/hbollon/go-edlib"
)

// FuzzyRanker refines a consonant-skeleton bucket's candidates by actual
// string similarity, the step between "approximate-match hash buckets"
// (cheap but coarse: many unrelated words share a 6-consonant skeleton)
// and a usable ranked candidate list for a mistyped query term.
type FuzzyRanker struct {
	Threshold float64
}

// NewFuzzyRanker builds a ranker with the given minimum Jaro-Winkler
// similarity (0.80 matches the teacher's default fuzzy-match threshold).
func NewFuzzyRanker(threshold float64) *FuzzyRanker {
	if threshold <= 0 || threshold > 1 {
		threshold = 0.80
	}
	return &FuzzyRanker{Threshold: threshold}
}

// candidateScore pairs a bucket candidate's text with its similarity to
// the query, for ranking.
type candidateScore struct {
	text       string
	similarity float64
}

// Rank scores every candidate against query by Jaro-Winkler similarity and
// returns those meeting Threshold, highest similarity first.
func (fr *FuzzyRanker) Rank(query string, candidates []string) []string {
	if query == "" || len(candidates) == 0 {
		return nil
	}

	scored := make([]candidateScore, 0, len(candidates))
	for _, c := range candidates {
		if c == query {
			scored = append(scored, candidateScore{text: c, similarity: 1.0})
			continue
		}
		sim, err := edlib.StringsSimilarity(query, c, edlib.JaroWinkler)
		if err != nil {
			continue
		}
		if float64(sim) >= fr.Threshold {
			scored = append(scored, candidateScore{text: c, similarity: float64(sim)})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].similarity > scored[j].similarity })
	out := make([]string, len(scored))
	for i, s := range scored {
		out[i] = s.text
	}
	return out
}
