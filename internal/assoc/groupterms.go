package assoc

import (
	"sort"

	"github.com/standardbeagle/pulsedex/internal/types"
)

// Term is one entry in an excerpt's working keyword set: either an
// original token (Size == 1) or a grouped term formed by merging two
// adjacent terms that scored highly against the association table.
type Term struct {
	ID       types.WordId // synthetic id for grouped terms, beyond the lexicon's word-id space
	Size     int          // count of original tokens this term subsumes
	Weight   float64      // term_weight: the association score that formed it (1.0 for ungrouped tokens)
	Occur    int64        // global occurrence count
	Position int          // position in the original excerpt, for final-selection ordering
}

// GroupExpander runs §4.8's "grouped terms (iterative expansion)" pass:
// for GroupCycleCount cycles, pairs of tokens within a ScanWindowSize
// window of the current keyword set are re-scored using the association
// table; high-scoring pairs yield new grouped-term ids that replace the
// pair; the keyword set is reduced by a limited priority queue each
// cycle. Cycles stop early when fewer than 100 new keywords are added.
type GroupExpander struct {
	Table          *Table
	ScanWindowSize int
	Capacity       int // keyword-set size the per-cycle limited queue is bounded to
	Alloc          func() types.WordId
}

const minNewKeywordsToContinue = 100

// Expand runs at most cycles rounds of grouping over terms (already
// ordered by Position), returning the reduced keyword set.
func (g *GroupExpander) Expand(terms []Term, cycles int) []Term {
	current := append([]Term(nil), terms...)

	for c := 0; c < cycles; c++ {
		next, newCount := g.runCycle(current)
		current = next
		if newCount < minNewKeywordsToContinue {
			break
		}
	}
	return current
}

// runCycle performs one grouping pass and returns the reduced term set
// plus the number of newly-created grouped terms.
func (g *GroupExpander) runCycle(terms []Term) ([]Term, int) {
	consumed := make([]bool, len(terms))
	var grouped []Term
	newCount := 0

	for i := range terms {
		if consumed[i] {
			continue
		}
		window := g.ScanWindowSize
		if window < 1 {
			window = 1
		}
		bestJ := -1
		var bestScore float64
		for w := 1; w <= window && i+w < len(terms); w++ {
			j := i + w
			if consumed[j] {
				continue
			}
			e, ok := g.Table.Lookup(terms[i].ID, terms[j].ID)
			if !ok {
				continue
			}
			if bestJ == -1 || e.Score > bestScore {
				bestJ, bestScore = j, e.Score
			}
		}

		if bestJ == -1 {
			grouped = append(grouped, terms[i])
			continue
		}

		consumed[i], consumed[bestJ] = true, true
		a, b := terms[i], terms[bestJ]
		occur := a.Occur
		if b.Occur < occur {
			occur = b.Occur
		}
		grouped = append(grouped, Term{
			ID:       g.Alloc(),
			Size:     a.Size + b.Size,
			Weight:   bestScore,
			Occur:    occur,
			Position: a.Position,
		})
		newCount++
	}

	reduced := g.reduce(grouped)
	return reduced, newCount
}

// reduce bounds the keyword set to Capacity via a limited priority queue
// ranked by (group_size desc, term_weight desc, occur asc), per §4.8.
func (g *GroupExpander) reduce(terms []Term) []Term {
	if g.Capacity <= 0 || len(terms) <= g.Capacity {
		return terms
	}

	less := func(a, b Term) bool {
		if a.Size != b.Size {
			return a.Size < b.Size
		}
		if a.Weight != b.Weight {
			return a.Weight < b.Weight
		}
		return a.Occur > b.Occur
	}

	q := NewLimitedQueue(g.Capacity, less)
	for _, t := range terms {
		q.Push(t)
	}
	out := q.Items()
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}
