package assoc

import "github.com/standardbeagle/pulsedex/internal/types"

// Entry is one surviving association, stored both forward (a,b)->id and
// reverse (b,a)->id per §4.8: "each surviving pair is assigned a new
// AssocId and stored both forward (a,b)→id and reverse (b,a)→id."
type Entry struct {
	A, B  types.WordId
	Id    types.AssocId
	Score float64
}

// BuildTable assigns a fresh AssocId to every surviving pair via alloc and
// returns the forward and reverse entry lists in the same relative order.
func BuildTable(top []Scored, alloc func() types.AssocId) (forward, reverse []Entry) {
	forward = make([]Entry, len(top))
	reverse = make([]Entry, len(top))
	for i, s := range top {
		id := alloc()
		forward[i] = Entry{A: s.Pair.A, B: s.Pair.B, Id: id, Score: s.Score}
		reverse[i] = Entry{A: s.Pair.B, B: s.Pair.A, Id: id, Score: s.Score}
	}
	return forward, reverse
}

// Table is an in-memory forward+reverse association lookup, built from a
// BuildTable result, used by the grouped-term expansion pass and by
// query-time association lookups.
type Table struct {
	forward map[PairKey]Entry
}

// NewTable indexes a forward entry list by (A,B).
func NewTable(forward []Entry) *Table {
	t := &Table{forward: make(map[PairKey]Entry, len(forward))}
	for _, e := range forward {
		t.forward[PairKey{A: e.A, B: e.B}] = e
	}
	return t
}

// Lookup returns the association entry for an ordered token pair, if any
// survived the cutoff.
func (t *Table) Lookup(a, b types.WordId) (Entry, bool) {
	e, ok := t.forward[PairKey{A: a, B: b}]
	return e, ok
}
