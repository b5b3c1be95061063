package abtree

import "github.com/standardbeagle/pulsedex/internal/types"

// AttachSummaryLinks attaches each input link to the deepest node in tree
// whose [Start, End) range contains link.Src and whose Level equals
// link.SubsumeLevel, per §4.6: "During the depth-first walk of the
// hierarchy the builder attaches each link to the deepest node whose
// [start,end) doc-id range contains src and whose level equals
// subsume_level." Links whose src falls outside every node's range (a
// shard-boundary mismatch upstream) are returned as unattached.
func AttachSummaryLinks(tree *Node, links []types.SummaryLink) (unattached []types.SummaryLink) {
	for _, link := range links {
		if !attachOne(tree, link) {
			unattached = append(unattached, link)
		}
	}
	return unattached
}

func attachOne(n *Node, link types.SummaryLink) bool {
	if link.Src < n.Start || link.Src >= n.End {
		return false
	}

	// Prefer a deeper, more specific owner first.
	for _, c := range n.Children {
		if attachOne(c, link) {
			return true
		}
	}

	if n.Level == link.SubsumeLevel {
		n.SLinks = append(n.SLinks, types.SSummaryLink{
			Src:         link.Src,
			Dst:         link.Dst,
			TravProb:    link.TravProb,
			IsForward:   link.IsForward,
			CreateLevel: link.CreateLevel,
		})
		return true
	}
	return false
}

// AssignRanges fills in Start/End/Level for tree in a single depth-first
// pass, deriving each node's covered doc-id range from its leaves (in
// pre-order, matching the invariant that the pre-order leaf sequence is
// the sorted base-doc-id order). Level counts merge rounds up from the
// base nodes (leaves are level 0), matching subsume_level's meaning as
// "the cycle at which two base nodes first shared a label" — later
// cycles merge broader, shallower-from-the-leaves groups, so level rises
// toward the root, not toward the leaves.
func AssignRanges(tree *Node) {
	assignRanges(tree)
}

func assignRanges(n *Node) (start, end types.DocId, level uint8) {
	if n.IsLeaf {
		n.Start, n.End, n.Level = n.Leaf, n.Leaf+1, 0
		return n.Start, n.End, 0
	}

	first := true
	var maxChildLevel uint8
	for _, c := range n.Children {
		cStart, cEnd, cLevel := assignRanges(c)
		if first {
			start = cStart
			first = false
		}
		end = cEnd
		if cLevel > maxChildLevel {
			maxChildLevel = cLevel
		}
	}
	level = maxChildLevel + 1
	n.Start, n.End, n.Level = start, end, level
	return start, end, level
}
