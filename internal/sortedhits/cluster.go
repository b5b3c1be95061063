// Package sortedhits implements stage 4.7: sorting per-word-shard postings
// by (word_id, cluster_doc_id, enc) and building the fixed-spatial-boundary
// lookup index that gives O(1) seek into the per-type hit files.
package sortedhits

import (
	"fmt"

	"github.com/standardbeagle/pulsedex/internal/types"
)

// BackwardClusterMap resolves a base node's current cluster id, the
// "hierarchy-renumbered doc id" hits are actually sorted by. Every base
// node has an entry once hierarchy merge has run, including singleton
// orphan groups (internal/cluster's synthetic groups).
type BackwardClusterMap map[types.DocId]types.ClusterId

// NewBackwardClusterMap builds a lookup from backward_clus_map records.
func NewBackwardClusterMap(entries []types.ClusterMap) BackwardClusterMap {
	m := make(BackwardClusterMap, len(entries))
	for _, e := range entries {
		m[e.BaseNode] = e.Cluster
	}
	return m
}

// Resolve returns the cluster id a hit's DocId currently belongs to. A
// miss is a cross-stream invariant violation: every base node indexed by
// 4.2 must have been assigned a cluster by 4.5.
func (m BackwardClusterMap) Resolve(base types.DocId) (types.ClusterId, error) {
	c, ok := m[base]
	if !ok {
		return 0, fmt.Errorf("sortedhits: base node %s has no backward cluster map entry", base)
	}
	return c, nil
}
