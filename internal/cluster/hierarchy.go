package cluster

import (
	"sort"

	"github.com/standardbeagle/pulsedex/internal/types"
)

// Segment is the contiguous sub-range of the old base-doc ordering owned
// by one hash division, per §4.5: "A segment is the contiguous sub-range
// of the old base-doc ordering owned by one hash-div; grouping preserves
// segment order so the new global doc-id range is well-defined."
type Segment struct {
	HashDiv int
	Nodes   []types.DocId
}

// ClusterResult is one hierarchy-merge target cluster's output.
type ClusterResult struct {
	Stat    types.HierarchyStat
	Members []types.DocId // concatenated in segment order, stable base-doc-id order preserved
}

// MergeHierarchies groups segments sharing the same label into hierarchy
// clusters (§4.5's MergeClusterHiearchies), assigns each a new cluster
// DocId via alloc, and buckets orphan (singleton-label) nodes into
// synthetic groups capped at maxChildCount members and maxClusNodeNum
// total. Returns the cluster results and the base-node -> new-cluster
// ClusterMap the AB-tree builder consumes.
func MergeHierarchies(
	segments []Segment,
	labels LabelState,
	pulseScore func(types.DocId) float32,
	maxChildCount, maxClusNodeNum int,
	alloc func() types.DocId,
) ([]ClusterResult, []types.ClusterMap) {
	type group struct {
		members  []types.DocId
		segments map[int]bool
	}
	groups := make(map[Label]*group)
	order := make([]Label, 0)

	for _, seg := range segments {
		for _, node := range seg.Nodes {
			label, ok := labels[node]
			if !ok {
				label = node
			}
			g, exists := groups[label]
			if !exists {
				g = &group{segments: make(map[int]bool)}
				groups[label] = g
				order = append(order, label)
			}
			g.members = append(g.members, node)
			g.segments[seg.HashDiv] = true
		}
	}

	var results []ClusterResult
	var clusterMap []types.ClusterMap
	var orphans []types.DocId

	for _, label := range order {
		g := groups[label]
		if len(g.members) == 1 {
			orphans = append(orphans, g.members[0])
			continue
		}
		results = append(results, buildClusterResult(g.members, len(g.segments), pulseScore, alloc, &clusterMap))
	}

	// Orphan nodes (labels with no partners) placed into synthetic groups
	// of up to maxChildCount nodes sorted by decreasing pulse score,
	// capped at maxClusNodeNum total, per §4.5.
	sort.Slice(orphans, func(i, j int) bool { return pulseScore(orphans[i]) > pulseScore(orphans[j]) })
	chunkSize := maxChildCount
	if maxClusNodeNum > 0 && chunkSize > maxClusNodeNum {
		chunkSize = maxClusNodeNum
	}
	if chunkSize <= 0 {
		chunkSize = len(orphans)
	}
	for start := 0; start < len(orphans); start += chunkSize {
		end := start + chunkSize
		if end > len(orphans) {
			end = len(orphans)
		}
		chunk := orphans[start:end]
		if len(chunk) == 0 {
			continue
		}
		results = append(results, buildClusterResult(chunk, 1, pulseScore, alloc, &clusterMap))
	}

	return results, clusterMap
}

func buildClusterResult(
	members []types.DocId,
	subtrees int,
	pulseScore func(types.DocId) float32,
	alloc func() types.DocId,
	clusterMap *[]types.ClusterMap,
) ClusterResult {
	clusId := types.ClusterId(alloc() | types.ClusterHighBit)
	var sum float32
	for _, m := range members {
		sum += pulseScore(m)
		*clusterMap = append(*clusterMap, types.ClusterMap{BaseNode: m, Cluster: clusId})
	}
	return ClusterResult{
		Stat: types.HierarchyStat{
			ClusId:        clusId,
			TotalSubtrees: uint32(subtrees),
			TotalNodeNum:  uint32(len(members)),
			PulseScore:    sum,
		},
		Members: members,
	}
}

// SubsumeLevel computes the cycle at which a cluster link's two endpoints
// first shared a label, per §4.5's invariant: "subsume_level of a summary
// link equals the cycle at which its two endpoints first shared a label
// (detected by cluster_link.src == cluster_link.dst after remap)." history
// is the label assignment recorded after each propagation cycle, oldest
// first.
func SubsumeLevel(link types.ClusterLink, history []LabelState) (level uint8, subsumed bool) {
	for i, labels := range history {
		if labels[link.BaseSrc] == labels[link.BaseDst] {
			return uint8(i), true
		}
	}
	return 0, false
}
