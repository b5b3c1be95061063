package linkgraph

import "github.com/standardbeagle/pulsedex/internal/types"

// SplitRuns partitions a src-ordered edge stream into contiguous
// same-source runs, the unit MergeRun operates on. edges must already be
// grouped by Src (not necessarily globally sorted, just contiguous per
// source), matching how the webgraph/keyword shuffle stage hands sources to
// this one.
func SplitRuns(edges []RawEdge) [][]RawEdge {
	if len(edges) == 0 {
		return nil
	}
	var runs [][]RawEdge
	start := 0
	for i := 1; i <= len(edges); i++ {
		if i == len(edges) || edges[i].Src != edges[start].Src {
			runs = append(runs, edges[start:i])
			start = i
		}
	}
	return runs
}

// ShardFor returns the client shard owning a source node, per §4.3:
// "partitioned by src mod ClientCount."
func ShardFor(src types.DocId, clientCount int) int {
	return int(uint64(src) % uint64(clientCount))
}

// ShardEdges partitions merged edges into bin_link_set0.set.<c> buckets by
// src mod ClientCount.
func ShardEdges(edges []Edge, clientCount int) map[int][]Edge {
	out := make(map[int][]Edge)
	for _, e := range edges {
		c := ShardFor(e.Src, clientCount)
		out[c] = append(out[c], e)
	}
	return out
}

// NeighbourShards builds the neighbour-node side file the cluster-merge
// stage consumes: every edge endpoint (both src and dst), hashed by
// destination shard per §4.3 ("records every endpoint hashed by
// destination shard"), deduplicated within each shard.
func NeighbourShards(edges []Edge, clientCount int) map[int][]types.DocId {
	seen := make(map[int]map[types.DocId]bool, clientCount)
	out := make(map[int][]types.DocId)
	add := func(shard int, node types.DocId) {
		if seen[shard] == nil {
			seen[shard] = make(map[types.DocId]bool)
		}
		if seen[shard][node] {
			return
		}
		seen[shard][node] = true
		out[shard] = append(out[shard], node)
	}
	for _, e := range edges {
		shard := ShardFor(e.Dst, clientCount)
		add(shard, e.Src)
		add(shard, e.Dst)
	}
	return out
}

// MergeAll runs the full per-run merge and sharding pass over an
// already-grouped-by-source edge stream, returning the sharded output and
// the neighbour side file together.
func MergeAll(m *Merger, edges []RawEdge, clientCount int) (map[int][]Edge, map[int][]types.DocId, error) {
	var merged []Edge
	for _, run := range SplitRuns(edges) {
		out, err := m.MergeRun(run)
		if err != nil {
			return nil, nil, err
		}
		merged = append(merged, out...)
	}
	return ShardEdges(merged, clientCount), NeighbourShards(merged, clientCount), nil
}
