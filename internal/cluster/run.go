package cluster

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/standardbeagle/pulsedex/internal/config"
	"github.com/standardbeagle/pulsedex/internal/linkgraph"
	"github.com/standardbeagle/pulsedex/internal/shuffle"
	"github.com/standardbeagle/pulsedex/internal/stageio"
	"github.com/standardbeagle/pulsedex/internal/types"
)

type linkShardArtifact struct {
	Edges      []linkgraph.Edge
	Neighbours []types.DocId
}

// Output is the stage's complete hierarchy-merge result: the clusters
// formed, and the base-node -> new-cluster map internal/abtree consumes.
type Output struct {
	Clusters   []ClusterResult
	ClusterMap []types.ClusterMap
}

// Run loads pulse-rank's scored edges and scores, label-propagates them
// to a fixed point, merges the resulting segments into a cluster
// hierarchy (§4.5), and writes the cluster set plus cluster map.
func Run(ctx context.Context, cfg *config.Config) error {
	node, ok := cfg.StageByName("cluster")
	if !ok {
		return fmt.Errorf("cluster: no stage node configured")
	}
	if len(node.InputDirs) == 0 {
		return fmt.Errorf("cluster: stage node has no input directory")
	}
	linkNode, ok := cfg.StageByName("linkgraph")
	if !ok {
		return fmt.Errorf("cluster: linkgraph stage not configured")
	}

	inDir := filepath.Join(cfg.Pipeline.RootDir, node.InputDirs[0])

	var scores []types.PulseMap
	if err := stageio.ReadNamed(inDir, "pulse_scores", &scores); err != nil {
		return fmt.Errorf("cluster: %w", err)
	}
	pulseByNode := make(map[types.DocId]float32, len(scores))
	var maxNode types.DocId
	for _, s := range scores {
		pulseByNode[s.Node] = s.PulseScore
		if s.Node > maxNode {
			maxNode = s.Node
		}
	}

	linkDir := filepath.Join(cfg.Pipeline.RootDir, linkNode.OutputDir)
	linkShards, err := stageio.Shards(linkDir)
	if err != nil {
		return fmt.Errorf("cluster: %w", err)
	}

	var edges []linkgraph.Edge
	seen := make(map[types.DocId]bool)
	var allNodes []types.DocId
	for _, s := range linkShards {
		if err := ctx.Err(); err != nil {
			return err
		}
		var artifact linkShardArtifact
		if err := stageio.ReadShard(linkDir, s, &artifact); err != nil {
			return fmt.Errorf("cluster: link shard %d: %w", s, err)
		}
		edges = append(edges, artifact.Edges...)
		for _, e := range artifact.Edges {
			for _, n := range [2]types.DocId{e.Src, e.Dst} {
				if !seen[n] {
					seen[n] = true
					allNodes = append(allNodes, n)
				}
			}
		}
	}

	segments := buildSegments(allNodes, cfg.Tunables.ClientCount)

	runner := NewRunner(cfg.Tunables.WavePassCycles, cfg.Tunables.WavePassInst, cfg.Tunables.MaxClusNodeNum)
	labels, _ := runner.Run(edges, IdentityLabels(allNodes))

	pulseScore := func(d types.DocId) float32 { return pulseByNode[d] }

	next := maxNode + 1
	alloc := func() types.DocId {
		id := next
		next++
		return id
	}

	clusters, clusterMap := MergeHierarchies(segments, labels, pulseScore, cfg.Tunables.MaxChildCount, cfg.Tunables.MaxClusNodeNum, alloc)

	outDir := filepath.Join(cfg.Pipeline.RootDir, node.OutputDir)
	out := Output{Clusters: clusters, ClusterMap: clusterMap}
	if err := stageio.WriteNamed(outDir, "hierarchy", out); err != nil {
		return fmt.Errorf("cluster: %w", err)
	}
	return nil
}

// buildSegments hash-partitions nodes into hashDivNum wave-pass segments
// using the shuffle substrate's distribute_keys (§4.1), the same
// hash-division every segment's HashDiv field names, then sorts each
// shard's nodes with create_quick_sorted_block so MergeHierarchies sees a
// stable per-segment node order.
func buildSegments(nodes []types.DocId, hashDivNum int) []Segment {
	records := make([]shuffle.Record, len(nodes))
	for i, n := range nodes {
		records[i] = shuffle.Record{Key: encodeNodeKey(n)}
	}
	shards, _ := shuffle.DistributeKeys(records, hashDivNum)

	less := func(a, b shuffle.Record) bool { return bytes.Compare(a.Key, b.Key) < 0 }
	segments := make([]Segment, 0, hashDivNum)
	for d, recs := range shards {
		if len(recs) == 0 {
			continue
		}
		sorted := shuffle.CreateQuickSortedBlock(recs, less)
		segNodes := make([]types.DocId, len(sorted))
		for i, r := range sorted {
			segNodes[i] = decodeNodeKey(r.Key)
		}
		segments = append(segments, Segment{HashDiv: d, Nodes: segNodes})
	}
	sort.Slice(segments, func(i, j int) bool { return segments[i].HashDiv < segments[j].HashDiv })
	return segments
}

func encodeNodeKey(n types.DocId) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(n))
	return buf
}

func decodeNodeKey(b []byte) types.DocId {
	return types.DocId(binary.BigEndian.Uint64(b))
}
