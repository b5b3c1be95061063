package linkgraph

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"path/filepath"

	"github.com/standardbeagle/pulsedex/internal/config"
	"github.com/standardbeagle/pulsedex/internal/shuffle"
	"github.com/standardbeagle/pulsedex/internal/stageio"
	"github.com/standardbeagle/pulsedex/internal/types"
)

// EdgesSubdir is where Run expects the crawled webgraph and
// keyword-co-occurrence traversal observations (RawEdge, gob-encoded, one
// shard per file): the stage DAG names a single InputDirs entry shared
// with hitlist's hit shards, so raw edges live in their own subdirectory
// beneath it rather than colliding with hitlist's shard numbering.
const EdgesSubdir = "edges"

// Run merges every RawEdge shard under the stage's input into deduplicated,
// pulse-normalized edges, shards them by source doc id mod ClientCount, and
// writes both the sharded edge sets and each shard's neighbour-shard list
// (§4.3).
func Run(ctx context.Context, cfg *config.Config) error {
	node, ok := cfg.StageByName("linkgraph")
	if !ok {
		return fmt.Errorf("linkgraph: no stage node configured")
	}
	if len(node.InputDirs) == 0 {
		return fmt.Errorf("linkgraph: stage node has no input directory")
	}

	edgeDir := filepath.Join(cfg.Pipeline.RootDir, node.InputDirs[0], EdgesSubdir)
	runShards, err := stageio.Shards(edgeDir)
	if err != nil {
		return fmt.Errorf("linkgraph: %w", err)
	}

	var allEdges []RawEdge
	for _, s := range runShards {
		if err := ctx.Err(); err != nil {
			return err
		}
		var edges []RawEdge
		if err := stageio.ReadShard(edgeDir, s, &edges); err != nil {
			return fmt.Errorf("linkgraph: shard %d: %w", s, err)
		}
		allEdges = append(allEdges, edges...)
	}

	// SplitRuns (and MergeAll, which drives it) requires same-source edges
	// contiguous in the stream; shard files are written in webgraph-crawl
	// order and give no such guarantee once multiple shards are
	// concatenated, so sort by source before merging.
	sortedEdges := sortEdgesBySrc(allEdges)

	// Pulse scores aren't known yet (pulse-rank runs after this stage);
	// pass-one merge normalizes traversal probability without a pulse
	// multiplier, matching §4.4's own bootstrap (pulse-rank's first cycle
	// starts every node at 1/BaseNodeCount before any edge has a score).
	merger := NewMerger(func(types.DocId) float32 { return 1 })

	sharded, neighbours, err := MergeAll(merger, sortedEdges, cfg.Tunables.ClientCount)
	if err != nil {
		return fmt.Errorf("linkgraph: %w", err)
	}

	outDir := filepath.Join(cfg.Pipeline.RootDir, node.OutputDir)
	for shard := 0; shard < cfg.Tunables.ClientCount; shard++ {
		artifact := struct {
			Edges      []Edge
			Neighbours []types.DocId
		}{Edges: sharded[shard], Neighbours: neighbours[shard]}
		if err := stageio.WriteShard(outDir, shard, artifact); err != nil {
			return fmt.Errorf("linkgraph: %w", err)
		}
	}
	return nil
}

// sortEdgesBySrc groups a mixed-order RawEdge stream into contiguous
// same-source runs using the shuffle substrate's general comparator sort
// (§4.1 create_quick_sorted_block), the precondition SplitRuns documents.
func sortEdgesBySrc(edges []RawEdge) []RawEdge {
	records := make([]shuffle.Record, len(edges))
	for i, e := range edges {
		records[i] = shuffle.Record{Key: encodeSrcKey(e.Src), Value: encodeRawEdge(e)}
	}
	sorted := shuffle.CreateQuickSortedBlock(records, func(a, b shuffle.Record) bool {
		return bytes.Compare(a.Key, b.Key) < 0
	})
	out := make([]RawEdge, len(sorted))
	for i, r := range sorted {
		out[i] = decodeRawEdge(r.Value)
	}
	return out
}

func encodeSrcKey(src types.DocId) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(src))
	return buf
}

const rawEdgeWidth = 8 + 8 + 4 + 1

func encodeRawEdge(e RawEdge) []byte {
	buf := make([]byte, rawEdgeWidth)
	binary.BigEndian.PutUint64(buf[0:8], uint64(e.Src))
	binary.BigEndian.PutUint64(buf[8:16], uint64(e.Dst))
	binary.BigEndian.PutUint32(buf[16:20], math.Float32bits(e.Prob))
	buf[20] = byte(e.Source)
	return buf
}

func decodeRawEdge(b []byte) RawEdge {
	return RawEdge{
		Src:    types.DocId(binary.BigEndian.Uint64(b[0:8])),
		Dst:    types.DocId(binary.BigEndian.Uint64(b[8:16])),
		Prob:   math.Float32frombits(binary.BigEndian.Uint32(b[16:20])),
		Source: EdgeSource(b[20]),
	}
}
