package pulserank

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/standardbeagle/pulsedex/internal/config"
	"github.com/standardbeagle/pulsedex/internal/linkgraph"
	"github.com/standardbeagle/pulsedex/internal/stageio"
	"github.com/standardbeagle/pulsedex/internal/types"
)

type shardArtifact struct {
	Edges      []linkgraph.Edge
	Neighbours []types.DocId
}

// Run loads every shard's edges written by internal/linkgraph, seeds
// every observed node at 1/BaseNodeCount, and iterates PulseRankCycles
// fixed-point cycles (§4.4), writing the resulting sorted pulse-score
// stream back into the stage's output directory for internal/cluster and
// internal/assoc to consume.
func Run(ctx context.Context, cfg *config.Config) error {
	node, ok := cfg.StageByName("pulserank")
	if !ok {
		return fmt.Errorf("pulserank: no stage node configured")
	}
	if len(node.InputDirs) == 0 {
		return fmt.Errorf("pulserank: stage node has no input directory")
	}

	inDir := filepath.Join(cfg.Pipeline.RootDir, node.InputDirs[0])
	shards, err := stageio.Shards(inDir)
	if err != nil {
		return fmt.Errorf("pulserank: %w", err)
	}

	var edges []linkgraph.Edge
	seen := make(map[types.DocId]bool)
	var allNodes []types.DocId
	for _, s := range shards {
		if err := ctx.Err(); err != nil {
			return err
		}
		var artifact shardArtifact
		if err := stageio.ReadShard(inDir, s, &artifact); err != nil {
			return fmt.Errorf("pulserank: shard %d: %w", s, err)
		}
		edges = append(edges, artifact.Edges...)
		for _, e := range artifact.Edges {
			if !seen[e.Src] {
				seen[e.Src] = true
				allNodes = append(allNodes, e.Src)
			}
			if !seen[e.Dst] {
				seen[e.Dst] = true
				allNodes = append(allNodes, e.Dst)
			}
		}
	}

	initial := NewInitialState(allNodes, len(allNodes))
	runner := NewRunner(cfg.Tunables.PulseRankCycles)
	scores := runner.Run(edges, initial)

	outDir := filepath.Join(cfg.Pipeline.RootDir, node.OutputDir)
	if err := stageio.WriteNamed(outDir, "pulse_scores", scores); err != nil {
		return fmt.Errorf("pulserank: %w", err)
	}
	return nil
}
