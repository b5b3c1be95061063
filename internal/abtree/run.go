package abtree

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/standardbeagle/pulsedex/internal/cluster"
	"github.com/standardbeagle/pulsedex/internal/config"
	"github.com/standardbeagle/pulsedex/internal/stageio"
	"github.com/standardbeagle/pulsedex/internal/types"
)

// Run packs internal/cluster's hierarchy into per-shard packed node
// streams and root indexes (§4.6), sharded by the leftmost (lowest) leaf
// DocId of each top-level subtree mod ClientCount.
func Run(ctx context.Context, cfg *config.Config) error {
	node, ok := cfg.StageByName("abtree")
	if !ok {
		return fmt.Errorf("abtree: no stage node configured")
	}
	if len(node.InputDirs) == 0 {
		return fmt.Errorf("abtree: stage node has no input directory")
	}

	inDir := filepath.Join(cfg.Pipeline.RootDir, node.InputDirs[0])
	var hierarchy cluster.Output
	if err := stageio.ReadNamed(inDir, "hierarchy", &hierarchy); err != nil {
		return fmt.Errorf("abtree: %w", err)
	}

	subtreesByShard := make(map[int][]*Node)
	clientCount := cfg.Tunables.ClientCount
	if clientCount <= 0 {
		clientCount = 1
	}

	for _, cr := range hierarchy.Clusters {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(cr.Members) == 0 {
			continue
		}
		sorted := append([]types.DocId(nil), cr.Members...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		children := make([]*Node, 0, len(sorted))
		for _, m := range sorted {
			children = append(children, &Node{IsLeaf: true, Leaf: m, TotalNodeNum: 1, TravProb: cr.Stat.PulseScore})
		}
		root := &Node{
			Children:     children,
			TotalNodeNum: uint32(len(children)),
			TravProb:     cr.Stat.PulseScore,
		}
		AssignRanges(root)

		shard := int(uint64(sorted[0]) % uint64(clientCount))
		subtreesByShard[shard] = append(subtreesByShard[shard], root)
	}

	outDir := filepath.Join(cfg.Pipeline.RootDir, node.OutputDir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("abtree: mkdir %s: %w", outDir, err)
	}

	for shard, subtrees := range subtreesByShard {
		sort.Slice(subtrees, func(i, j int) bool { return leftmostLeaf(subtrees[i]) < leftmostLeaf(subtrees[j]) })

		builder := NewBuilder()
		nodeBytes, roots, err := builder.BuildShard(subtrees)
		if err != nil {
			return fmt.Errorf("abtree: shard %d: %w", shard, err)
		}

		nodePath := filepath.Join(outDir, fmt.Sprintf("ab_node.%d", shard))
		if err := os.WriteFile(nodePath, nodeBytes, 0o644); err != nil {
			return fmt.Errorf("abtree: write %s: %w", nodePath, err)
		}

		rootPath := filepath.Join(outDir, fmt.Sprintf("ab_root.%d", shard))
		f, err := os.Create(rootPath)
		if err != nil {
			return fmt.Errorf("abtree: create %s: %w", rootPath, err)
		}
		err = NewRootIndex(roots).Encode(f)
		closeErr := f.Close()
		if err != nil {
			return fmt.Errorf("abtree: encode %s: %w", rootPath, err)
		}
		if closeErr != nil {
			return fmt.Errorf("abtree: close %s: %w", rootPath, closeErr)
		}
	}
	return nil
}
