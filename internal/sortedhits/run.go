package sortedhits

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/standardbeagle/pulsedex/internal/cluster"
	"github.com/standardbeagle/pulsedex/internal/config"
	"github.com/standardbeagle/pulsedex/internal/hitlist"
	"github.com/standardbeagle/pulsedex/internal/stageio"
	"github.com/standardbeagle/pulsedex/internal/types"
)

// Run merges every hitlist word-shard's base and anchor hits, sorts them
// by (word_id, cluster_doc_id, enc) against the hierarchy's backward
// cluster map, splits the result into title/excerpt/image streams, and
// builds one fixed-spatial-boundary lookup index (§4.7) over the combined
// sorted stream, carrying per-type offsets.
func Run(ctx context.Context, cfg *config.Config) error {
	node, ok := cfg.StageByName("sortedhits")
	if !ok {
		return fmt.Errorf("sortedhits: no stage node configured")
	}
	if len(node.InputDirs) != 2 {
		return fmt.Errorf("sortedhits: stage node expects exactly two input directories (hitlist, cluster)")
	}
	hitDir := filepath.Join(cfg.Pipeline.RootDir, node.InputDirs[0])
	clusterDir := filepath.Join(cfg.Pipeline.RootDir, node.InputDirs[1])

	var hierarchy cluster.Output
	if err := stageio.ReadNamed(clusterDir, "hierarchy", &hierarchy); err != nil {
		return fmt.Errorf("sortedhits: %w", err)
	}
	backward := NewBackwardClusterMap(hierarchy.ClusterMap)

	shards, err := stageio.Shards(hitDir)
	if err != nil {
		return fmt.Errorf("sortedhits: %w", err)
	}

	var allHits []types.HitItem
	for _, s := range shards {
		if err := ctx.Err(); err != nil {
			return err
		}
		var out hitlist.Output
		if err := stageio.ReadShard(hitDir, s, &out); err != nil {
			return fmt.Errorf("sortedhits: hit shard %d: %w", s, err)
		}
		allHits = append(allHits, out.BaseHits...)
		allHits = append(allHits, out.AnchorHits...)
	}

	sorted, err := Sort(allHits, backward)
	if err != nil {
		return fmt.Errorf("sortedhits: %w", err)
	}

	base, image := SplitBaseAndImage(sorted)
	byType := SplitByType(sorted)

	outDir := filepath.Join(cfg.Pipeline.RootDir, node.OutputDir)
	streams := map[string][]types.HitItem{
		"sorted_base_hits":  base,
		"sorted_image_hits": image,
		"title_hit":         byType[types.HitTitle],
		"excerpt_hit":       byType[types.HitExcerpt],
		"image_hit":         byType[types.HitImage],
	}
	for name, hits := range streams {
		if err := writeHitStream(outDir, name, hits); err != nil {
			return fmt.Errorf("sortedhits: %w", err)
		}
	}

	lookup := BuildLookupIndex(sorted, cfg.Tunables.MaxSpatNum)
	if err := stageio.WriteNamed(outDir, "lookup_index", lookup); err != nil {
		return fmt.Errorf("sortedhits: %w", err)
	}
	return nil
}

func writeHitStream(dir, name string, hits []types.HitItem) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	defer f.Close()
	for _, h := range hits {
		if err := EncodeHitItem(f, h); err != nil {
			return fmt.Errorf("encode %s: %w", name, err)
		}
	}
	return nil
}
