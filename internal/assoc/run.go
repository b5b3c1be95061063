package assoc

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/standardbeagle/pulsedex/internal/config"
	"github.com/standardbeagle/pulsedex/internal/hitlist"
	"github.com/standardbeagle/pulsedex/internal/lexicon"
	"github.com/standardbeagle/pulsedex/internal/stageio"
	"github.com/standardbeagle/pulsedex/internal/types"
)

// Output is the stage's full keyword/association artifact set.
type Output struct {
	Table       []Entry // forward + reverse association entries
	Keywords    map[types.DocId][]types.KeywordHit
	LexiconHash []Bucket
}

// Run extracts consecutive-token pairs from every document's word
// sequence, scores and cuts them down to the association table (§4.8),
// expands each document's keyword set through grouped-term iteration, and
// builds the global consonant-skeleton lexicon hash.
func Run(ctx context.Context, cfg *config.Config) error {
	node, ok := cfg.StageByName("assoc")
	if !ok {
		return fmt.Errorf("assoc: no stage node configured")
	}
	hitNode, ok := cfg.StageByName("hitlist")
	if !ok {
		return fmt.Errorf("assoc: hitlist stage not configured")
	}
	lexNode, ok := cfg.StageByName("lexicon")
	if !ok {
		return fmt.Errorf("assoc: lexicon stage not configured")
	}
	pulseNode, ok := cfg.StageByName("pulserank")
	if !ok {
		return fmt.Errorf("assoc: pulserank stage not configured")
	}

	hitDir := filepath.Join(cfg.Pipeline.RootDir, hitNode.OutputDir)
	var sequences []hitlist.DocSequence
	if err := stageio.ReadNamed(hitDir, "doc_sequences", &sequences); err != nil {
		return fmt.Errorf("assoc: %w", err)
	}

	lexDir := filepath.Join(cfg.Pipeline.RootDir, lexNode.OutputDir)
	var wb lexicon.Writeback
	if err := stageio.ReadNamed(lexDir, "dictionary", &wb); err != nil {
		return fmt.Errorf("assoc: %w", err)
	}

	pulseDir := filepath.Join(cfg.Pipeline.RootDir, pulseNode.OutputDir)
	var pulseScores []types.PulseMap
	if err := stageio.ReadNamed(pulseDir, "pulse_scores", &pulseScores); err != nil {
		return fmt.Errorf("assoc: %w", err)
	}

	var allPairs []PairKey
	for _, seq := range sequences {
		if err := ctx.Err(); err != nil {
			return err
		}
		allPairs = append(allPairs, SlidingPairs(seq.Words)...)
	}

	counts, err := CountPairs(allPairs)
	if err != nil {
		return fmt.Errorf("assoc: %w", err)
	}

	globalCount := func(id types.WordId) int64 {
		if int(id) >= len(wb.Counts) {
			return 0
		}
		return wb.Counts[id]
	}
	scored := ScoreAll(counts, globalCount)
	top := KthOrderStatisticCutoff(scored, cfg.Tunables.MaxAssocNum)

	var nextAssoc types.AssocId
	forward, reverse := BuildTable(top, func() types.AssocId { nextAssoc++; return nextAssoc })
	allEntries := append(append([]Entry(nil), forward...), reverse...)
	table := NewTable(forward)

	var nextGroupWord types.WordId = types.WordId(len(wb.Words)) + 1
	pulseStream := NewPulseScoreStream(pulseScores)

	keywords := make(map[types.DocId][]types.KeywordHit, len(sequences))
	for _, seq := range sequences {
		if err := ctx.Err(); err != nil {
			return err
		}
		terms := make([]Term, len(seq.Words))
		for i, w := range seq.Words {
			terms[i] = Term{ID: w, Size: 1, Occur: globalCount(w), Position: i, Weight: 1.0}
		}

		expander := &GroupExpander{
			Table:          table,
			ScanWindowSize: cfg.Tunables.ScanWindowSize,
			Capacity:       cfg.Tunables.MaxAssocNum,
			Alloc:          func() types.WordId { id := nextGroupWord; nextGroupWord++; return id },
		}
		expanded := expander.Expand(terms, cfg.Tunables.GroupCycleCount)
		final := FinalKeywords(expanded, cfg.Tunables.FinalKeywordCount)

		score := pulseStream.ScoreFor(seq.DocId)
		keywords[seq.DocId] = BuildKeywordHits(seq.DocId, final, score)
	}

	var buckets []Bucket
	for id, count := range wb.Counts {
		word := wb.Words[id]
		skeleton := ConsonantSkeleton(word, cfg.Tunables.ConsonantSkeletonLen)
		hash := UniversalHash(skeleton, DefaultPermutation, 1<<16)
		buckets = append(buckets, Bucket{Hash: hash, WordId: types.WordId(id), Occurrence: count})
	}
	sortedBuckets := SortBuckets(buckets)

	outDir := filepath.Join(cfg.Pipeline.RootDir, node.OutputDir)
	out := Output{Table: allEntries, Keywords: keywords, LexiconHash: sortedBuckets}
	if err := stageio.WriteNamed(outDir, "keywords", out); err != nil {
		return fmt.Errorf("assoc: %w", err)
	}
	return nil
}
