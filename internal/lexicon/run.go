package lexicon

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/standardbeagle/pulsedex/internal/config"
	"github.com/standardbeagle/pulsedex/internal/stageio"
)

// DivisionWords is one log division's raw tokenizer output prior to
// dictionary writeback: every word form observed, in first-seen order.
// It stands in for the raw LogFile content §6 names (GlobalData/LogFile/)
// the way every other stage's gob-encoded intermediate does: no bespoke
// wire format is specified for it, so the orchestration layer reads and
// writes it the same way it does every other undefined intra-pipeline
// artifact (see internal/stageio's package doc).
type DivisionWords struct {
	Division int
	Words    []string
}

// Writeback is stage 4.2's lexicon-writeback output: the merged global
// dictionary plus the per-division offset table every later stage's
// global-id resolution depends on.
type Writeback struct {
	Words   []string // word id order: Words[id] is the dictionary entry for that id
	Counts  []int64  // word id order: corpus-wide occurrence count
	Offsets *DictionaryOffset
}

// Run discovers every log division under cfg.RootDir/<stage InputDirs[0]>,
// interns their stemmed, non-stop words into one global dictionary (§4.2
// "Tokenization / lexicon writeback"), and writes the merged dictionary
// plus dictionary_offset to the stage's OutputDir.
func Run(ctx context.Context, cfg *config.Config) error {
	node, ok := cfg.StageByName("lexicon")
	if !ok {
		return fmt.Errorf("lexicon: no stage node configured")
	}
	if len(node.InputDirs) == 0 {
		return fmt.Errorf("lexicon: stage node has no input directory")
	}

	inputDir := filepath.Join(cfg.Pipeline.RootDir, node.InputDirs[0])
	divisions, err := stageio.Shards(inputDir)
	if err != nil {
		return fmt.Errorf("lexicon: %w", err)
	}

	stemmer := NewStemmer(true, 3, nil)
	stopWords := NewStopWords(DefaultStopWords())
	dict := NewDictionary()

	perDivisionCounts := make([]uint32, 0, len(divisions))
	for _, d := range divisions {
		if err := ctx.Err(); err != nil {
			return err
		}

		var dw DivisionWords
		if err := stageio.ReadShard(inputDir, d, &dw); err != nil {
			return fmt.Errorf("lexicon: division %d: %w", d, err)
		}

		before := dict.Len()
		for _, word := range dw.Words {
			if stopWords.Contains(word) {
				continue
			}
			dict.Intern(stemmer.Stem(word))
		}
		perDivisionCounts = append(perDivisionCounts, uint32(dict.Len()-before))
	}

	offsets := NewDictionaryOffset(0, 0, perDivisionCounts)

	outDir := filepath.Join(cfg.Pipeline.RootDir, node.OutputDir)
	wb := Writeback{Words: dict.Words(), Counts: dict.AllOccurrences(), Offsets: offsets}
	if err := stageio.WriteNamed(outDir, "dictionary", wb); err != nil {
		return fmt.Errorf("lexicon: %w", err)
	}
	return nil
}

// DefaultStopWords is the sorted stop-word list every lexicon run uses; no
// override of it is read from configuration.
func DefaultStopWords() []string {
	words := []string{
		"a", "an", "and", "are", "as", "at", "be", "by", "for", "from",
		"has", "he", "in", "is", "it", "its", "of", "on", "that", "the",
		"to", "was", "were", "will", "with",
	}
	sort.Strings(words)
	return words
}
