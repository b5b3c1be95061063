package hitlist

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/standardbeagle/pulsedex/internal/alloc"
	"github.com/standardbeagle/pulsedex/internal/config"
	"github.com/standardbeagle/pulsedex/internal/lexicon"
	"github.com/standardbeagle/pulsedex/internal/stageio"
	"github.com/standardbeagle/pulsedex/internal/types"
)

// Token is one document-body word prior to global id resolution, tagged
// with the attributes §4.2's meta hit stream carries per hit.
type Token struct {
	Text     string
	Title    bool
	Image    bool
	NewImage bool
	Link     bool
}

// DocRecord is one tokenizer client's per-document input: body tokens in
// order plus the already doc-id-resolved link cluster. It stands in for
// the combined meta_hit_list/meta_link_set/word_log stream §4.2 reads,
// since every Token here already carries its dictionary word directly
// (TermStop-equivalent) rather than a division-local id — the per-division
// word_log/dictionary_offset resolution path GlobalIdResolver implements
// is exercised directly by internal/hitlist's own tests against synthetic
// word logs.
type DocRecord struct {
	DocId        types.DocId
	IsExcerptDoc bool
	Tokens       []Token
	Links        []LinkEntry
}

// Output is one word-shard's assembled hit-list artifact.
type Output struct {
	Shard      int
	BaseHits   []types.HitItem
	AnchorHits []types.HitItem
}

// DocSequence is one document's ordered global word-id token stream, the
// ordered-pairs source internal/assoc's sliding-window pair extraction
// reads (§4.8's association pipeline works off consecutive-token pairs,
// not the word-sharded postings sortedhits produces).
type DocSequence struct {
	DocId types.DocId
	Words []types.WordId
}

// Run assembles every document under the stage's input shards into
// global HitItems, sharded by word_id mod HitListBreadth (§4.2).
func Run(ctx context.Context, cfg *config.Config) error {
	node, ok := cfg.StageByName("hitlist")
	if !ok {
		return fmt.Errorf("hitlist: no stage node configured")
	}
	if len(node.InputDirs) == 0 {
		return fmt.Errorf("hitlist: stage node has no input directory")
	}
	lexNode, ok := cfg.StageByName("lexicon")
	if !ok {
		return fmt.Errorf("hitlist: lexicon stage not configured")
	}

	var wb lexicon.Writeback
	dictDir := filepath.Join(cfg.Pipeline.RootDir, lexNode.OutputDir)
	if err := stageio.ReadNamed(dictDir, "dictionary", &wb); err != nil {
		return fmt.Errorf("hitlist: %w", err)
	}

	dict := lexicon.NewDictionary()
	for _, w := range wb.Words {
		dict.Intern(w)
	}
	stemmer := lexicon.NewStemmer(true, 3, nil)

	inputDir := filepath.Join(cfg.Pipeline.RootDir, node.InputDirs[0])
	docShards, err := stageio.Shards(inputDir)
	if err != nil {
		return fmt.Errorf("hitlist: %w", err)
	}

	breadth := cfg.Tunables.HitListBreadth
	byShard := make(map[int][]types.HitItem)
	anchorsByShard := make(map[int][]types.HitItem)
	var sequences []DocSequence

	// Every word-id shard accumulates its HitItem posting list one
	// document at a time; pool that growth through a tiered slab
	// allocator instead of letting append's doubling strategy churn the
	// GC on what's ultimately a small, predictable set of list lengths
	// (per-word posting-length distribution, §4.2).
	hitAlloc := alloc.NewPostingSlabAllocator[types.HitItem]()
	anchorAlloc := alloc.NewPostingSlabAllocator[types.HitItem]()
	appendShard := func(sa *alloc.SlabAllocator[types.HitItem], m map[int][]types.HitItem, shard int, group []types.HitItem) {
		existing := m[shard]
		grown := sa.GrowSlice(existing, len(group))
		m[shard] = append(grown, group...)
	}

	for _, s := range docShards {
		if err := ctx.Err(); err != nil {
			return err
		}

		var docs []DocRecord
		if err := stageio.ReadShard(inputDir, s, &docs); err != nil {
			return fmt.Errorf("hitlist: shard %d: %w", s, err)
		}

		for _, doc := range docs {
			hits := make([]RawHit, 0, len(doc.Tokens))
			seq := DocSequence{DocId: doc.DocId}
			for _, tok := range doc.Tokens {
				id, ok := dict.Lookup(stemmer.Stem(tok.Text))
				if !ok {
					continue
				}
				seq.Words = append(seq.Words, types.WordId(id))
				flags := types.TermStop
				if tok.Title {
					flags |= types.TermMeta | types.TermCapital
				}
				if tok.Image {
					flags |= types.TermImage
					if tok.NewImage {
						flags |= types.TermNewImage
					}
				}
				if tok.Link {
					flags |= types.TermLink
				}
				hits = append(hits, RawHit{TermType: flags, LogDivOrWordId: int32(id)})
			}

			meta := DocMeta{DocId: doc.DocId, DocSize: len(hits), IsExcerptDoc: doc.IsExcerptDoc, Hits: hits}
			resolver := NewGlobalIdResolver(nil, nil)
			assembler := NewAssembler(resolver, breadth, nil)

			result, err := assembler.ProcessDocument(meta, doc.Links)
			if err != nil {
				return fmt.Errorf("hitlist: %w", err)
			}
			for shard, group := range ShardHits(result.BaseHits, breadth) {
				appendShard(hitAlloc, byShard, shard, group)
			}
			for shard, group := range ShardHits(result.AnchorHits, breadth) {
				appendShard(anchorAlloc, anchorsByShard, shard, group)
			}
			sequences = append(sequences, seq)
		}
	}

	outDir := filepath.Join(cfg.Pipeline.RootDir, node.OutputDir)
	for shard := 0; shard < breadth; shard++ {
		out := Output{Shard: shard, BaseHits: byShard[shard], AnchorHits: anchorsByShard[shard]}
		if err := stageio.WriteShard(outDir, shard, out); err != nil {
			return fmt.Errorf("hitlist: %w", err)
		}
	}
	if err := stageio.WriteNamed(outDir, "doc_sequences", sequences); err != nil {
		return fmt.Errorf("hitlist: %w", err)
	}
	return nil
}
