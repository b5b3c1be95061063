package assoc

import (
	"sort"
	"strings"

	"github.com/standardbeagle/pulsedex/internal/types"
)

const defaultSkeletonLength = 6

var vowels = [256]bool{'a': true, 'e': true, 'i': true, 'o': true, 'u': true}

// ConsonantSkeleton reduces word to its lowercase consonants, truncated to
// length (default 6), the approximate-match key §4.8's global lexicon
// hashes on: "a universal-hash of alphabet-permuted consonant skeletons
// (default 6 letters) produces approximate-match hash buckets."
func ConsonantSkeleton(word string, length int) string {
	if length <= 0 {
		length = defaultSkeletonLength
	}
	lower := strings.ToLower(word)
	var b strings.Builder
	for i := 0; i < len(lower) && b.Len() < length; i++ {
		c := lower[i]
		if c < 'a' || c > 'z' || vowels[c] {
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// AlphabetPermutation is a fixed substitution table over a-z, used so the
// skeleton hash doesn't collide along plain alphabetical adjacency (two
// skeletons differing by one nearby letter should not reliably land in
// neighboring buckets).
type AlphabetPermutation [26]byte

// DefaultPermutation is a fixed, deterministic a-z permutation: every
// letter maps to the letter 9 positions ahead (mod 26), chosen simply to
// avoid the identity mapping — any fixed bijection works equally well
// here, since the goal is only to decorrelate skeleton order from bucket
// order, not cryptographic diffusion.
var DefaultPermutation = func() AlphabetPermutation {
	var p AlphabetPermutation
	for i := range p {
		p[i] = byte((i + 9) % 26)
	}
	return p
}()

// UniversalHash folds a consonant skeleton into a bucket id in
// [0, bucketCount), first substituting each letter through perm and then
// combining with a polynomial rolling hash.
func UniversalHash(skeleton string, perm AlphabetPermutation, bucketCount int) uint32 {
	if bucketCount <= 0 {
		bucketCount = 1
	}
	var h uint32 = 2166136261 // FNV offset basis, reused as the rolling seed
	for i := 0; i < len(skeleton); i++ {
		c := skeleton[i]
		var mapped byte
		if c >= 'a' && c <= 'z' {
			mapped = perm[c-'a']
		} else {
			mapped = c
		}
		h = h*31 + uint32(mapped)
	}
	return h % uint32(bucketCount)
}

// Bucket is one approximate-match hash bucket: every lexicon word whose
// consonant skeleton hashed to the same value, carrying the corpus-wide
// occurrence count used to rank entries within the bucket.
type Bucket struct {
	Hash       uint32
	WordId     types.WordId
	Occurrence int64
}

// SortBuckets orders buckets by (occurrence desc, hash asc), per §4.8:
// "buckets are then sorted by (occurrence desc, hash) and indexed by a
// compressed byte-offset lookup."
func SortBuckets(buckets []Bucket) []Bucket {
	out := append([]Bucket(nil), buckets...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Occurrence != out[j].Occurrence {
			return out[i].Occurrence > out[j].Occurrence
		}
		return out[i].Hash < out[j].Hash
	})
	return out
}

// HashOffsetIndex is the compressed byte-offset lookup over a
// hash-sorted-then-occurrence-sorted bucket list: for a given hash value,
// it gives the index range of buckets sharing it, without a linear scan.
// It assumes buckets is already grouped (not necessarily sorted) by hash
// — callers build it directly from SortBuckets' output re-grouped by
// hash, matching the source's "compressed" framing (one entry per
// distinct hash rather than one per bucket).
type HashOffsetIndex struct {
	hashes []uint32
	starts []int // starts[i] is the first index in buckets whose Hash == hashes[i]
	ends   []int // ends[i] is one past the last index in buckets whose Hash == hashes[i]
}

// BuildHashOffsetIndex groups an occurrence/hash-sorted bucket list by
// hash and records each group's [start, end) index range.
func BuildHashOffsetIndex(sorted []Bucket) *HashOffsetIndex {
	byHash := make(map[uint32][]int)
	for i, b := range sorted {
		byHash[b.Hash] = append(byHash[b.Hash], i)
	}

	idx := &HashOffsetIndex{}
	hashes := make([]uint32, 0, len(byHash))
	for h := range byHash {
		hashes = append(hashes, h)
	}
	sort.Slice(hashes, func(i, j int) bool { return hashes[i] < hashes[j] })

	for _, h := range hashes {
		group := byHash[h]
		idx.hashes = append(idx.hashes, h)
		idx.starts = append(idx.starts, group[0])
		idx.ends = append(idx.ends, group[len(group)-1]+1)
	}
	return idx
}

// Lookup returns the [start, end) index range into the bucket list that
// shares hash, in ranked (occurrence desc) order already.
func (idx *HashOffsetIndex) Lookup(hash uint32) (start, end int, ok bool) {
	i := sort.Search(len(idx.hashes), func(i int) bool { return idx.hashes[i] >= hash })
	if i >= len(idx.hashes) || idx.hashes[i] != hash {
		return 0, 0, false
	}
	return idx.starts[i], idx.ends[i], true
}

// ReverseLexicon is the symmetric word-id -> text lookup §4.8 builds
// alongside the hash index: "Word-id → text reverse lookup is built
// symmetrically."
type ReverseLexicon struct {
	byID map[types.WordId]string
}

// NewReverseLexicon builds a reverse lookup from a word-id-ordered text
// list (the same order the forward dictionary assigns ids in).
func NewReverseLexicon(words []string, startID types.WordId) *ReverseLexicon {
	r := &ReverseLexicon{byID: make(map[types.WordId]string, len(words))}
	for i, w := range words {
		r.byID[startID+types.WordId(i)] = w
	}
	return r
}

// Text returns the word text for a word id, if known.
func (r *ReverseLexicon) Text(id types.WordId) (string, bool) {
	s, ok := r.byID[id]
	return s, ok
}
