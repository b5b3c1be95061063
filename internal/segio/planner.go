package segio

// BlockRange is a contiguous, byte-addressed slice of one shard's data file,
// the unit the coordinator hands to a single worker (§5 "Dispatch model").
// StartByte/EndByte are offsets into the data file (header-inclusive);
// FirstBlock/BlockCount index into the side-index slice the range was
// planned from, so a worker can report progress in block units.
type BlockRange struct {
	Shard      int
	FirstBlock int
	BlockCount int
	StartByte  int64
	EndByte    int64
}

// PlanRanges partitions one shard's block headers into at most maxWorkers
// contiguous ranges of roughly equal uncompressed size, so that no worker is
// left starved while another chews through a disproportionately large run
// of blocks. An empty header list yields a single empty range; non-empty
// headers whose total uncompressed size is zero yield one range covering
// every block.
func PlanRanges(shard int, headers []BlockHeader, maxWorkers int) []BlockRange {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if len(headers) == 0 {
		return []BlockRange{{Shard: shard}}
	}

	var totalUncompressed int64
	for _, h := range headers {
		totalUncompressed += int64(h.UncompressedLen)
	}

	// byteOffsets holds true file offsets (header + compressed payload),
	// computed independently of the uncompressed-size-based target split
	// below, which only decides *where* to cut the block sequence.
	byteOffsets := make([]int64, len(headers)+1)
	var cursor int64
	for i, h := range headers {
		byteOffsets[i] = cursor
		cursor += blockHeaderSize + int64(h.CompressedLen)
	}
	byteOffsets[len(headers)] = cursor

	workers := maxWorkers
	if workers > len(headers) {
		workers = len(headers)
	}
	target := totalUncompressed / int64(workers)
	if target == 0 {
		target = 1
	}

	var ranges []BlockRange
	start := 0
	var runSize int64
	for i, h := range headers {
		runSize += int64(h.UncompressedLen)
		isLast := i == len(headers)-1
		reachedTarget := runSize >= target && len(ranges) < workers-1
		if isLast || reachedTarget {
			ranges = append(ranges, BlockRange{
				Shard:      shard,
				FirstBlock: start,
				BlockCount: i - start + 1,
				StartByte:  byteOffsets[start],
				EndByte:    byteOffsets[i+1],
			})
			start = i + 1
			runSize = 0
		}
	}
	return ranges
}
