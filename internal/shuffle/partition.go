package shuffle

// DivBound is one run-length interval of the original file's record order:
// Count consecutive records, starting where the previous interval left off,
// all routed to Shard. Walking a file's DivBound list in order and pulling
// Count records at a time from each named shard exactly reconstructs the
// file's original record order — the "file_div_bound intervals recorded
// during distribute_*" that order_mapped_sets/order_mapped_occurrences
// replay (§4.1, §9 byte-for-byte-modulo-block-boundaries invariant).
type DivBound struct {
	Shard int
	Count int
}

// DistributeKeys hash-partitions a stream of key records into hashDivNum
// shards by the record's key (§4.1 distribute_keys), recording the
// DivBound intervals needed to restitch the original order later. The
// returned shards slice is indexed by shard id and held in memory; nothing
// here writes the shards to disk.
func DistributeKeys(records []Record, hashDivNum int) ([][]Record, []DivBound) {
	return distribute(records, hashDivNum, func(r Record) []byte { return r.Key })
}

// DistributeMaps is DistributeKeys' twin for map-side records (§4.1
// distribute_maps): identical partitioning, kept as a distinct entry point
// because callers read it from the map-file side of a primitive rather than
// the key-file side, and the two sides are allowed independent hashDivNum.
func DistributeMaps(records []Record, hashDivNum int) ([][]Record, []DivBound) {
	return distribute(records, hashDivNum, func(r Record) []byte { return r.Key })
}

func distribute(records []Record, hashDivNum int, keyOf func(Record) []byte) ([][]Record, []DivBound) {
	if hashDivNum < 1 {
		hashDivNum = 1
	}
	shards := make([][]Record, hashDivNum)
	var bounds []DivBound
	for _, rec := range records {
		shard := HashDiv(keyOf(rec), hashDivNum)
		shards[shard] = append(shards[shard], rec)

		if n := len(bounds); n > 0 && bounds[n-1].Shard == shard {
			bounds[n-1].Count++
		} else {
			bounds = append(bounds, DivBound{Shard: shard, Count: 1})
		}
	}
	return shards, bounds
}
