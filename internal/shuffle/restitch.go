package shuffle

// OrderMappedSets replays a DivBound list recorded by DistributeKeys to
// re-stitch per-shard outputs back into the caller's original file order
// (§4.1 order_mapped_sets). shards must still be in the per-shard order
// DistributeKeys produced them in — any in-shard reordering (a sort, a
// group-by) breaks the invariant, which is why this primitive is applied
// directly after a distribute_*/apply_maps_to_keys pass rather than after a
// sort.
func OrderMappedSets(shards [][]Record, bounds []DivBound) []Record {
	cursor := make([]int, len(shards))
	out := make([]Record, 0, totalBoundCount(bounds))
	for _, b := range bounds {
		start := cursor[b.Shard]
		end := start + b.Count
		out = append(out, shards[b.Shard][start:end]...)
		cursor[b.Shard] = end
	}
	return out
}

// OrderMappedOccurrences is OrderMappedSets' counterpart for occurrence/
// weight streams (§4.1 order_mapped_occurrences) — mechanically identical,
// kept as a distinct name because it's invoked after
// find_duplicate_key_occurrence/find_duplicate_key_weight rather than after
// apply_maps_to_keys.
func OrderMappedOccurrences(shards [][]Record, bounds []DivBound) []Record {
	return OrderMappedSets(shards, bounds)
}

func totalBoundCount(bounds []DivBound) int {
	n := 0
	for _, b := range bounds {
		n += b.Count
	}
	return n
}
