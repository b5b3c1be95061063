package shuffle

// BuildMapTable loads one map-shard into an in-memory lookup table keyed by
// its records' Key, the "load the corresponding map-shard into an
// in-memory table" step of §4.1 apply_maps_to_keys.
func BuildMapTable(mapShard []Record) map[string]Record {
	table := make(map[string]Record, len(mapShard))
	for _, r := range mapShard {
		table[string(r.Key)] = r
	}
	return table
}

// ApplyMapsToKeys joins each key-shard record against a pre-built map table
// in input order, writing (key, map_value) when the key is present and
// (key, nil) — an empty value, the "1-byte length-0 marker" from spec §4.1 —
// when it is not. An unjoined key (UnjoinedKey in §7's error taxonomy) is
// explicitly not an error; it's simply an empty-value record.
func ApplyMapsToKeys(keys []Record, table map[string]Record) []Record {
	out := make([]Record, len(keys))
	for i, k := range keys {
		if mapped, ok := table[string(k.Key)]; ok {
			out[i] = Record{Key: k.Key, Value: mapped.Value}
		} else {
			out[i] = Record{Key: k.Key, Value: nil}
		}
	}
	return out
}

// IsUnjoined reports whether an ApplyMapsToKeys result represents an
// unjoined key.
func IsUnjoined(r Record) bool {
	return len(r.Value) == 0
}
