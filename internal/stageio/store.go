// Package stageio persists the intermediate, stage-to-stage artifacts that
// flow along the DAG internal/pipeline schedules (word postings, raw
// edges, pulse maps, label states, ...). It is deliberately not the
// spec's bespoke per-record binary wire format: those formats (abtree's
// packed pre-order tree, sortedhits' fixed-width HitItem encoding) are
// built where they matter — the durable, randomly-seekable artifacts a
// query-time reader touches. Everything that only ever travels from one
// in-process stage to the next is encoding/gob: the teacher's own
// driver-facing caches (internal/cache) and debug dumps reach for gob the
// same way, and a bespoke codec here would buy nothing since nothing
// outside this pipeline ever reads these files.
package stageio

import (
	"bufio"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// WriteShard gob-encodes v into dir/<shard>.gob, creating dir if needed.
func WriteShard(dir string, shard int, v any) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("stageio: mkdir %s: %w", dir, err)
	}
	path := filepath.Join(dir, strconv.Itoa(shard)+".gob")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("stageio: create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := gob.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("stageio: encode %s: %w", path, err)
	}
	return w.Flush()
}

// ReadShard gob-decodes dir/<shard>.gob into v.
func ReadShard(dir string, shard int, v any) error {
	path := filepath.Join(dir, strconv.Itoa(shard)+".gob")
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("stageio: open %s: %w", path, err)
	}
	defer f.Close()
	if err := gob.NewDecoder(bufio.NewReader(f)).Decode(v); err != nil {
		return fmt.Errorf("stageio: decode %s: %w", path, err)
	}
	return nil
}

// Shards lists the shard indices present under dir, ascending.
func Shards(dir string) ([]int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("stageio: readdir %s: %w", dir, err)
	}

	var shards []int
	for _, e := range entries {
		name := e.Name()
		if !strings.HasSuffix(name, ".gob") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(name, ".gob"))
		if err != nil {
			continue
		}
		shards = append(shards, n)
	}
	sort.Ints(shards)
	return shards, nil
}

// WriteNamed gob-encodes v into dir/name.gob, for single-artifact stage
// outputs that aren't sharded (e.g. a stage-wide pulse-score table).
func WriteNamed(dir, name string, v any) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("stageio: mkdir %s: %w", dir, err)
	}
	path := filepath.Join(dir, name+".gob")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("stageio: create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := gob.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("stageio: encode %s: %w", path, err)
	}
	return w.Flush()
}

// ReadNamed gob-decodes dir/name.gob into v.
func ReadNamed(dir, name string, v any) error {
	path := filepath.Join(dir, name+".gob")
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("stageio: open %s: %w", path, err)
	}
	defer f.Close()
	if err := gob.NewDecoder(bufio.NewReader(f)).Decode(v); err != nil {
		return fmt.Errorf("stageio: decode %s: %w", path, err)
	}
	return nil
}
