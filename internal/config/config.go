// Package config loads the pipeline's operating parameters: the root
// directory layout, the per-stage tunables named throughout spec §4, and the
// explicit stage DAG (Open Question 1 — the true stage order is config, not
// inferred from commented-out driver code).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Config is the fully resolved pipeline configuration: where data lives, how
// many shards/cycles each stage runs, and which stages depend on which.
type Config struct {
	Pipeline Pipeline
	Tunables Tunables
	Stages   []StageNode
}

// Pipeline describes the on-disk layout rooted at RootDir (§6 "File
// layout"), the scratch WorkDir used by shuffle/merge intermediates, and the
// coordinator's network parameters (§5, §6 "Coordinator control channel").
type Pipeline struct {
	RootDir string
	WorkDir string

	// RandomSeed is required (Open Question 2): the wave-pass back-buffer
	// Gaussian re-initialization is deterministic given this seed, never
	// wall-clock.
	RandomSeed int64

	CoordinatorPort   int
	HeartbeatTimeoutMs int
	MaxProcessNum     int
}

// Tunables holds the per-stage constants spec.md names as defaults.
type Tunables struct {
	ClientCount       int // number of parallel shards/workers per stage
	LogDivCount       int // tokenizer log division count (§4.2)
	HitListBreadth    int // word_id mod HitListBreadth sharding (§4.2)

	PulseRankCycles int // default 20 (§4.4)

	WavePassCycles int // default 6 (§4.5)
	WavePassInst   int // default 1 (§4.5)
	MaxClusNodeNum int // cluster size cap (§4.5)
	MaxChildCount  int // orphan-group size cap (§4.5)

	MaxAssocNum       int // association cutoff (§4.8)
	GroupCycleCount   int // grouped-term expansion cycles (§4.8)
	ScanWindowSize    int // grouped-term expansion window (§4.8)
	FinalKeywordCount int // default 17 (§4.8)
	ConsonantSkeletonLen int // default 6 (§4.8 global lexicon)

	MaxSpatNum int // default 255, lookup-index spatial boundary (§4.7)

	RadixMergeWindow int // default 64 runs per merge pass (§4.1)
	MaxKeySlices     int // default 40 key-file slices per worker (§4.1)

	MaxRetryAttempts int // bounded retry for Transient errors (§7)
}

// StageNode is one node of the explicit stage DAG.
type StageNode struct {
	Name       string
	DependsOn  []string
	InputDirs  []string
	OutputDir  string
}

// Default returns a configuration with every tunable set to the default
// named in spec.md, rooted at rootDir.
func Default(rootDir string) *Config {
	return &Config{
		Pipeline: Pipeline{
			RootDir:            rootDir,
			WorkDir:            filepath.Join(rootDir, "WorkDir"),
			RandomSeed:         1,
			CoordinatorPort:    9417,
			HeartbeatTimeoutMs: 2000, // 20 * 100ms, §5
			MaxProcessNum:      runtime.NumCPU(),
		},
		Tunables: Tunables{
			ClientCount:          16,
			LogDivCount:          16,
			HitListBreadth:       16,
			PulseRankCycles:      20,
			WavePassCycles:       6,
			WavePassInst:         1,
			MaxClusNodeNum:       64,
			MaxChildCount:        16,
			MaxAssocNum:          100000,
			GroupCycleCount:      4,
			ScanWindowSize:       8,
			FinalKeywordCount:    17,
			ConsonantSkeletonLen: 6,
			MaxSpatNum:           255,
			RadixMergeWindow:     64,
			MaxKeySlices:         40,
			MaxRetryAttempts:     5,
		},
		Stages: DefaultDAG(),
	}
}

// DefaultDAG is the leaves-first stage order from spec.md §2, expressed as
// an explicit dependency graph rather than inferred from code.
func DefaultDAG() []StageNode {
	return []StageNode{
		{Name: "lexicon", DependsOn: nil, InputDirs: []string{"GlobalData/LogFile"}, OutputDir: "GlobalData/WordDictionary"},
		{Name: "hitlist", DependsOn: []string{"lexicon"}, InputDirs: []string{"GlobalData/ProcessedLogFile"}, OutputDir: "GlobalData/HitList"},
		{Name: "linkgraph", DependsOn: []string{"hitlist"}, InputDirs: []string{"GlobalData/HitList"}, OutputDir: "GlobalData/PulseRank"},
		{Name: "pulserank", DependsOn: []string{"linkgraph"}, InputDirs: []string{"GlobalData/PulseRank"}, OutputDir: "GlobalData/PulseRank"},
		{Name: "cluster", DependsOn: []string{"pulserank"}, InputDirs: []string{"GlobalData/PulseRank"}, OutputDir: "GlobalData/ClusterHiearchy"},
		{Name: "abtree", DependsOn: []string{"cluster"}, InputDirs: []string{"GlobalData/ClusterHiearchy"}, OutputDir: "GlobalData/ABTrees"},
		{Name: "sortedhits", DependsOn: []string{"abtree", "hitlist"}, InputDirs: []string{"GlobalData/HitList", "GlobalData/ClusterHiearchy"}, OutputDir: "GlobalData/SortedHits"},
		{Name: "assoc", DependsOn: []string{"sortedhits"}, InputDirs: []string{"GlobalData/SortedHits"}, OutputDir: "GlobalData/Keywords"},
	}
}

// Load resolves a pipeline configuration for rootDir: an empty path yields
// Default; otherwise one loader is chosen by extension (".kdl" for a KDL
// document, ".toml" for a flat TOML tunables override, anything else parsed
// as KDL) and applied over Default. A failed load is returned as an error
// rather than falling back to another format.
func Load(path, rootDir string) (*Config, error) {
	cfg := Default(rootDir)

	if path == "" {
		return cfg, nil
	}

	switch ext := filepath.Ext(path); ext {
	case ".kdl":
		if err := loadKDLInto(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load KDL config from %s: %w", path, err)
		}
	case ".toml":
		if err := loadTOMLInto(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML tunables from %s: %w", path, err)
		}
	default:
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config path %s: %w", path, err)
		}
		if err := loadKDLInto(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	return cfg, nil
}

// StageByName finds a configured stage node, or (zero, false) if absent.
func (c *Config) StageByName(name string) (StageNode, bool) {
	for _, s := range c.Stages {
		if s.Name == name {
			return s, true
		}
	}
	return StageNode{}, false
}
