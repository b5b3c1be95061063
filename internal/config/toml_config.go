package config

import (
	"os"

	"github.com/pelletier/go-toml/v2"
)

// tomlTunables is a flat tunables-only override format, handy for test
// fixtures and quick `status` runs that want to tweak a couple of
// constants without authoring a full stage DAG.
type tomlTunables struct {
	ClientCount       *int   `toml:"client_count"`
	LogDivCount       *int   `toml:"log_div_count"`
	HitListBreadth    *int   `toml:"hit_list_breadth"`
	PulseRankCycles   *int   `toml:"pulse_rank_cycles"`
	WavePassCycles    *int   `toml:"wave_pass_cycles"`
	WavePassInst      *int   `toml:"wave_pass_inst"`
	MaxClusNodeNum    *int   `toml:"max_clus_node_num"`
	MaxChildCount     *int   `toml:"max_child_count"`
	MaxAssocNum       *int   `toml:"max_assoc_num"`
	GroupCycleCount   *int   `toml:"group_cycle_count"`
	ScanWindowSize    *int   `toml:"scan_window_size"`
	FinalKeywordCount *int   `toml:"final_keyword_count"`
	MaxSpatNum        *int   `toml:"max_spat_num"`
	RandomSeed        *int64 `toml:"random_seed"`
}

func loadTOMLInto(cfg *Config, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var parsed tomlTunables
	if err := toml.Unmarshal(content, &parsed); err != nil {
		return err
	}

	t := &cfg.Tunables
	assignInt(&t.ClientCount, parsed.ClientCount)
	assignInt(&t.LogDivCount, parsed.LogDivCount)
	assignInt(&t.HitListBreadth, parsed.HitListBreadth)
	assignInt(&t.PulseRankCycles, parsed.PulseRankCycles)
	assignInt(&t.WavePassCycles, parsed.WavePassCycles)
	assignInt(&t.WavePassInst, parsed.WavePassInst)
	assignInt(&t.MaxClusNodeNum, parsed.MaxClusNodeNum)
	assignInt(&t.MaxChildCount, parsed.MaxChildCount)
	assignInt(&t.MaxAssocNum, parsed.MaxAssocNum)
	assignInt(&t.GroupCycleCount, parsed.GroupCycleCount)
	assignInt(&t.ScanWindowSize, parsed.ScanWindowSize)
	assignInt(&t.FinalKeywordCount, parsed.FinalKeywordCount)
	assignInt(&t.MaxSpatNum, parsed.MaxSpatNum)
	if parsed.RandomSeed != nil {
		cfg.Pipeline.RandomSeed = *parsed.RandomSeed
	}

	return nil
}

func assignInt(target *int, value *int) {
	if value != nil {
		*target = *value
	}
}
