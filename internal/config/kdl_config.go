package config

import (
	"fmt"
	"os"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// loadKDLInto parses a KDL pipeline document and merges it over cfg's
// defaults. Expected shape:
//
//	pipeline {
//	    root_dir "/data/crawl"
//	    work_dir "/data/crawl/WorkDir"
//	    random_seed 42
//	    coordinator_port 9417
//	    heartbeat_timeout_ms 2000
//	    max_process_num 32
//	}
//	tunables {
//	    client_count 16
//	    pulse_rank_cycles 20
//	    max_clus_node_num 64
//	    ...
//	}
//	stage "lexicon" {
//	    depends_on
//	    output_dir "GlobalData/WordDictionary"
//	}
//	stage "hitlist" {
//	    depends_on "lexicon"
//	    output_dir "GlobalData/HitList"
//	}
func loadKDLInto(cfg *Config, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	doc, err := kdl.Parse(strings.NewReader(string(content)))
	if err != nil {
		return fmt.Errorf("parse KDL: %w", err)
	}

	var stages []StageNode
	sawStages := false

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "pipeline":
			for _, cn := range n.Children {
				applyPipelineField(cfg, cn)
			}
		case "tunables":
			for _, cn := range n.Children {
				applyTunableField(cfg, cn)
			}
		case "stage":
			sawStages = true
			name, _ := firstStringArg(n)
			if name == "" {
				continue
			}
			node := StageNode{Name: name}
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "depends_on":
					node.DependsOn = collectStringArgs(cn)
				case "input_dir", "input_dirs":
					node.InputDirs = collectStringArgs(cn)
				case "output_dir":
					if s, ok := firstStringArg(cn); ok {
						node.OutputDir = s
					}
				}
			}
			stages = append(stages, node)
		}
	}

	if sawStages {
		cfg.Stages = stages
	}
	return nil
}

func applyPipelineField(cfg *Config, n *document.Node) {
	switch nodeName(n) {
	case "root_dir":
		if s, ok := firstStringArg(n); ok {
			cfg.Pipeline.RootDir = s
		}
	case "work_dir":
		if s, ok := firstStringArg(n); ok {
			cfg.Pipeline.WorkDir = s
		}
	case "random_seed":
		if v, ok := firstIntArg(n); ok {
			cfg.Pipeline.RandomSeed = int64(v)
		}
	case "coordinator_port":
		if v, ok := firstIntArg(n); ok {
			cfg.Pipeline.CoordinatorPort = v
		}
	case "heartbeat_timeout_ms":
		if v, ok := firstIntArg(n); ok {
			cfg.Pipeline.HeartbeatTimeoutMs = v
		}
	case "max_process_num":
		if v, ok := firstIntArg(n); ok {
			cfg.Pipeline.MaxProcessNum = v
		}
	}
}

func applyTunableField(cfg *Config, n *document.Node) {
	t := &cfg.Tunables
	intFields := map[string]*int{
		"client_count":           &t.ClientCount,
		"log_div_count":          &t.LogDivCount,
		"hit_list_breadth":       &t.HitListBreadth,
		"pulse_rank_cycles":      &t.PulseRankCycles,
		"wave_pass_cycles":       &t.WavePassCycles,
		"wave_pass_inst":         &t.WavePassInst,
		"max_clus_node_num":      &t.MaxClusNodeNum,
		"max_child_count":        &t.MaxChildCount,
		"max_assoc_num":          &t.MaxAssocNum,
		"group_cycle_count":      &t.GroupCycleCount,
		"scan_window_size":       &t.ScanWindowSize,
		"final_keyword_count":    &t.FinalKeywordCount,
		"consonant_skeleton_len": &t.ConsonantSkeletonLen,
		"max_spat_num":           &t.MaxSpatNum,
		"radix_merge_window":     &t.RadixMergeWindow,
		"max_key_slices":         &t.MaxKeySlices,
		"max_retry_attempts":     &t.MaxRetryAttempts,
	}
	if target, ok := intFields[nodeName(n)]; ok {
		if v, ok := firstIntArg(n); ok {
			*target = v
		}
	}
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
