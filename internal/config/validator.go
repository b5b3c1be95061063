package config

import (
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	pdxerrors "github.com/standardbeagle/pulsedex/internal/errors"
)

// Validator checks a loaded Config for structural and value errors before
// the pipeline starts: an empty root_dir, a non-positive max_process_num or
// heartbeat timeout, empty/duplicate/unknown stage names, and dependency
// cycles. Tunables are not range-checked; zero-valued ones are filled with
// their defaults. Operator config mistakes are reported once, up front,
// rather than failing a worker deep into a run.
type Validator struct{}

func NewValidator() *Validator { return &Validator{} }

// stageSchema describes the shape an individual stage node's name must
// take once lowered to a JSON document, used as a cheap fail-fast guard
// against empty/operator-typo'd stage names before the DAG walk.
var stageSchema = &jsonschema.Schema{
	Type:     "object",
	Required: []string{"name"},
	Properties: map[string]*jsonschema.Schema{
		"name": {Type: "string", MinLength: intPtr(1)},
	},
}

func intPtr(v int) *int { return &v }

func init() {
	if _, err := stageSchema.Resolve(nil); err != nil {
		panic(fmt.Sprintf("config: invalid embedded stage schema: %v", err))
	}
}

// ValidateAndSetDefaults validates cfg and fills in any zero-valued
// tunables with their spec.md defaults.
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if err := v.validatePipeline(&cfg.Pipeline); err != nil {
		return pdxerrors.NewMismatch("config", "pipeline", "valid pipeline block", err.Error())
	}
	if err := v.validateDAG(cfg.Stages); err != nil {
		return pdxerrors.NewMismatch("config", "stage dag", "acyclic, fully declared", err.Error())
	}
	v.setDefaults(&cfg.Tunables)
	return nil
}

func (v *Validator) validatePipeline(p *Pipeline) error {
	if p.RootDir == "" {
		return fmt.Errorf("pipeline.root_dir must not be empty")
	}
	if p.MaxProcessNum <= 0 {
		return fmt.Errorf("pipeline.max_process_num must be positive, got %d", p.MaxProcessNum)
	}
	if p.HeartbeatTimeoutMs <= 0 {
		return fmt.Errorf("pipeline.heartbeat_timeout_ms must be positive, got %d", p.HeartbeatTimeoutMs)
	}
	return nil
}

// validateDAG checks every stage name is non-empty and unique, every
// dependency names a declared stage, and the dependency graph has no cycle
// (Kahn's algorithm — a stage with no remaining satisfiable predecessor
// each round, repeated until every stage is scheduled or none can be).
func (v *Validator) validateDAG(stages []StageNode) error {
	resolved, err := stageSchema.Resolve(nil)
	if err != nil {
		return fmt.Errorf("resolve stage schema: %w", err)
	}

	seen := make(map[string]bool, len(stages))
	for _, s := range stages {
		if err := resolved.Validate(map[string]any{"name": s.Name}); err != nil {
			return fmt.Errorf("stage %q: %w", s.Name, err)
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate stage name %q", s.Name)
		}
		seen[s.Name] = true
	}
	for _, s := range stages {
		for _, dep := range s.DependsOn {
			if !seen[dep] {
				return fmt.Errorf("stage %q depends on undeclared stage %q", s.Name, dep)
			}
		}
	}

	remaining := make(map[string]StageNode, len(stages))
	for _, s := range stages {
		remaining[s.Name] = s
	}
	done := make(map[string]bool, len(stages))
	for len(remaining) > 0 {
		progressed := false
		for name, s := range remaining {
			ready := true
			for _, dep := range s.DependsOn {
				if !done[dep] {
					ready = false
					break
				}
			}
			if ready {
				done[name] = true
				delete(remaining, name)
				progressed = true
			}
		}
		if !progressed {
			return fmt.Errorf("dependency cycle detected among remaining stages: %v", remainingNames(remaining))
		}
	}
	return nil
}

func remainingNames(m map[string]StageNode) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	return names
}

func (v *Validator) setDefaults(t *Tunables) {
	def := Default("").Tunables
	setIfZero(&t.ClientCount, def.ClientCount)
	setIfZero(&t.LogDivCount, def.LogDivCount)
	setIfZero(&t.HitListBreadth, def.HitListBreadth)
	setIfZero(&t.PulseRankCycles, def.PulseRankCycles)
	setIfZero(&t.WavePassCycles, def.WavePassCycles)
	setIfZero(&t.WavePassInst, def.WavePassInst)
	setIfZero(&t.MaxClusNodeNum, def.MaxClusNodeNum)
	setIfZero(&t.MaxChildCount, def.MaxChildCount)
	setIfZero(&t.MaxAssocNum, def.MaxAssocNum)
	setIfZero(&t.GroupCycleCount, def.GroupCycleCount)
	setIfZero(&t.ScanWindowSize, def.ScanWindowSize)
	setIfZero(&t.FinalKeywordCount, def.FinalKeywordCount)
	setIfZero(&t.ConsonantSkeletonLen, def.ConsonantSkeletonLen)
	setIfZero(&t.MaxSpatNum, def.MaxSpatNum)
	setIfZero(&t.RadixMergeWindow, def.RadixMergeWindow)
	setIfZero(&t.MaxKeySlices, def.MaxKeySlices)
	setIfZero(&t.MaxRetryAttempts, def.MaxRetryAttempts)
}

func setIfZero(target *int, def int) {
	if *target == 0 {
		*target = def
	}
}

// ValidateConfig is a convenience wrapper for callers that don't need to
// hold onto a Validator.
func ValidateConfig(cfg *Config) error {
	return NewValidator().ValidateAndSetDefaults(cfg)
}
