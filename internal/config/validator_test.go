package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAndSetDefaultsFillsTunables(t *testing.T) {
	cfg := &Config{
		Pipeline: Pipeline{RootDir: "/data", MaxProcessNum: 4, HeartbeatTimeoutMs: 2000},
		Stages:   DefaultDAG(),
	}
	require.NoError(t, NewValidator().ValidateAndSetDefaults(cfg))
	assert.Equal(t, 20, cfg.Tunables.PulseRankCycles)
	assert.Equal(t, 17, cfg.Tunables.FinalKeywordCount)
}

func TestValidateDAGRejectsUnknownDependency(t *testing.T) {
	cfg := &Config{
		Pipeline: Pipeline{RootDir: "/data", MaxProcessNum: 4, HeartbeatTimeoutMs: 2000},
		Stages: []StageNode{
			{Name: "hitlist", DependsOn: []string{"lexicon"}},
		},
	}
	err := NewValidator().ValidateAndSetDefaults(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undeclared stage")
}

func TestValidateDAGRejectsCycle(t *testing.T) {
	cfg := &Config{
		Pipeline: Pipeline{RootDir: "/data", MaxProcessNum: 4, HeartbeatTimeoutMs: 2000},
		Stages: []StageNode{
			{Name: "a", DependsOn: []string{"b"}},
			{Name: "b", DependsOn: []string{"a"}},
		},
	}
	err := NewValidator().ValidateAndSetDefaults(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestValidateDAGRejectsDuplicateName(t *testing.T) {
	cfg := &Config{
		Pipeline: Pipeline{RootDir: "/data", MaxProcessNum: 4, HeartbeatTimeoutMs: 2000},
		Stages: []StageNode{
			{Name: "a"},
			{Name: "a"},
		},
	}
	err := NewValidator().ValidateAndSetDefaults(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate stage")
}

func TestValidateRejectsEmptyRoot(t *testing.T) {
	cfg := &Config{Pipeline: Pipeline{MaxProcessNum: 4, HeartbeatTimeoutMs: 2000}}
	err := NewValidator().ValidateAndSetDefaults(cfg)
	require.Error(t, err)
}

func TestDefaultDAGIsValid(t *testing.T) {
	cfg := Default("/data")
	require.NoError(t, NewValidator().ValidateAndSetDefaults(cfg))
}
