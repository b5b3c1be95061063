package pipeline

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/pulsedex/internal/config"
)

func testStages() []config.StageNode {
	return []config.StageNode{
		{Name: "lexicon"},
		{Name: "hitlist", DependsOn: []string{"lexicon"}},
		{Name: "linkgraph", DependsOn: []string{"hitlist"}},
		{Name: "pulserank", DependsOn: []string{"linkgraph"}},
	}
}

func TestTopoSortOrdersDependenciesBeforeDependents(t *testing.T) {
	order, err := TopoSort(testStages())
	require.NoError(t, err)

	position := make(map[string]int, len(order))
	for i, s := range order {
		position[s.Name] = i
	}

	assert.Less(t, position["lexicon"], position["hitlist"])
	assert.Less(t, position["hitlist"], position["linkgraph"])
	assert.Less(t, position["linkgraph"], position["pulserank"])
}

func TestTopoSortDetectsCycle(t *testing.T) {
	_, err := TopoSort([]config.StageNode{
		{Name: "a", DependsOn: []string{"b"}},
		{Name: "b", DependsOn: []string{"a"}},
	})
	require.Error(t, err)
}

func TestDefaultDAGIsAcyclic(t *testing.T) {
	_, err := TopoSort(config.DefaultDAG())
	require.NoError(t, err)
}

func TestRunnerRunsStagesInDependencyOrder(t *testing.T) {
	cfg := &config.Config{
		Pipeline: config.Pipeline{MaxProcessNum: 4},
		Stages:   testStages(),
	}

	var mu sync.Mutex
	var ran []string
	runner := NewRunner()
	for _, name := range []string{"lexicon", "hitlist", "linkgraph", "pulserank"} {
		name := name
		runner.Register(name, func(ctx context.Context, cfg *config.Config) error {
			mu.Lock()
			ran = append(ran, name)
			mu.Unlock()
			return nil
		})
	}

	require.NoError(t, runner.Run(context.Background(), cfg))

	position := make(map[string]int, len(ran))
	for i, name := range ran {
		position[name] = i
	}
	assert.Less(t, position["lexicon"], position["hitlist"])
	assert.Less(t, position["hitlist"], position["linkgraph"])
	assert.Less(t, position["linkgraph"], position["pulserank"])
}

func TestRunnerPropagatesStageError(t *testing.T) {
	cfg := &config.Config{
		Pipeline: config.Pipeline{MaxProcessNum: 4},
		Stages:   testStages(),
	}

	runner := NewRunner()
	runner.Register("lexicon", func(ctx context.Context, cfg *config.Config) error { return nil })
	runner.Register("hitlist", func(ctx context.Context, cfg *config.Config) error {
		return fmt.Errorf("boom")
	})
	runner.Register("linkgraph", func(ctx context.Context, cfg *config.Config) error { return nil })
	runner.Register("pulserank", func(ctx context.Context, cfg *config.Config) error { return nil })

	err := runner.Run(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hitlist")
}

func TestRunnerReportsMissingStageImplementation(t *testing.T) {
	cfg := &config.Config{
		Pipeline: config.Pipeline{MaxProcessNum: 4},
		Stages:   []config.StageNode{{Name: "lexicon"}},
	}

	runner := NewRunner()
	err := runner.Run(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lexicon")
}

func TestRunnerEmitsStartAndFinishEvents(t *testing.T) {
	cfg := &config.Config{
		Pipeline: config.Pipeline{MaxProcessNum: 4},
		Stages:   []config.StageNode{{Name: "lexicon"}},
	}

	var mu sync.Mutex
	var events []Event
	runner := NewRunner()
	runner.Register("lexicon", func(ctx context.Context, cfg *config.Config) error { return nil })
	runner.OnEvent(func(e Event) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	})

	require.NoError(t, runner.Run(context.Background(), cfg))
	require.Len(t, events, 2)
	assert.True(t, events[0].Started)
	assert.False(t, events[1].Started)
	assert.NoError(t, events[1].Err)
}
