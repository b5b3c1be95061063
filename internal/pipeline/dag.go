package pipeline

import (
	"fmt"
	"sort"

	"github.com/standardbeagle/pulsedex/internal/config"
)

// TopoSort returns stages in an order where every stage appears after all of
// its DependsOn entries (Kahn's algorithm, same walk internal/config's
// Validator uses to detect cycles — here we keep the order instead of
// discarding it). Ties are broken by name for a deterministic result.
func TopoSort(stages []config.StageNode) ([]config.StageNode, error) {
	remaining := make(map[string]config.StageNode, len(stages))
	for _, s := range stages {
		remaining[s.Name] = s
	}

	done := make(map[string]bool, len(stages))
	var order []config.StageNode

	for len(remaining) > 0 {
		var ready []string
		for name, s := range remaining {
			satisfied := true
			for _, dep := range s.DependsOn {
				if !done[dep] {
					satisfied = false
					break
				}
			}
			if satisfied {
				ready = append(ready, name)
			}
		}
		if len(ready) == 0 {
			return nil, fmt.Errorf("pipeline: dependency cycle among stages: %v", remainingNames(remaining))
		}

		sort.Strings(ready)
		for _, name := range ready {
			order = append(order, remaining[name])
			done[name] = true
			delete(remaining, name)
		}
	}
	return order, nil
}

func remainingNames(m map[string]config.StageNode) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
