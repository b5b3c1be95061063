// Package pipeline schedules the stage DAG named in internal/config
// (lexicon -> hitlist -> linkgraph -> pulserank -> cluster -> abtree ->
// sortedhits -> assoc): resolving a run order from StageNode.DependsOn,
// fanning independent stages out concurrently under a worker-count bound,
// and reporting progress as each stage starts and finishes.
package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"

	"github.com/standardbeagle/pulsedex/internal/config"
)

// StageFunc runs one stage given the resolved configuration. Implementations
// live in each domain package (internal/lexicon.Run, internal/hitlist.Run,
// ...) and are registered into a Runner by name.
type StageFunc func(ctx context.Context, cfg *config.Config) error

// Event reports one stage transition to an optional observer (cmd/pulsedex's
// run command prints each one as a progress line).
type Event struct {
	Stage   string
	Started bool
	Err     error
}

// Runner executes a stage DAG to completion, respecting dependency order and
// a bounded worker count (Pipeline.MaxProcessNum, the same bound §5 applies
// to external worker processes — in-process stages share the budget too).
type Runner struct {
	stages   map[string]StageFunc
	onEvent  func(Event)
}

// NewRunner builds a Runner with no stages registered yet.
func NewRunner() *Runner {
	return &Runner{stages: make(map[string]StageFunc)}
}

// Register binds a stage name (must match a config.StageNode.Name) to its
// implementation.
func (r *Runner) Register(name string, fn StageFunc) {
	r.stages[name] = fn
}

// OnEvent sets a callback invoked on every stage start/finish.
func (r *Runner) OnEvent(fn func(Event)) {
	r.onEvent = fn
}

// Run executes every stage in cfg.Stages, in dependency order, running
// mutually-independent stages concurrently up to cfg.Pipeline.MaxProcessNum
// at a time. It returns the first error encountered; stages already running
// are allowed to finish, but no new stage is started once an error lands.
func (r *Runner) Run(ctx context.Context, cfg *config.Config) error {
	order, err := TopoSort(cfg.Stages)
	if err != nil {
		return err
	}

	maxWorkers := cfg.Pipeline.MaxProcessNum
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	sem := semaphore.NewWeighted(int64(maxWorkers))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(map[string]chan struct{}, len(order))
	for _, s := range order {
		done[s.Name] = make(chan struct{})
	}

	errCh := make(chan error, len(order))
	for _, s := range order {
		s := s
		go func() {
			if err := r.runOne(ctx, cfg, s, done, sem); err != nil {
				errCh <- err
				cancel()
				return
			}
			errCh <- nil
		}()
	}

	var firstErr error
	for range order {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Runner) runOne(ctx context.Context, cfg *config.Config, s config.StageNode, done map[string]chan struct{}, sem *semaphore.Weighted) error {
	for _, dep := range s.DependsOn {
		select {
		case <-done[dep]:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	defer close(done[s.Name])

	fn, ok := r.stages[s.Name]
	if !ok {
		return fmt.Errorf("pipeline: no implementation registered for stage %q", s.Name)
	}

	if err := sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("pipeline: stage %q: %w", s.Name, err)
	}
	defer sem.Release(1)

	r.emit(Event{Stage: s.Name, Started: true})
	err := fn(ctx, cfg)
	r.emit(Event{Stage: s.Name, Err: err})
	if err != nil {
		return fmt.Errorf("pipeline: stage %q failed: %w", s.Name, err)
	}
	return nil
}

func (r *Runner) emit(e Event) {
	if r.onEvent != nil {
		r.onEvent(e)
	}
}
