// Package errors defines the five error kinds named in §7 of the pipeline
// design: Corrupted and Mismatch are always fatal, Transient is retried with
// backoff before becoming fatal, OverCapacity is design intent rather than a
// fault, and WorkerTimeout is handled by the coordinator.
package errors

import (
	"fmt"
	"time"
)

// Kind classifies an error for the coordinator and for stderr diagnostics.
type Kind string

const (
	KindCorrupted    Kind = "corrupted"
	KindMismatch     Kind = "mismatch"
	KindTransient    Kind = "transient"
	KindOverCapacity Kind = "over_capacity"
	KindWorkerTimeout Kind = "worker_timeout"
)

// CorruptedError reports a block whose declared uncompressed length
// disagrees with the decoded length, an unknown data_handler_name, or a
// malformed record. Always fatal.
type CorruptedError struct {
	Stage      string
	Shard      int
	File       string
	Reason     string
	Underlying error
	Timestamp  time.Time
}

func NewCorrupted(stage string, shard int, file, reason string, err error) *CorruptedError {
	return &CorruptedError{Stage: stage, Shard: shard, File: file, Reason: reason, Underlying: err, Timestamp: time.Now()}
}

func (e *CorruptedError) Error() string {
	return fmt.Sprintf("corrupted: stage=%s shard=%d file=%s: %s: %v", e.Stage, e.Shard, e.File, e.Reason, e.Underlying)
}

func (e *CorruptedError) Unwrap() error { return e.Underlying }

// MismatchError reports a cross-stream invariant violation, such as a
// pulse-map node that does not match the expected doc id, or a log id not
// present in word_log[d]. Always fatal and indicates an upstream bug.
type MismatchError struct {
	Stage     string
	Invariant string
	Want, Got string
	Timestamp time.Time
}

func NewMismatch(stage, invariant, want, got string) *MismatchError {
	return &MismatchError{Stage: stage, Invariant: invariant, Want: want, Got: got, Timestamp: time.Now()}
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("mismatch: stage=%s invariant=%s want=%s got=%s", e.Stage, e.Invariant, e.Want, e.Got)
}

// TransientError reports a file not yet present or a connection refused.
// Retried with backoff up to a bounded attempt count; becomes fatal beyond
// that bound (Exhausted is true once retries are spent).
type TransientError struct {
	Stage      string
	Operation  string
	Attempt    int
	MaxAttempt int
	Underlying error
	Timestamp  time.Time
}

func NewTransient(stage, op string, attempt, maxAttempt int, err error) *TransientError {
	return &TransientError{Stage: stage, Operation: op, Attempt: attempt, MaxAttempt: maxAttempt, Underlying: err, Timestamp: time.Now()}
}

func (e *TransientError) Exhausted() bool { return e.Attempt >= e.MaxAttempt }

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient: stage=%s op=%s attempt=%d/%d: %v", e.Stage, e.Operation, e.Attempt, e.MaxAttempt, e.Underlying)
}

func (e *TransientError) Unwrap() error { return e.Underlying }

// OverCapacityError is raised only for observability; callers treat it as
// design intent (a limited-priority-queue discarding its lowest-priority
// item), never as a failure to propagate.
type OverCapacityError struct {
	Component string
	Capacity  int
	Discarded string
}

func NewOverCapacity(component string, capacity int, discarded string) *OverCapacityError {
	return &OverCapacityError{Component: component, Capacity: capacity, Discarded: discarded}
}

func (e *OverCapacityError) Error() string {
	return fmt.Sprintf("over capacity: %s (cap=%d) discarded %s", e.Component, e.Capacity, e.Discarded)
}

// WorkerTimeoutError reports a worker that missed its heartbeat deadline.
// The coordinator decides restart vs fail per §5.
type WorkerTimeoutError struct {
	Stage       string
	Shard       int
	LastBeat    time.Time
	Timeout     time.Duration
	WillRestart bool
}

func NewWorkerTimeout(stage string, shard int, lastBeat time.Time, timeout time.Duration, willRestart bool) *WorkerTimeoutError {
	return &WorkerTimeoutError{Stage: stage, Shard: shard, LastBeat: lastBeat, Timeout: timeout, WillRestart: willRestart}
}

func (e *WorkerTimeoutError) Error() string {
	action := "failing job"
	if e.WillRestart {
		action = "restarting worker"
	}
	return fmt.Sprintf("worker timeout: stage=%s shard=%d last_beat=%s timeout=%s: %s",
		e.Stage, e.Shard, e.LastBeat.Format(time.RFC3339), e.Timeout, action)
}

// MultiError aggregates independent failures, e.g. several shard workers
// failing within the same stage invocation.
type MultiError struct {
	Errors []error
}

func NewMultiError(errs []error) *MultiError {
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	return &MultiError{Errors: filtered}
}

func (e *MultiError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

func (e *MultiError) Unwrap() []error { return e.Errors }
