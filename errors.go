package replaycache

import (
	"errors"
	"fmt"
	"time"
)

const Namespace = "replaycache"

var (
	// ErrStopped ends iteration: the cache was closed and nothing is left to hand out.
	ErrStopped = errors.New(Namespace + ": stopped")

	ErrFetch           = errors.New(Namespace + ": upstream fetch failed")
	ErrAugment         = errors.New(Namespace + ": augment failed")
	ErrCombine         = errors.New(Namespace + ": combine failed")
	ErrUnexpected      = errors.New(Namespace + ": unexpected producer failure")
	ErrShutdownTimeout = errors.New(Namespace + ": producer did not stop within the join budget")
	ErrPanicked        = errors.New(Namespace + ": panicked")
	ErrEmptyCombine    = errors.New(Namespace + ": combiner returned no records")
	ErrInvalidConfig   = errors.New(Namespace + ": invalid configuration")
)

// Stage names the step that produced a StageError.
type Stage string

const (
	StageFetch      Stage = "fetch"
	StageAugment    Stage = "augment"
	StageCombine    Stage = "combine"
	StageUnexpected Stage = "unexpected"
)

func (s Stage) sentinel() error {
	switch s {
	case StageFetch:
		return ErrFetch
	case StageAugment:
		return ErrAugment
	case StageCombine:
		return ErrCombine
	default:
		return ErrUnexpected
	}
}

// StageError carries the failing stage and its cause.
// errors.Is matches both the stage sentinel (ErrFetch, ErrAugment, ...) and Err.
type StageError struct {
	Cache string
	Stage Stage
	Err   error
}

func newStageError(cache string, stage Stage, err error) *StageError {
	return &StageError{Cache: cache, Stage: stage, Err: err}
}

func (e *StageError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %q: %s", Namespace, e.Cache, e.Stage)
	}
	return fmt.Sprintf("%s %q: %s: %v", Namespace, e.Cache, e.Stage, e.Err)
}

func (e *StageError) Unwrap() []error {
	errs := make([]error, 0, 2)
	errs = append(errs, e.Stage.sentinel())
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// ShutdownTimeoutError reports a Close whose producer join exceeded its budget.
// The producer goroutine may still be running; it will exit on its own once its
// upstream call returns, without touching the store.
type ShutdownTimeoutError struct {
	Cache  string
	Budget time.Duration
}

func (e *ShutdownTimeoutError) Error() string {
	return fmt.Sprintf("%s %q: producer still running after %s", Namespace, e.Cache, e.Budget)
}

func (e *ShutdownTimeoutError) Unwrap() error { return ErrShutdownTimeout }
