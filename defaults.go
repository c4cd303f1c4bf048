package replaycache

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/ygrebnov/errorc"
)

const (
	defaultCapacity     = 1024
	defaultPollInterval = 50 * time.Millisecond
	defaultJoinTimeout  = 5 * time.Second
)

// coalesce returns def when v is the zero value of T - otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}

func defaultName() string {
	return "replay-" + uuid.NewString()[:8]
}

func validateOptions[R any](opts *Options[R]) error {
	switch {
	case opts.Source == nil:
		return errorc.With(ErrInvalidConfig, errorc.String("source", "is required"))
	case opts.Capacity < 0:
		return errorc.With(ErrInvalidConfig, errorc.String("capacity", "must be >= 0, got "+strconv.Itoa(opts.Capacity)))
	case opts.ConcatSize > 1 && opts.Combine == nil:
		return errorc.With(ErrInvalidConfig, errorc.String("combine", "is required when concat size > 1"))
	case opts.PollInterval < 0:
		return errorc.With(ErrInvalidConfig, errorc.String("poll_interval", "must be >= 0"))
	case opts.JoinTimeout < 0:
		return errorc.With(ErrInvalidConfig, errorc.String("join_timeout", "must be >= 0"))
	}
	return nil
}
