package slog

import (
	"context"
	stdslog "log/slog"

	"github.com/unkn0wn-root/replaycache"
)

var _ replaycache.Logger = Logger{}

type Logger struct{ L *stdslog.Logger }

func (s Logger) Debug(msg string, f replaycache.Fields) { s.log(stdslog.LevelDebug, msg, f) }
func (s Logger) Info(msg string, f replaycache.Fields)  { s.log(stdslog.LevelInfo, msg, f) }
func (s Logger) Warn(msg string, f replaycache.Fields)  { s.log(stdslog.LevelWarn, msg, f) }
func (s Logger) Error(msg string, f replaycache.Fields) { s.log(stdslog.LevelError, msg, f) }

func (s Logger) With(f replaycache.Fields) replaycache.Logger {
	args := make([]any, 0, len(f))
	for _, a := range attrs(f) {
		args = append(args, a)
	}
	return Logger{L: s.l().With(args...)}
}

func (s Logger) l() *stdslog.Logger {
	if s.L == nil {
		return stdslog.Default()
	}
	return s.L
}

func (s Logger) log(level stdslog.Level, msg string, f replaycache.Fields) {
	s.l().LogAttrs(context.Background(), level, msg, attrs(f)...)
}

func attrs(f replaycache.Fields) []stdslog.Attr {
	if len(f) == 0 {
		return nil
	}
	out := make([]stdslog.Attr, 0, len(f))
	for k, v := range f {
		out = append(out, stdslog.Any(k, v))
	}
	return out
}
