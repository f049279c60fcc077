// Package zap adapts a *zap.Logger to cacheman.Logger.
package zap

import (
	"sort"

	"go.uber.org/zap"

	cacheman "github.com/appleboy/cacheman-promise"
)

var _ cacheman.Logger = Logger{}

type Logger struct{ L *zap.Logger }

// New names the logger "cacheman". A nil l yields a no-op logger.
func New(l *zap.Logger) Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return Logger{L: l.Named("cacheman")}
}

func (z Logger) Debug(msg string, f cacheman.Fields) { z.L.Debug(msg, zf(f)...) }
func (z Logger) Info(msg string, f cacheman.Fields)  { z.L.Info(msg, zf(f)...) }
func (z Logger) Warn(msg string, f cacheman.Fields)  { z.L.Warn(msg, zf(f)...) }
func (z Logger) Error(msg string, f cacheman.Fields) { z.L.Error(msg, zf(f)...) }

// zf emits fields in key order; error values keep zap's error encoding.
func zf(f cacheman.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]zap.Field, 0, len(f))
	for _, k := range keys {
		if err, ok := f[k].(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, f[k]))
	}
	return out
}
