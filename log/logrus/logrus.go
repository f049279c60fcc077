// Package logrus adapts a *logrus.Entry to cacheman.Logger.
package logrus

import (
	"github.com/sirupsen/logrus"

	cacheman "github.com/appleboy/cacheman-promise"
)

var _ cacheman.Logger = Logger{}

type Logger struct{ E *logrus.Entry }

// New tags every entry with component=cacheman.
func New(l *logrus.Logger) Logger {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return Logger{E: l.WithField("component", "cacheman")}
}

func (l Logger) Debug(msg string, f cacheman.Fields) { l.with(f).Debug(msg) }
func (l Logger) Info(msg string, f cacheman.Fields)  { l.with(f).Info(msg) }
func (l Logger) Warn(msg string, f cacheman.Fields)  { l.with(f).Warn(msg) }
func (l Logger) Error(msg string, f cacheman.Fields) { l.with(f).Error(msg) }

// with moves an "err" field to logrus.ErrorKey so formatters render it as an error.
func (l Logger) with(f cacheman.Fields) *logrus.Entry {
	if len(f) == 0 {
		return l.E
	}
	lf := make(logrus.Fields, len(f))
	for k, v := range f {
		if err, ok := v.(error); ok && k == "err" {
			lf[logrus.ErrorKey] = err
			continue
		}
		lf[k] = v
	}
	return l.E.WithFields(lf)
}
