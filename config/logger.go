package config

import (
	"fmt"
	"io"
	stdslog "log/slog"
	"strings"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	cacheman "github.com/appleboy/cacheman-promise"
	logruslog "github.com/appleboy/cacheman-promise/log/logrus"
	sloglog "github.com/appleboy/cacheman-promise/log/slog"
	zaplog "github.com/appleboy/cacheman-promise/log/zap"
)

// Build returns a cacheman.Logger writing to w and a sync func that flushes buffered
// output; call it before exit.
func (l LogConfig) Build(w io.Writer) (cacheman.Logger, func() error, error) {
	nop := func() error { return nil }
	switch strings.ToLower(l.Backend) {
	case "", "zap":
		lvl, err := zapcore.ParseLevel(l.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("cacheman: log level: %w", err)
		}
		encCfg := zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		var enc zapcore.Encoder
		if l.Format == "json" {
			enc = zapcore.NewJSONEncoder(encCfg)
		} else {
			enc = zapcore.NewConsoleEncoder(encCfg)
		}
		zl := zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), lvl))
		return zaplog.New(zl), zl.Sync, nil

	case "logrus":
		lvl, err := logrus.ParseLevel(l.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("cacheman: log level: %w", err)
		}
		ll := logrus.New()
		ll.SetOutput(w)
		ll.SetLevel(lvl)
		if l.Format == "json" {
			ll.SetFormatter(&logrus.JSONFormatter{})
		} else {
			ll.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
		}
		return logruslog.New(ll), nop, nil

	case "slog":
		var lvl stdslog.Level
		if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
			return nil, nil, fmt.Errorf("cacheman: log level: %w", err)
		}
		opts := &stdslog.HandlerOptions{Level: lvl}
		var h stdslog.Handler
		if l.Format == "json" {
			h = stdslog.NewJSONHandler(w, opts)
		} else {
			h = stdslog.NewTextHandler(w, opts)
		}
		return sloglog.New(stdslog.New(h)), nop, nil
	}
	return nil, nil, fmt.Errorf("cacheman: unknown log backend %q", l.Backend)
}
