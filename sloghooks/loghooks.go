// Package sloghooks reports cache events through log/slog.
package sloghooks

import (
	"log/slog"
	"sync/atomic"

	cacheman "github.com/appleboy/cacheman-promise"
	"github.com/appleboy/cacheman-promise/internal/util"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	SelfHealEvery uint64
	RejectEvery   uint64
	// LogLookups logs every hit/miss at debug. Off by default; use promhooks
	// for hit ratios.
	LogLookups bool
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	selfHealCtr atomic.Uint64
	rejectCtr   atomic.Uint64
}

var _ cacheman.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	return util.Redact(k)
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) Lookup(ns string, hit bool) {
	if h.l == nil || !h.opts.LogLookups {
		return
	}
	h.l.Debug("cacheman.lookup",
		"ns", ns,
		"hit", hit)
}

func (h *Hooks) LoaderCalled(ns string) {
	if h.l == nil {
		return
	}
	h.l.Debug("cacheman.loader_called", "ns", ns)
}

func (h *Hooks) SelfHeal(storageKey, reason string) {
	if h.l == nil || !sample(h.opts.SelfHealEvery, &h.selfHealCtr) {
		return
	}
	h.l.Debug("cacheman.self_heal",
		"key", h.redact(storageKey),
		"reason", reason)
}

func (h *Hooks) EngineSetRejected(storageKey string) {
	if h.l == nil || !sample(h.opts.RejectEvery, &h.rejectCtr) {
		return
	}
	h.l.Warn("cacheman.engine_set_rejected",
		"key", h.redact(storageKey))
}

func (h *Hooks) BackgroundWriteFailed(op, storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("cacheman.background_write_failed",
		"op", op,
		"key", h.redact(storageKey),
		"err", err)
}
