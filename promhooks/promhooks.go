// Package promhooks exports cache events as Prometheus counters.
package promhooks

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	cacheman "github.com/appleboy/cacheman-promise"
)

type Hooks struct {
	lookups     *prometheus.CounterVec
	loaderCalls *prometheus.CounterVec
	selfHeals   *prometheus.CounterVec
	rejected    prometheus.Counter
	bgFailures  *prometheus.CounterVec
}

var _ cacheman.Hooks = (*Hooks)(nil)

// New registers the counters with reg. A nil reg uses prometheus.DefaultRegisterer.
// Registering twice with the same registry panics, as with promauto.
func New(reg prometheus.Registerer) *Hooks {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Hooks{
		lookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cacheman_lookups_total",
			Help: "Total number of cache lookups.",
		}, []string{"namespace", "status" /* hit | miss */}),
		loaderCalls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cacheman_loader_calls_total",
			Help: "Total number of Wrap loader invocations after a miss.",
		}, []string{"namespace"}),
		selfHeals: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cacheman_self_heals_total",
			Help: "Total number of unreadable entries deleted on read.",
		}, []string{"reason" /* corrupt | value_decode */}),
		rejected: f.NewCounter(prometheus.CounterOpts{
			Name: "cacheman_set_rejected_total",
			Help: "Total number of writes the engine declined.",
		}),
		bgFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cacheman_background_write_failures_total",
			Help: "Total number of failed background writes.",
		}, []string{"op" /* set | del */}),
	}
}

func (h *Hooks) Lookup(ns string, hit bool) {
	status := "miss"
	if hit {
		status = "hit"
	}
	h.lookups.WithLabelValues(ns, status).Inc()
}

func (h *Hooks) LoaderCalled(ns string) { h.loaderCalls.WithLabelValues(ns).Inc() }

func (h *Hooks) SelfHeal(_, reason string) { h.selfHeals.WithLabelValues(reason).Inc() }

func (h *Hooks) EngineSetRejected(string) { h.rejected.Inc() }

func (h *Hooks) BackgroundWriteFailed(op, _ string, _ error) {
	h.bgFailures.WithLabelValues(op).Inc()
}
