package service

import (
	"horsefax/internal/core/domain/message"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// UsageTracker counts what flows through the bot. A nil tracker is valid and counts nothing.
type UsageTracker struct {
	registry *prometheus.Registry

	updates  prometheus.Counter
	messages *prometheus.CounterVec
	commands *prometheus.CounterVec
	failures *prometheus.CounterVec
}

func NewUsageTracker() *UsageTracker {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	factory := promauto.With(reg)

	return &UsageTracker{
		registry: reg,
		updates: factory.NewCounter(prometheus.CounterOpts{
			Name: "horsefax_updates_total",
			Help: "Number of updates received from the remote service.",
		}),
		messages: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "horsefax_messages_total",
			Help: "Number of decoded messages by variant.",
		}, []string{"kind"}),
		commands: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "horsefax_commands_total",
			Help: "Number of routed commands by name.",
		}, []string{"command"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "horsefax_handler_failures_total",
			Help: "Number of failed event handlers by topic.",
		}, []string{"topic"}),
	}
}

func (t *UsageTracker) TrackUpdate() {
	if t == nil {
		return
	}
	t.updates.Inc()
}

func (t *UsageTracker) TrackMessage(kind message.Kind) {
	if t == nil {
		return
	}
	t.messages.WithLabelValues(string(kind)).Inc()
}

func (t *UsageTracker) TrackCommand(name string) {
	if t == nil {
		return
	}
	t.commands.WithLabelValues(name).Inc()
}

// TrackFailure matches event.FailureFunc.
func (t *UsageTracker) TrackFailure(topic string, _ error) {
	if t == nil {
		return
	}
	t.failures.WithLabelValues(topic).Inc()
}

// Handler serves the tracker's metrics in the prometheus exposition format.
func (t *UsageTracker) Handler() http.Handler {
	return promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{})
}
