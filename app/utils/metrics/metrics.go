// Package metrics exposes Prometheus counters for order traffic and for
// mirror writes that were dropped.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	OrdersCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "heartscript",
			Subsystem: "orders",
			Name:      "created_total",
			Help:      "Orders persisted, by checkout path.",
		},
		[]string{"path"},
	)

	OrderStatusUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "heartscript",
			Subsystem: "orders",
			Name:      "status_updates_total",
			Help:      "Order status changes, by resulting status.",
		},
		[]string{"status"},
	)

	MirrorWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "heartscript",
			Subsystem: "mirror",
			Name:      "writes_total",
			Help:      "Best-effort mirror writes, by operation and outcome.",
		},
		[]string{"op", "outcome"},
	)

	registry = prometheus.NewRegistry()
)

func init() {
	registry.MustRegister(
		OrdersCreated,
		OrderStatusUpdates,
		MirrorWrites,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
