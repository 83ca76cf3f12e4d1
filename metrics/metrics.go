// Package metrics exposes Prometheus collectors for the notification path.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	NotificationsPersisted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vastconnect",
		Name:      "notifications_persisted_total",
		Help:      "Notifications written to the store, by type.",
	}, []string{"type"})

	NotificationsSuppressed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vastconnect",
		Name:      "notifications_suppressed_total",
		Help:      "Notifications skipped because actor and recipient are the same user.",
	}, []string{"type"})

	NotificationsDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vastconnect",
		Name:      "notifications_delivered_total",
		Help:      "Real-time pushes accepted by at least one subscriber channel.",
	}, []string{"type"})

	NotificationsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vastconnect",
		Name:      "notifications_dropped_total",
		Help:      "Real-time pushes that reached no channel.",
	}, []string{"type", "reason"})

	NotificationsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vastconnect",
		Name:      "notifications_failed_total",
		Help:      "Fan-out jobs that failed, by stage.",
	}, []string{"stage"})

	DispatchQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "vastconnect",
		Name:      "notification_dispatch_queue_depth",
		Help:      "Fan-out jobs waiting for a worker.",
	})

	RealtimeChannels = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "vastconnect",
		Name:      "realtime_channels",
		Help:      "Open subscriber channels.",
	})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
