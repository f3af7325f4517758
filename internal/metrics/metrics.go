// Package metrics exposes Prometheus counters for focus sessions, rewards,
// purchases and snapshot persistence. Counters are fed from the event
// stream; HTTP latency comes from a router middleware.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/focus-api/internal/events"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "focus"

// Metrics holds the collectors registered on one registry.
type Metrics struct {
	registry *prometheus.Registry

	sessions        *prometheus.CounterVec
	neuronsAwarded  prometheus.Counter
	combos          prometheus.Counter
	multipliersUsed prometheus.Counter
	reviews         *prometheus.CounterVec
	purchases       *prometheus.CounterVec
	snapshots       *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// New creates the collectors on a fresh registry, including the Go runtime
// and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Focus sessions by outcome.",
		}, []string{"outcome"}),
		neuronsAwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "neurons_awarded_total",
			Help:      "Neurons granted by completed sessions.",
		}),
		combos: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "combo_rewards_total",
			Help:      "Completed sessions rewarded at the combo rate.",
		}),
		multipliersUsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "multipliers_consumed_total",
			Help:      "Completed sessions that consumed the reward multiplier.",
		}),
		reviews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reviews_scheduled_total",
			Help:      "Reviews scheduled by mastery rating.",
		}, []string{"mastery"}),
		purchases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "purchases_total",
			Help:      "Shop purchases by item.",
		}, []string{"item"}),
		snapshots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_saves_total",
			Help:      "Snapshot saves by target and result.",
		}, []string{"target", "result"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.sessions, m.neuronsAwarded, m.combos, m.multipliersUsed,
		m.reviews, m.purchases, m.snapshots, m.httpDuration,
	)
	return m
}

var _ events.EventHandler = (*Metrics)(nil)

// HandleEvent implements events.EventHandler.
func (m *Metrics) HandleEvent(_ context.Context, event *events.Event) error {
	switch event.Type {
	case events.TypeSessionStarted:
		m.sessions.WithLabelValues("started").Inc()
	case events.TypeSessionCancelled:
		m.sessions.WithLabelValues("cancelled").Inc()
	case events.TypeSessionCompleted:
		var p events.SessionPayload
		if err := event.UnmarshalPayload(&p); err != nil {
			return err
		}
		m.sessions.WithLabelValues("completed").Inc()
		m.neuronsAwarded.Add(float64(p.Reward))
		if p.ComboActive {
			m.combos.Inc()
		}
		if p.MultiplierUsed {
			m.multipliersUsed.Inc()
		}
	case events.TypeReviewScheduled:
		var p events.ReviewPayload
		if err := event.UnmarshalPayload(&p); err != nil {
			return err
		}
		m.reviews.WithLabelValues(strconv.Itoa(p.Mastery)).Inc()
	case events.TypePurchase:
		var p events.PurchasePayload
		if err := event.UnmarshalPayload(&p); err != nil {
			return err
		}
		m.purchases.WithLabelValues(p.ItemID).Inc()
	case events.TypeSnapshotSaved, events.TypeSnapshotFailed:
		var p events.SnapshotPayload
		if err := event.UnmarshalPayload(&p); err != nil {
			return err
		}
		result := "ok"
		if event.Type == events.TypeSnapshotFailed {
			result = "error"
		}
		m.snapshots.WithLabelValues(p.Target, result).Inc()
	}
	return nil
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request latency labelled with the matched chi route
// pattern, so path parameters do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpDuration.WithLabelValues(r.Method, route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}
