// Package metrics exposes Prometheus instruments for the bot.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Proton-105/storefront-bot/internal/state"
)

var (
	botUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_updates_total",
			Help: "Total number of bot updates handled labeled by kind and status",
		},
		[]string{"kind", "status"},
	)
	updateDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "update_duration_seconds",
			Help:    "Duration of update handling in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)
	stateTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "state_transitions_total",
			Help: "Total number of state transitions",
		},
		[]string{"from", "to"},
	)
	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors split by code and severity",
		},
		[]string{"code", "severity"},
	)
	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_sessions",
			Help: "Current number of stored conversation sessions",
		},
	)
	sessionsByState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sessions_by_state",
			Help: "Number of sessions per conversation state",
		},
		[]string{"state"},
	)
	priceChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "price_checks_total",
			Help: "Price change checks labeled by trigger and outcome",
		},
		[]string{"trigger", "outcome"},
	)
	priceChangesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "price_changes_detected_total",
			Help: "Number of item price changes detected",
		},
	)
	ordersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_total",
			Help: "Submitted orders labeled by status",
		},
		[]string{"status"},
	)
	jobsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobs_processed_total",
			Help: "Background tasks processed labeled by type and status",
		},
		[]string{"type", "status"},
	)
	jobDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "job_duration_seconds",
			Help:    "Duration of background task processing in seconds",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 15, 60, 120},
		},
		[]string{"type"},
	)
	circuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state per dependency: 0 closed, 1 open, 2 half-open",
		},
		[]string{"name"},
	)
	dispatchQueueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dispatch_queue_depth",
			Help: "Pending updates per dispatcher shard",
		},
		[]string{"shard"},
	)
)

func init() {
	state.RegisterTransitionRecorder(RecordStateTransition)
}

func orUnknown(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

// RecordUpdate increments update counters and records duration.
func RecordUpdate(kind, status string, duration time.Duration) {
	kind = orUnknown(kind)

	botUpdatesTotal.WithLabelValues(kind, orUnknown(status)).Inc()
	updateDurationSeconds.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordStateTransition tracks conversation transitions.
func RecordStateTransition(from, to string) {
	stateTransitionsTotal.WithLabelValues(orUnknown(from), orUnknown(to)).Inc()
}

// RecordError increments error counters with metadata.
func RecordError(code, severity string) {
	errorsTotal.WithLabelValues(orUnknown(code), orUnknown(severity)).Inc()
}

// RecordPriceCheck counts one detector run and the changes it found.
func RecordPriceCheck(trigger, outcome string, changes int) {
	priceChecksTotal.WithLabelValues(orUnknown(trigger), orUnknown(outcome)).Inc()
	if changes > 0 {
		priceChangesTotal.Add(float64(changes))
	}
}

// RecordOrder counts an order submission attempt.
func RecordOrder(status string) {
	ordersTotal.WithLabelValues(orUnknown(status)).Inc()
}

// RecordJob counts a processed background task.
func RecordJob(taskType, status string, duration time.Duration) {
	taskType = orUnknown(taskType)

	jobsProcessedTotal.WithLabelValues(taskType, orUnknown(status)).Inc()
	jobDurationSeconds.WithLabelValues(taskType).Observe(duration.Seconds())
}

// SetBreakerState reports the numeric state of a named circuit breaker.
func SetBreakerState(name string, state int) {
	circuitBreakerState.WithLabelValues(orUnknown(name)).Set(float64(state))
}

// SetQueueDepth reports pending updates for a dispatcher shard.
func SetQueueDepth(shard string, depth int) {
	dispatchQueueDepth.WithLabelValues(shard).Set(float64(depth))
}

// SessionLister exposes every stored session.
type SessionLister interface {
	All(ctx context.Context) ([]*state.Session, error)
}

// StateCollector periodically gathers session counts and emits gauge metrics.
type StateCollector struct {
	sessions SessionLister
	interval time.Duration
}

// NewStateCollector builds a metrics collector bound to the provided sessions.
func NewStateCollector(sessions SessionLister) *StateCollector {
	return &StateCollector{sessions: sessions, interval: 10 * time.Second}
}

// Run polls sessions every interval until ctx is cancelled.
func (c *StateCollector) Run(ctx context.Context) {
	if c == nil || c.sessions == nil {
		return
	}

	for {
		_ = c.collect(ctx)

		select {
		case <-ctx.Done():
			return
		case <-time.After(c.interval):
		}
	}
}

func (c *StateCollector) collect(ctx context.Context) error {
	sessions, err := c.sessions.All(ctx)
	if err != nil {
		return err
	}

	activeSessions.Set(float64(len(sessions)))

	counts := make(map[string]int, len(sessions))
	for _, session := range sessions {
		label := "unknown"
		if session != nil && session.State.Valid() {
			label = string(session.State)
		}
		counts[label]++
	}

	sessionsByState.Reset()

	for _, tracked := range state.States[1:] {
		label := string(tracked)
		sessionsByState.WithLabelValues(label).Set(float64(counts[label]))
		delete(counts, label)
	}

	for label, count := range counts {
		sessionsByState.WithLabelValues(label).Set(float64(count))
	}

	return nil
}
