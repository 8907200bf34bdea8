package redis

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	goredis "github.com/redis/go-redis/v9"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_requests_total",
			Help: "Redis commands issued by the session store labeled by method and result",
		},
		[]string{"method", "result"},
	)
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_request_duration_seconds",
			Help:    "Redis command latency in seconds",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		},
		[]string{"method"},
	)
)

// MetricsClient wraps Client to collect Prometheus metrics.
type MetricsClient struct {
	next *Client
}

// NewMetricsClient creates an instrumented Redis client.
func NewMetricsClient(next *Client) *MetricsClient {
	return &MetricsClient{next: next}
}

// result labels a call outcome. A missing key is a miss, not an error.
func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, goredis.Nil):
		return "miss"
	default:
		return "error"
	}
}

func timed[T any](method string, call func() (T, error)) (T, error) {
	start := time.Now()
	value, err := call()

	requestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	requestsTotal.WithLabelValues(method, result(err)).Inc()
	return value, err
}

func timedErr(method string, call func() error) error {
	_, err := timed(method, func() (struct{}, error) { return struct{}{}, call() })
	return err
}

func (m *MetricsClient) Get(ctx context.Context, key string) (string, error) {
	return timed("get", func() (string, error) { return m.next.Get(ctx, key) })
}

func (m *MetricsClient) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return timedErr("set", func() error { return m.next.Set(ctx, key, value, ttl) })
}

func (m *MetricsClient) Delete(ctx context.Context, key string) error {
	return timedErr("delete", func() error { return m.next.Delete(ctx, key) })
}

func (m *MetricsClient) ScanKeys(ctx context.Context, pattern string) ([]string, error) {
	return timed("scan", func() ([]string, error) { return m.next.ScanKeys(ctx, pattern) })
}

// HealthCheck pings the server.
func (m *MetricsClient) HealthCheck(ctx context.Context) error {
	return timedErr("ping", func() error { return m.next.HealthCheck(ctx) })
}

// Close closes underlying client.
func (m *MetricsClient) Close() error {
	return m.next.Close()
}
