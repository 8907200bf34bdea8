package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/Proton-105/storefront-bot/internal/health"
)

// ErrShuttingDown is reported by Readiness once Drain was called.
var ErrShuttingDown = errors.New("shutting down")

// HealthChecker exposes liveness and readiness probes.
type HealthChecker interface {
	Liveness(ctx context.Context) error
	Readiness(ctx context.Context) error
}

// Probes implements HealthChecker on top of the component checker.
type Probes struct {
	log      *slog.Logger
	checker  *health.Checker
	draining atomic.Bool
}

// NewProbes creates a new Probes instance. A nil checker makes every
// component healthy.
func NewProbes(checker *health.Checker, log *slog.Logger) *Probes {
	if log == nil {
		log = slog.Default()
	}
	return &Probes{log: log, checker: checker}
}

// Liveness reports success while the process is serving.
func (p *Probes) Liveness(ctx context.Context) error {
	p.log.DebugContext(ctx, "liveness probe called")
	return nil
}

// Readiness fails while draining or when any component check fails.
func (p *Probes) Readiness(ctx context.Context) error {
	if p.draining.Load() {
		return ErrShuttingDown
	}
	if p.checker == nil {
		return nil
	}

	report := p.checker.Check(ctx)
	if report.Healthy {
		return nil
	}

	failed := make([]string, 0, len(report.Components))
	for name, status := range report.Components {
		if status != "OK" {
			failed = append(failed, fmt.Sprintf("%s: %s", name, status))
		}
	}
	sort.Strings(failed)

	return errors.New(strings.Join(failed, "; "))
}

// Drain flips readiness to failing so load balancers stop routing webhooks.
func (p *Probes) Drain(context.Context) error {
	p.draining.Store(true)
	return nil
}

// Register mounts /livez and /readyz on mux.
func (p *Probes) Register(mux *http.ServeMux) {
	mux.HandleFunc("/livez", probeHandler(p.Liveness))
	mux.HandleFunc("/readyz", probeHandler(p.Readiness))
}

func probeHandler(probe func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := probe(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}
}
