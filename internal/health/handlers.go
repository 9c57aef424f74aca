// Package health exposes liveness and readiness probes.
package health

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/fulfillment-fees/internal/common"
	"github.com/noah-isme/fulfillment-fees/internal/resilience"
)

const defaultTimeout = 500 * time.Millisecond

// ErrDisabled reports a dependency that is not configured. It never fails readiness.
var ErrDisabled = errors.New("disabled")

var draining atomic.Bool

// SetReady toggles readiness, e.g. false while draining on shutdown.
func SetReady(v bool) {
	draining.Store(!v)
}

// Check probes one dependency. Only Critical failures make the instance unready.
type Check struct {
	Name     string
	Critical bool
	Timeout  time.Duration
	Probe    func(ctx context.Context) error
}

// Postgres pings the pool.
func Postgres(pool *pgxpool.Pool, timeout time.Duration) Check {
	return Check{Name: "db", Critical: true, Timeout: timeout, Probe: func(ctx context.Context) error {
		if pool == nil {
			return errors.New("not configured")
		}
		return pool.Ping(ctx)
	}}
}

// Redis pings the cache client; a nil client reports ErrDisabled.
func Redis(client *redis.Client, timeout time.Duration) Check {
	return Check{Name: "redis", Critical: true, Timeout: timeout, Probe: func(ctx context.Context) error {
		if client == nil {
			return ErrDisabled
		}
		return client.Ping(ctx).Err()
	}}
}

// Breaker reports the state of a circuit breaker without affecting readiness.
func Breaker(name string, b *resilience.Breaker) Check {
	return Check{Name: name, Probe: func(context.Context) error {
		if b == nil {
			return ErrDisabled
		}
		if b.State() == resilience.Open {
			return resilience.ErrOpenCircuit
		}
		return nil
	}}
}

// Report is the readiness payload.
type Report struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Handler serves the health endpoints.
type Handler struct {
	Checks []Check
}

func (h Handler) Live(w http.ResponseWriter, _ *http.Request) {
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]string{"status": "alive"}})
}

// Ready runs every check and answers 503 when a critical one fails, while draining,
// or when no checks are configured.
func (h Handler) Ready(w http.ResponseWriter, r *http.Request) {
	report := h.Evaluate(r.Context())
	status := http.StatusOK
	if report.Status != "ready" {
		status = http.StatusServiceUnavailable
	}
	common.JSON(w, status, map[string]any{"data": report})
}

// Evaluate runs the checks in order.
func (h Handler) Evaluate(ctx context.Context) Report {
	report := Report{Status: "ready", Checks: make(map[string]string, len(h.Checks))}
	if draining.Load() {
		report.Status = "draining"
	} else if len(h.Checks) == 0 {
		report.Status = "unavailable"
	}
	for _, c := range h.Checks {
		timeout := c.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		probeCtx, cancel := context.WithTimeout(ctx, timeout)
		err := c.Probe(probeCtx)
		cancel()

		switch {
		case err == nil:
			report.Checks[c.Name] = "ok"
		case errors.Is(err, ErrDisabled):
			report.Checks[c.Name] = ErrDisabled.Error()
		default:
			report.Checks[c.Name] = err.Error()
			if c.Critical && report.Status == "ready" {
				report.Status = "unavailable"
			}
		}
	}
	return report
}
