package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fulfillment-fees/internal/health"
	"github.com/noah-isme/fulfillment-fees/internal/resilience"
)

func check(name string, critical bool, err error) health.Check {
	return health.Check{Name: name, Critical: critical, Probe: func(context.Context) error { return err }}
}

func ready(t *testing.T, h health.Handler) (int, health.Report) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	var body struct {
		Data health.Report `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body.Data
}

func TestLive(t *testing.T) {
	rec := httptest.NewRecorder()
	health.Handler{}.Live(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"data":{"status":"alive"}}`, rec.Body.String())
}

func TestReadyCriticalFailure(t *testing.T) {
	code, report := ready(t, health.Handler{Checks: []health.Check{
		check("db", true, errors.New("db down")),
		check("redis", true, nil),
	}})
	require.Equal(t, http.StatusServiceUnavailable, code)
	require.Equal(t, "unavailable", report.Status)
	require.Equal(t, map[string]string{"db": "db down", "redis": "ok"}, report.Checks)
}

func TestReadyIgnoresDisabledAndInformationalChecks(t *testing.T) {
	code, report := ready(t, health.Handler{Checks: []health.Check{
		check("db", true, nil),
		check("redis", true, health.ErrDisabled),
		check("postgres_breaker", false, resilience.ErrOpenCircuit),
	}})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "ready", report.Status)
	require.Equal(t, "disabled", report.Checks["redis"])
	require.Equal(t, resilience.ErrOpenCircuit.Error(), report.Checks["postgres_breaker"])
}

func TestReadyWithoutChecks(t *testing.T) {
	code, report := ready(t, health.Handler{})
	require.Equal(t, http.StatusServiceUnavailable, code)
	require.Equal(t, "unavailable", report.Status)
}

func TestReadyWhileDraining(t *testing.T) {
	h := health.Handler{Checks: []health.Check{check("db", true, nil)}}
	health.SetReady(false)
	t.Cleanup(func() { health.SetReady(true) })

	code, report := ready(t, h)
	require.Equal(t, http.StatusServiceUnavailable, code)
	require.Equal(t, "draining", report.Status)

	health.SetReady(true)
	code, _ = ready(t, h)
	require.Equal(t, http.StatusOK, code)
}

func TestProbeTimeout(t *testing.T) {
	slow := health.Check{Name: "db", Critical: true, Timeout: 10 * time.Millisecond, Probe: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}}
	report := health.Handler{Checks: []health.Check{slow}}.Evaluate(context.Background())
	require.Equal(t, "unavailable", report.Status)
	require.Equal(t, context.DeadlineExceeded.Error(), report.Checks["db"])
}

func TestDependencyChecks(t *testing.T) {
	ctx := context.Background()
	require.ErrorIs(t, health.Redis(nil, 0).Probe(ctx), health.ErrDisabled)
	require.Error(t, health.Postgres(nil, 0).Probe(ctx))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, health.Redis(client, time.Second).Probe(ctx))

	breaker := resilience.NewBreaker("postgres", 1, 0.5, time.Minute)
	require.NoError(t, health.Breaker("postgres_breaker", breaker).Probe(ctx))
	_ = breaker.Do(ctx, func(context.Context) error { return errors.New("boom") })
	require.ErrorIs(t, health.Breaker("postgres_breaker", breaker).Probe(ctx), resilience.ErrOpenCircuit)
	require.ErrorIs(t, health.Breaker("none", nil).Probe(ctx), health.ErrDisabled)
}
