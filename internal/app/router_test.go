package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fulfillment-fees/internal/commission"
	"github.com/noah-isme/fulfillment-fees/internal/health"
	"github.com/noah-isme/fulfillment-fees/internal/pricing"
	"github.com/noah-isme/fulfillment-fees/internal/ratelimit"
)

type fixedRates struct{}

func (fixedRates) EffectiveRate(context.Context, commission.Context) (commission.Resolution, error) {
	return commission.Resolution{Rate: decimal.RequireFromString("0.03"), Source: commission.SourceGlobalDefault}, nil
}

const breakdownBody = `{"salePrice":20000000,"costPrice":12000000,"quantity":1,"category":"electronics",
	"marketplace":"uzum","logisticsSizeClass":"ogt","tierName":"starter_pro"}`

func newTestRouter(t *testing.T, perMinute int64) http.Handler {
	t.Helper()
	store, err := ratelimit.NewStore(nil)
	require.NoError(t, err)
	return NewRouter(RouterConfig{
		Logger:     zerolog.Nop(),
		Commission: fixedRates{},
		Pricing: &pricing.Service{
			Rates:      fixedRates{},
			Calculator: pricing.NewCalculator(pricing.DefaultServiceCostPerUnit, pricing.DefaultTaxRate),
			Logger:     zerolog.Nop(),
		},
		Health:         health.Handler{},
		Limiter:        ratelimit.NewLimiter(store, perMinute),
		BodyLimitBytes: 1024,
		PprofEnabled:   true,
		PprofUser:      "ops",
		PprofPass:      "secret",
	})
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouterServesCalculationEndpoints(t *testing.T) {
	h := newTestRouter(t, 100)

	rec := do(h, http.MethodPost, "/api/v1/breakdown", breakdownBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), `"partnerProfit":"3735600"`)
	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	require.NotEmpty(t, rec.Header().Get("X-RateLimit-Limit"))

	rec = do(h, http.MethodGet, "/api/v1/commission/effective?category=electronics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"source":"global_default"`)

	rec = do(h, http.MethodGet, "/api/v1/tiers", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Header().Get("X-RateLimit-Limit"))

	rec = do(h, http.MethodGet, "/api/v1/tiers/business_standard/fee?netProfit=20000000", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"amount":"6000000"`)
	require.NotEmpty(t, rec.Header().Get("X-RateLimit-Limit"))

	rec = do(h, http.MethodGet, "/health/live", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterErrorsUseEnvelope(t *testing.T) {
	h := newTestRouter(t, 100)

	rec := do(h, http.MethodGet, "/api/v1/unknown", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), `"code":"NOT_FOUND"`)

	rec = do(h, http.MethodPost, "/api/v1/breakdown", `{"pad":"`+strings.Repeat("x", 2048)+`"}`)
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = do(h, http.MethodPost, "/api/v1/breakdown", strings.Replace(breakdownBody, `"salePrice":20000000`, `"salePrice":1e20000000`, 1))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), `"field":"salePrice"`)

	rec = do(h, http.MethodGet, "/health/ready", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouterThrottlesCalculations(t *testing.T) {
	h := newTestRouter(t, 1)

	require.Equal(t, http.StatusOK, do(h, http.MethodPost, "/api/v1/breakdown", breakdownBody).Code)
	rec := do(h, http.MethodGet, "/api/v1/commission/effective", "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Contains(t, rec.Body.String(), ratelimit.CodeRateLimited)
	require.Equal(t, http.StatusTooManyRequests, do(h, http.MethodGet, "/api/v1/tiers/starter_pro/fee?netProfit=1", "").Code)

	require.Equal(t, http.StatusOK, do(h, http.MethodGet, "/api/v1/tiers", "").Code)
}

func TestRouterProtectsPprof(t *testing.T) {
	h := newTestRouter(t, 100)
	require.Equal(t, http.StatusUnauthorized, do(h, http.MethodGet, "/debug/pprof/", "").Code)

	req := httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil)
	req.SetBasicAuth("ops", "secret")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestMigrationURL(t *testing.T) {
	require.Equal(t, "pgx5://u:p@db:5432/fees?sslmode=disable", MigrationURL("postgres://u:p@db:5432/fees?sslmode=disable"))
	require.Equal(t, "pgx5://db/fees", MigrationURL("postgresql://db/fees"))
	require.Equal(t, "pgx5://db/fees", MigrationURL("pgx5://db/fees"))
}
