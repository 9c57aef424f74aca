package app

import (
	"crypto/subtle"
	"net/http"
	"net/http/pprof"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	limiter "github.com/ulule/limiter/v3"

	"github.com/noah-isme/fulfillment-fees/internal/commission"
	"github.com/noah-isme/fulfillment-fees/internal/common"
	"github.com/noah-isme/fulfillment-fees/internal/health"
	"github.com/noah-isme/fulfillment-fees/internal/obs"
	"github.com/noah-isme/fulfillment-fees/internal/pricing"
	"github.com/noah-isme/fulfillment-fees/internal/ratelimit"
	"github.com/noah-isme/fulfillment-fees/internal/security"
	"github.com/noah-isme/fulfillment-fees/internal/tier"
)

// RouterConfig carries the handlers and middleware settings of the HTTP API.
type RouterConfig struct {
	Logger         zerolog.Logger
	Commission     commission.RateService
	Pricing        pricing.Calculation
	Health         health.Handler
	Limiter        *limiter.Limiter
	Metrics        *obs.HTTPMetrics
	TracingEnabled bool
	AllowedOrigins []string
	BodyLimitBytes int64
	PprofEnabled   bool
	PprofUser      string
	PprofPass      string
}

// NewRouter builds the chi router serving the fees API.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.HTTP{Metrics: cfg.Metrics, Tracing: cfg.TracingEnabled}.Middleware)
	r.Use(obs.RequestLogger{Logger: cfg.Logger}.Middleware)
	r.Use(security.Headers{HSTSMaxAge: 31536000}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins(cfg.AllowedOrigins),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		common.JSONError(w, http.StatusNotFound, common.CodeNotFound, "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		common.JSONError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
	})

	r.Get("/health/live", cfg.Health.Live)
	r.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		r.Handle("/metrics", promhttp.Handler())
	}
	if cfg.PprofEnabled {
		r.Mount("/debug/pprof", protectPprof(newPprofMux(), cfg.PprofUser, cfg.PprofPass))
	}

	commissionHandler := &commission.Handler{Svc: cfg.Commission}
	pricingHandler := &pricing.Handler{Svc: cfg.Pricing}
	tierHandler := tier.Handler{}
	throttle := ratelimit.Handler{
		Limiter: cfg.Limiter,
		OnError: func(err error) { cfg.Logger.Warn().Err(err).Msg("rate limiter unavailable") },
	}

	r.Route("/api/v1", func(v chi.Router) {
		v.Get("/tiers", tierHandler.List)

		v.Group(func(calc chi.Router) {
			calc.Use(throttle.Middleware)
			calc.Get("/tiers/{name}/fee", tierHandler.Fee)
			calc.Get("/commission/effective", commissionHandler.Effective)
			calc.With(security.BodyLimit{Max: cfg.BodyLimitBytes}.Middleware).Post("/breakdown", pricingHandler.Breakdown)
		})
	})
	return r
}

func allowedOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func newPprofMux() http.Handler {
	const prefix = "/debug/pprof/"
	mux := http.NewServeMux()
	mux.HandleFunc(prefix, pprof.Index)
	mux.HandleFunc(prefix+"cmdline", pprof.Cmdline)
	mux.HandleFunc(prefix+"profile", pprof.Profile)
	mux.HandleFunc(prefix+"symbol", pprof.Symbol)
	mux.HandleFunc(prefix+"trace", pprof.Trace)
	return mux
}

func protectPprof(handler http.Handler, user, pass string) http.Handler {
	user = strings.TrimSpace(user)
	pass = strings.TrimSpace(pass)
	if user == "" {
		return handler
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || subtle.ConstantTimeCompare([]byte(u), []byte(user)) != 1 || subtle.ConstantTimeCompare([]byte(p), []byte(pass)) != 1 {
			w.Header().Set("WWW-Authenticate", "Basic realm=restricted")
			http.Error(w, "unauthorised", http.StatusUnauthorized)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
