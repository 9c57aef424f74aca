package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/noah-isme/fulfillment-fees/internal/app"
	"github.com/noah-isme/fulfillment-fees/internal/cache"
	"github.com/noah-isme/fulfillment-fees/internal/commission"
	"github.com/noah-isme/fulfillment-fees/internal/config"
	dbgen "github.com/noah-isme/fulfillment-fees/internal/db/gen"
	"github.com/noah-isme/fulfillment-fees/internal/health"
	"github.com/noah-isme/fulfillment-fees/internal/lock"
	"github.com/noah-isme/fulfillment-fees/internal/obs"
	"github.com/noah-isme/fulfillment-fees/internal/pricing"
	"github.com/noah-isme/fulfillment-fees/internal/ratelimit"
	"github.com/noah-isme/fulfillment-fees/internal/repo"
	"github.com/noah-isme/fulfillment-fees/internal/resilience"
	"github.com/noah-isme/fulfillment-fees/internal/tier"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("env", cfg.AppEnv).Logger()
	tier.MustValidateRegistry()

	obs.MustRegisterDomainMetrics(cfg.MetricsNamespace, nil)
	resilience.MustRegisterMetrics(prometheus.DefaultRegisterer)

	tracingEnabled := cfg.TracingEnabled
	if tracingEnabled {
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   "fulfillment-fees-api",
			Endpoint:      cfg.OTLPEndpoint,
			Exporter:      cfg.TracingExporter,
			SamplingRatio: cfg.TracingSampling,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.MigrateOnStart {
		if err := app.RunMigrations(cfg.DatabaseURL); err != nil {
			logger.Fatal().Err(err).Msg("run migrations")
		}
		logger.Info().Msg("migrations applied")
	}

	startCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	deps, err := app.Open(startCtx, cfg, logger)
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("open dependencies")
	}
	defer deps.Close(logger)

	pgBreaker := resilience.NewBreaker("postgres", 5, 0.5, 10*time.Second).WithLogger(logger)
	store := &repo.Cached{
		Next:     &repo.Postgres{Q: dbgen.New(deps.DB), Breaker: pgBreaker, Logger: logger},
		Settings: cache.NewJSON(deps.Redis, cfg.SettingsCacheTTL),
		Partners: cache.NewJSON(deps.Redis, cfg.PartnerCacheTTL),
		Locker:   &lock.Locker{Client: deps.Redis},
		Logger:   logger,
	}
	resolver, err := commission.NewResolver(cfg.DefaultCommissionRate)
	if err != nil {
		logger.Fatal().Err(err).Msg("build commission resolver")
	}
	commissionSvc := &commission.Service{
		Store:    store,
		Resolver: resolver,
		Logger:   logger,
	}
	pricingSvc := &pricing.Service{
		Rates:      commissionSvc,
		Partners:   store,
		Calculator: pricing.NewCalculator(cfg.ServiceCostPerUnit, cfg.TaxRate),
		Logger:     logger,
	}

	limiterStore, err := ratelimit.NewStore(deps.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise rate limiter")
	}

	var httpMetrics *obs.HTTPMetrics
	if cfg.MetricsEnabled {
		httpMetrics = obs.NewHTTPMetrics(cfg.MetricsNamespace, obs.ParseBuckets(cfg.MetricsBuckets), nil)
	}

	handler := app.NewRouter(app.RouterConfig{
		Logger:     logger,
		Commission: commissionSvc,
		Pricing:    pricingSvc,
		Health: health.Handler{Checks: []health.Check{
			health.Postgres(deps.DB, cfg.ReadyDBTimeout),
			health.Redis(deps.Redis, cfg.ReadyRedisTimeout),
			health.Breaker("postgres_breaker", pgBreaker),
		}},
		Limiter:        ratelimit.NewLimiter(limiterStore, cfg.RateLimitPerMinute),
		Metrics:        httpMetrics,
		TracingEnabled: tracingEnabled,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		BodyLimitBytes: cfg.BodyLimitBytes,
		PprofEnabled:   cfg.PprofEnabled,
		PprofUser:      cfg.PprofUser,
		PprofPass:      cfg.PprofPass,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		health.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown")
		}
	}()

	logger.Info().Str("addr", srv.Addr).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server exited unexpectedly")
	}
	logger.Info().Msg("server stopped")
}
