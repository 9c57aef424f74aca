package main

import (
	"context"
	"flag"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/fulfillment-fees/internal/app"
	"github.com/noah-isme/fulfillment-fees/internal/cache"
	"github.com/noah-isme/fulfillment-fees/internal/catalog"
	"github.com/noah-isme/fulfillment-fees/internal/commission"
	"github.com/noah-isme/fulfillment-fees/internal/config"
	dbgen "github.com/noah-isme/fulfillment-fees/internal/db/gen"
	"github.com/noah-isme/fulfillment-fees/internal/obs"
	"github.com/noah-isme/fulfillment-fees/internal/repo"
	"github.com/noah-isme/fulfillment-fees/internal/tier"
)

func main() {
	migrateFirst := flag.Bool("migrate", true, "apply migrations before seeding")
	force := flag.Bool("force", false, "insert demo settings even when active settings exist")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("tool", "seeder").Logger()

	if *migrateFirst {
		if err := app.RunMigrations(cfg.DatabaseURL); err != nil {
			logger.Fatal().Err(err).Msg("run migrations")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	deps, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open dependencies")
	}
	defer deps.Close(logger)

	pg := &repo.Postgres{Q: dbgen.New(deps.DB), Logger: logger}
	cached := &repo.Cached{
		Next:     pg,
		Settings: cache.NewJSON(deps.Redis, cfg.SettingsCacheTTL),
		Partners: cache.NewJSON(deps.Redis, cfg.PartnerCacheTTL),
		Logger:   logger,
	}

	partners := seedPartners(ctx, pg, logger)
	existing, err := pg.ActiveSettings(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("list active settings")
	}
	if len(existing) > 0 && !*force {
		logger.Info().Int("active", len(existing)).Msg("active settings present, skipping demo settings")
	} else {
		seedSettings(ctx, pg, partners, logger)
	}

	ids := make([]uuid.UUID, 0, len(partners))
	for _, p := range partners {
		ids = append(ids, p.ID)
	}
	if err := cached.Invalidate(ctx, ids...); err != nil {
		logger.Error().Err(err).Msg("invalidate caches")
	}
	logger.Info().Msg("seeding completed")
}

func ptr[T any](v T) *T { return &v }

func rate(s string) *decimal.Decimal { return ptr(decimal.RequireFromString(s)) }

func seedPartners(ctx context.Context, pg *repo.Postgres, logger zerolog.Logger) []commission.Partner {
	demo := []commission.Partner{
		{ID: uuid.MustParse("5b0c5a8e-8d0e-4a43-9a57-3f1f0c1a0001"), Name: "Tashkent Gadgets", PricingTier: tier.StarterPro, Category: ptr(catalog.CategoryElectronics), Marketplace: ptr(catalog.MarketplaceUzum)},
		{ID: uuid.MustParse("5b0c5a8e-8d0e-4a43-9a57-3f1f0c1a0002"), Name: "Silk Road Apparel", PricingTier: tier.BusinessStandard, CommissionRate: rate("0.22"), Category: ptr(catalog.CategoryClothing)},
		{ID: uuid.MustParse("5b0c5a8e-8d0e-4a43-9a57-3f1f0c1a0003"), Name: "Samarkand Home", PricingTier: tier.ProfessionalPlus, Marketplace: ptr(catalog.MarketplaceWildberries)},
		{ID: uuid.MustParse("5b0c5a8e-8d0e-4a43-9a57-3f1f0c1a0004"), Name: "Bukhara Beauty Group", PricingTier: tier.EnterpriseElite, CommissionRate: rate("0.12")},
	}
	out := make([]commission.Partner, 0, len(demo))
	for _, p := range demo {
		saved, err := pg.UpsertPartner(ctx, p)
		if err != nil {
			logger.Fatal().Err(err).Str("partner", p.Name).Msg("upsert partner")
		}
		logger.Info().Str("partner_id", saved.ID.String()).Str("tier", string(saved.PricingTier)).Msg("partner seeded")
		out = append(out, saved)
	}
	return out
}

func seedSettings(ctx context.Context, pg *repo.Postgres, partners []commission.Partner, logger zerolog.Logger) {
	settings := []commission.Setting{
		{Rate: *rate("0.25")},
		{Category: ptr(catalog.CategoryElectronics), Rate: *rate("0.18")},
		{Category: ptr(catalog.CategoryElectronics), Marketplace: ptr(catalog.MarketplaceUzum), Rate: *rate("0.15")},
		{Category: ptr(catalog.CategoryElectronics), Rate: *rate("0.12"), MinOrderValue: rate("10000000")},
		{Marketplace: ptr(catalog.MarketplaceOzon), Rate: *rate("0.20")},
		{PartnerID: ptr(partners[0].ID), Rate: *rate("0.10")},
	}
	for _, s := range settings {
		s.Active = true
		saved, err := pg.CreateSetting(ctx, s)
		if err != nil {
			logger.Fatal().Err(err).Msg("create commission setting")
		}
		logger.Info().Str("setting_id", saved.ID.String()).Str("rate", saved.Rate.String()).Msg("setting seeded")
	}
}
