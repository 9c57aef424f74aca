package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/fulfillment-fees/internal/cache"
	"github.com/noah-isme/fulfillment-fees/internal/commission"
	"github.com/noah-isme/fulfillment-fees/internal/lock"
	"github.com/noah-isme/fulfillment-fees/internal/obs"
)

const refreshLockTTL = 5 * time.Second

type settingsSnapshot struct {
	Settings []commission.Setting `json:"settings"`
}

// Cached serves settings snapshots and partner records from Redis, loading from
// Next on a miss. Cache failures degrade to direct reads.
type Cached struct {
	Next     commission.Store
	Settings *cache.JSON
	Partners *cache.JSON
	Locker   *lock.Locker
	Logger   zerolog.Logger
}

// ActiveSettings implements commission.Store.
func (c *Cached) ActiveSettings(ctx context.Context) ([]commission.Setting, error) {
	if snap, ok := c.cachedSettings(ctx); ok {
		return snap.Settings, nil
	}
	if !c.Settings.Enabled() || c.Locker == nil || c.Locker.Client == nil {
		return c.refreshSettings(ctx)
	}

	var (
		settings []commission.Setting
		loadErr  error
		held     bool
	)
	err := c.Locker.WithLock(ctx, cache.KeySettingsRefreshLock, refreshLockTTL, func(ctx context.Context) error {
		held = true
		var snap settingsSnapshot
		if ok, err := c.Settings.Get(ctx, cache.KeySettingsSnapshot, &snap); err == nil && ok {
			settings = snap.Settings
			return nil
		}
		settings, loadErr = c.refreshSettings(ctx)
		return nil
	})
	if held {
		return settings, loadErr
	}
	if ctx.Err() != nil {
		return nil, err
	}
	c.Logger.Warn().Err(err).Msg("settings refresh lock failed, reading store directly")
	return c.refreshSettings(ctx)
}

// Partner implements commission.Store. Missing partners are not cached.
func (c *Cached) Partner(ctx context.Context, id uuid.UUID) (commission.Partner, error) {
	key := cache.KeyPartner(id)
	var p commission.Partner
	ok, err := c.Partners.Get(ctx, key, &p)
	switch {
	case err != nil:
		countCache("partner", "error")
		c.Logger.Warn().Err(err).Str("partner_id", id.String()).Msg("partner cache read failed")
	case ok:
		countCache("partner", "hit")
		return p, nil
	default:
		countCache("partner", "miss")
	}

	p, err = c.Next.Partner(ctx, id)
	if err != nil {
		return commission.Partner{}, err
	}
	if err := c.Partners.Set(ctx, key, p); err != nil {
		c.Logger.Warn().Err(err).Str("partner_id", id.String()).Msg("partner cache write failed")
	}
	return p, nil
}

// Invalidate drops the settings snapshot and the given partner records.
func (c *Cached) Invalidate(ctx context.Context, partnerIDs ...uuid.UUID) error {
	if err := c.Settings.Delete(ctx, cache.KeySettingsSnapshot); err != nil {
		return err
	}
	keys := make([]string, 0, len(partnerIDs))
	for _, id := range partnerIDs {
		keys = append(keys, cache.KeyPartner(id))
	}
	return c.Partners.Delete(ctx, keys...)
}

func (c *Cached) cachedSettings(ctx context.Context) (settingsSnapshot, bool) {
	var snap settingsSnapshot
	ok, err := c.Settings.Get(ctx, cache.KeySettingsSnapshot, &snap)
	switch {
	case err != nil:
		countCache("settings", "error")
		c.Logger.Warn().Err(err).Msg("settings cache read failed")
		return snap, false
	case ok:
		countCache("settings", "hit")
		return snap, true
	default:
		countCache("settings", "miss")
		return snap, false
	}
}

func (c *Cached) refreshSettings(ctx context.Context) ([]commission.Setting, error) {
	settings, err := c.Next.ActiveSettings(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.Settings.Set(ctx, cache.KeySettingsSnapshot, settingsSnapshot{Settings: settings}); err != nil {
		c.Logger.Warn().Err(err).Msg("settings cache write failed")
	}
	return settings, nil
}

func countCache(kind, result string) {
	if obs.SettingsCacheTotal != nil {
		obs.SettingsCacheTotal.WithLabelValues(kind, result).Inc()
	}
}
