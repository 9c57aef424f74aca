package commission

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fulfillment-fees/internal/catalog"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestResolver() *Resolver {
	r, err := NewResolver(decimal.RequireFromString("0.30"))
	if err != nil {
		panic(err)
	}
	r.Now = func() time.Time { return fixedNow }
	return r
}

func ptr[T any](v T) *T { return &v }

func rate(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func setting(r string, age time.Duration) Setting {
	return Setting{ID: uuid.New(), Rate: rate(r), Active: true, CreatedAt: fixedNow.Add(-age)}
}

func TestResolveGlobalDefaultVerbatim(t *testing.T) {
	res := newTestResolver().Resolve(Context{}, nil, nil)
	require.Equal(t, SourceGlobalDefault, res.Source)
	require.True(t, res.Rate.Equal(rate("0.30")))
	require.Nil(t, res.SettingID)
	require.True(t, res.Percent().Equal(decimal.NewFromInt(30)))
}

func TestNewResolverRejectsDefaultOutsideUnitInterval(t *testing.T) {
	for _, raw := range []string{"0", "-0.1", "1.5"} {
		r, err := NewResolver(rate(raw))
		require.ErrorIs(t, err, ErrInvalidDefaultRate, raw)
		require.Nil(t, r)
	}
	r, err := NewResolver(rate("1"))
	require.NoError(t, err)
	require.NotNil(t, r)
}

type stubStrategy struct {
	source Source
	match  bool
}

func (s stubStrategy) Source() Source { return s.source }

func (s stubStrategy) Resolve(Input) (Resolution, bool) {
	return Resolution{Rate: rate("0.05")}, s.match
}

func TestResolveStampsSourceOfMatchingStrategy(t *testing.T) {
	r := &Resolver{Strategies: []Strategy{
		stubStrategy{source: SourcePartnerSetting},
		stubStrategy{source: SourcePartnerRate, match: true},
	}}
	res := r.Resolve(Context{}, nil, nil)
	require.Equal(t, SourcePartnerRate, res.Source)
	require.True(t, res.Rate.Equal(rate("0.05")))

	empty := (&Resolver{}).Resolve(Context{}, nil, nil)
	require.Equal(t, SourceGlobalDefault, empty.Source)
	require.True(t, empty.Rate.Equal(DefaultRate))
}

func TestStandardChainOrder(t *testing.T) {
	r := newTestResolver()
	got := make([]Source, 0, len(r.Strategies))
	for _, s := range r.Strategies {
		got = append(got, s.Source())
	}
	require.Equal(t, []Source{SourcePartnerSetting, SourceScopedSetting, SourcePartnerRate, SourceGlobalDefault}, got)
}

func TestPartnerSettingBeatsCategoryMarketplaceSetting(t *testing.T) {
	partnerID := uuid.New()
	scoped := setting("0.10", time.Minute)
	scoped.Category = ptr(catalog.CategoryElectronics)
	scoped.Marketplace = ptr(catalog.MarketplaceUzum)

	own := setting("0.20", time.Hour)
	own.PartnerID = ptr(partnerID)

	ctx := Context{PartnerID: ptr(partnerID), Category: ptr(catalog.CategoryElectronics), Marketplace: ptr(catalog.MarketplaceUzum)}
	res := newTestResolver().Resolve(ctx, []Setting{scoped, own}, nil)
	require.Equal(t, SourcePartnerSetting, res.Source)
	require.True(t, res.Rate.Equal(rate("0.20")))
	require.Equal(t, own.ID, *res.SettingID)
}

func TestPartnerSettingIgnoresOtherPartners(t *testing.T) {
	other := setting("0.05", time.Minute)
	other.PartnerID = ptr(uuid.New())

	res := newTestResolver().Resolve(Context{PartnerID: ptr(uuid.New())}, []Setting{other}, nil)
	require.Equal(t, SourceGlobalDefault, res.Source)
}

func TestPartnerSettingMostRecentWins(t *testing.T) {
	partnerID := uuid.New()
	older := setting("0.11", 48*time.Hour)
	older.PartnerID = ptr(partnerID)
	newer := setting("0.12", time.Hour)
	newer.PartnerID = ptr(partnerID)

	res := newTestResolver().Resolve(Context{PartnerID: ptr(partnerID)}, []Setting{newer, older}, nil)
	require.True(t, res.Rate.Equal(rate("0.12")))
}

func TestScopedSettingSpecificityOrdering(t *testing.T) {
	both := setting("0.15", 72*time.Hour)
	both.Category = ptr(catalog.CategoryElectronics)
	both.Marketplace = ptr(catalog.MarketplaceOzon)

	catOnly := setting("0.18", time.Hour)
	catOnly.Category = ptr(catalog.CategoryElectronics)

	global := setting("0.25", time.Minute)

	ctx := Context{Category: ptr(catalog.CategoryElectronics), Marketplace: ptr(catalog.MarketplaceOzon)}
	res := newTestResolver().Resolve(ctx, []Setting{global, catOnly, both}, nil)
	require.Equal(t, SourceScopedSetting, res.Source)
	require.True(t, res.Rate.Equal(rate("0.15")))

	res = newTestResolver().Resolve(Context{Category: ptr(catalog.CategoryElectronics)}, []Setting{global, catOnly, both}, nil)
	require.True(t, res.Rate.Equal(rate("0.18")))

	res = newTestResolver().Resolve(Context{}, []Setting{global, catOnly, both}, nil)
	require.True(t, res.Rate.Equal(rate("0.25")))
}

func TestScopedSettingTieBrokenByRecency(t *testing.T) {
	older := setting("0.14", 24*time.Hour)
	older.Marketplace = ptr(catalog.MarketplaceWildberries)
	newer := setting("0.16", time.Hour)
	newer.Marketplace = ptr(catalog.MarketplaceWildberries)

	res := newTestResolver().Resolve(Context{Marketplace: ptr(catalog.MarketplaceWildberries)}, []Setting{older, newer}, nil)
	require.Equal(t, newer.ID, *res.SettingID)
}

func TestScopedSettingMismatchedScopeExcluded(t *testing.T) {
	s := setting("0.09", time.Hour)
	s.Category = ptr(catalog.CategoryBooks)

	res := newTestResolver().Resolve(Context{Category: ptr(catalog.CategoryFood)}, []Setting{s}, nil)
	require.Equal(t, SourceGlobalDefault, res.Source)

	res = newTestResolver().Resolve(Context{}, []Setting{s}, nil)
	require.Equal(t, SourceGlobalDefault, res.Source)
}

func TestOrderValueWindowSkipsToNextCandidate(t *testing.T) {
	windowed := setting("0.08", time.Hour)
	windowed.Category = ptr(catalog.CategoryElectronics)
	windowed.MinOrderValue = ptr(decimal.NewFromInt(1_000_000))
	windowed.MaxOrderValue = ptr(decimal.NewFromInt(5_000_000))

	fallback := setting("0.12", 2*time.Hour)
	fallback.Category = ptr(catalog.CategoryElectronics)

	settings := []Setting{windowed, fallback}
	ctx := Context{Category: ptr(catalog.CategoryElectronics)}

	ctx.OrderValue = ptr(decimal.NewFromInt(2_000_000))
	require.True(t, newTestResolver().Resolve(ctx, settings, nil).Rate.Equal(rate("0.08")))

	ctx.OrderValue = ptr(decimal.NewFromInt(5_000_000))
	require.True(t, newTestResolver().Resolve(ctx, settings, nil).Rate.Equal(rate("0.08")), "max is inclusive")

	ctx.OrderValue = ptr(decimal.NewFromInt(9_000_000))
	require.True(t, newTestResolver().Resolve(ctx, settings, nil).Rate.Equal(rate("0.12")))

	ctx.OrderValue = nil
	require.True(t, newTestResolver().Resolve(ctx, settings, nil).Rate.Equal(rate("0.12")))
}

func TestValidityWindowAndActiveFlag(t *testing.T) {
	future := setting("0.01", time.Hour)
	future.ValidFrom = ptr(fixedNow.Add(time.Hour))

	expired := setting("0.02", time.Hour)
	expired.ValidTo = ptr(fixedNow.Add(-time.Minute))

	inactive := setting("0.03", time.Hour)
	inactive.Active = false

	res := newTestResolver().Resolve(Context{}, []Setting{future, expired, inactive}, nil)
	require.Equal(t, SourceGlobalDefault, res.Source)

	current := setting("0.04", time.Hour)
	current.ValidFrom = ptr(fixedNow.Add(-time.Hour))
	current.ValidTo = ptr(fixedNow.Add(time.Hour))
	res = newTestResolver().Resolve(Context{}, []Setting{future, current}, nil)
	require.True(t, res.Rate.Equal(rate("0.04")))
}

func TestPartnerRateFallback(t *testing.T) {
	p := &Partner{ID: uuid.New(), CommissionRate: ptr(rate("0.22"))}
	res := newTestResolver().Resolve(Context{PartnerID: ptr(p.ID)}, nil, p)
	require.Equal(t, SourcePartnerRate, res.Source)
	require.True(t, res.Rate.Equal(rate("0.22")))

	res = newTestResolver().Resolve(Context{PartnerID: ptr(p.ID)}, nil, &Partner{ID: p.ID})
	require.Equal(t, SourceGlobalDefault, res.Source)
}

func TestScopedSettingBeatsPartnerRate(t *testing.T) {
	p := &Partner{ID: uuid.New(), CommissionRate: ptr(rate("0.22"))}
	s := setting("0.17", time.Hour)
	res := newTestResolver().Resolve(Context{PartnerID: ptr(p.ID)}, []Setting{s}, p)
	require.Equal(t, SourceScopedSetting, res.Source)
}

func TestSpecificity(t *testing.T) {
	s := Setting{Category: ptr(catalog.CategoryKids), Marketplace: ptr(catalog.MarketplaceYandex)}
	score, ok := Specificity(s, Context{Category: ptr(catalog.CategoryKids), Marketplace: ptr(catalog.MarketplaceYandex)})
	require.True(t, ok)
	require.Equal(t, 2, score)

	_, ok = Specificity(s, Context{Category: ptr(catalog.CategoryKids)})
	require.False(t, ok)

	score, ok = Specificity(Setting{}, Context{Category: ptr(catalog.CategoryKids)})
	require.True(t, ok)
	require.Zero(t, score)
}
