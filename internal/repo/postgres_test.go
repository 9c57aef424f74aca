package repo

import (
	"context"
	"errors"
	"math/big"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fulfillment-fees/internal/catalog"
	"github.com/noah-isme/fulfillment-fees/internal/commission"
	"github.com/noah-isme/fulfillment-fees/internal/common"
	dbgen "github.com/noah-isme/fulfillment-fees/internal/db/gen"
	"github.com/noah-isme/fulfillment-fees/internal/resilience"
	"github.com/noah-isme/fulfillment-fees/internal/tier"
)

type querierStub struct {
	settings    []dbgen.CommissionSetting
	partners    map[uuid.UUID]dbgen.Partner
	err         error
	upserted    dbgen.UpsertPartnerParams
	created     dbgen.CreateCommissionSettingParams
	settingsHit int
}

func (q *querierStub) ListActiveCommissionSettings(context.Context) ([]dbgen.CommissionSetting, error) {
	q.settingsHit++
	return q.settings, q.err
}

func (q *querierStub) GetPartnerByID(_ context.Context, id pgtype.UUID) (dbgen.Partner, error) {
	if q.err != nil {
		return dbgen.Partner{}, q.err
	}
	row, ok := q.partners[uuid.UUID(id.Bytes)]
	if !ok {
		return dbgen.Partner{}, pgx.ErrNoRows
	}
	return row, nil
}

func (q *querierStub) UpsertPartner(_ context.Context, arg dbgen.UpsertPartnerParams) (dbgen.Partner, error) {
	q.upserted = arg
	return dbgen.Partner{
		ID:             arg.ID,
		Name:           arg.Name,
		PricingTier:    arg.PricingTier,
		CommissionRate: arg.CommissionRate,
		Category:       arg.Category,
		Marketplace:    arg.Marketplace,
	}, nil
}

func (q *querierStub) CreateCommissionSetting(_ context.Context, arg dbgen.CreateCommissionSettingParams) (dbgen.CommissionSetting, error) {
	q.created = arg
	return dbgen.CommissionSetting{
		ID:            pgUUID(uuid.New()),
		PartnerID:     arg.PartnerID,
		Category:      arg.Category,
		Marketplace:   arg.Marketplace,
		Rate:          arg.Rate,
		MinOrderValue: arg.MinOrderValue,
		MaxOrderValue: arg.MaxOrderValue,
		Active:        arg.Active,
		ValidFrom:     arg.ValidFrom,
		ValidTo:       arg.ValidTo,
		CreatedAt:     pgtype.Timestamptz{Time: time.Now(), Valid: true},
	}, nil
}

func settingRow(rate string, category string) dbgen.CommissionSetting {
	return dbgen.CommissionSetting{
		ID:        pgUUID(uuid.New()),
		Category:  pgtype.Text{String: category, Valid: category != ""},
		Rate:      numeric(decimal.RequireFromString(rate)),
		Active:    true,
		CreatedAt: pgtype.Timestamptz{Time: time.Now(), Valid: true},
	}
}

func TestActiveSettingsConvertsRows(t *testing.T) {
	windowed := settingRow("0.125", "electronics")
	windowed.MinOrderValue = numeric(decimal.NewFromInt(1_000))
	windowed.MaxOrderValue = pgtype.Numeric{Int: big.NewInt(500), Exp: 1, Valid: true}

	bad := settingRow("0.1", "garden")

	store := &Postgres{Q: &querierStub{settings: []dbgen.CommissionSetting{windowed, bad, settingRow("0.3", "")}}, Logger: zerolog.Nop()}
	settings, err := store.ActiveSettings(context.Background())
	require.NoError(t, err)
	require.Len(t, settings, 2)

	s := settings[0]
	require.True(t, s.Rate.Equal(decimal.RequireFromString("0.125")))
	require.Equal(t, catalog.CategoryElectronics, *s.Category)
	require.True(t, s.MinOrderValue.Equal(decimal.NewFromInt(1_000)))
	require.True(t, s.MaxOrderValue.Equal(decimal.NewFromInt(5_000)))
	require.Nil(t, settings[1].Category)
}

func TestPartnerLookup(t *testing.T) {
	id := uuid.New()
	rate := decimal.RequireFromString("0.2")
	store := &Postgres{Q: &querierStub{partners: map[uuid.UUID]dbgen.Partner{
		id: {
			ID:             pgUUID(id),
			Name:           "Acme",
			PricingTier:    "business_standard",
			CommissionRate: numeric(rate),
			Marketplace:    pgtype.Text{String: "ozon", Valid: true},
		},
	}}}

	p, err := store.Partner(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, tier.BusinessStandard, p.PricingTier)
	require.True(t, p.CommissionRate.Equal(rate))
	require.Equal(t, catalog.MarketplaceOzon, *p.Marketplace)
	require.Nil(t, p.Category)

	_, err = store.Partner(context.Background(), uuid.New())
	require.ErrorIs(t, err, commission.ErrPartnerNotFound)
}

func TestMissingPartnersDoNotTripBreaker(t *testing.T) {
	breaker := resilience.NewBreaker("postgres-repo-missing", 1, 0.5, time.Minute)
	store := &Postgres{Q: &querierStub{}, Breaker: breaker}
	for i := 0; i < 3; i++ {
		_, err := store.Partner(context.Background(), uuid.New())
		require.ErrorIs(t, err, commission.ErrPartnerNotFound)
	}
	require.Equal(t, resilience.Closed, breaker.State())
}

func TestOpenBreakerReportsUnavailable(t *testing.T) {
	breaker := resilience.NewBreaker("postgres-repo-open", 1, 0.5, time.Minute)
	q := &querierStub{err: errors.New("connection refused")}
	store := &Postgres{Q: q, Breaker: breaker}

	_, err := store.ActiveSettings(context.Background())
	require.Error(t, err)
	require.False(t, common.IsAppError(err))

	_, err = store.ActiveSettings(context.Background())
	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, http.StatusServiceUnavailable, appErr.HTTPStatus)
	require.Equal(t, 1, q.settingsHit)
}

func TestWritesConvertDomainValues(t *testing.T) {
	q := &querierStub{}
	store := &Postgres{Q: q}
	category := catalog.CategoryHome
	rate := decimal.RequireFromString("0.18")

	p, err := store.UpsertPartner(context.Background(), commission.Partner{Name: "Home Goods", PricingTier: tier.StarterPro, Category: &category, CommissionRate: &rate})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, p.ID)
	require.Equal(t, "home", q.upserted.Category.String)
	require.False(t, q.upserted.Marketplace.Valid)

	partnerID := p.ID
	maxOrder := decimal.NewFromInt(10_000_000)
	s, err := store.CreateSetting(context.Background(), commission.Setting{PartnerID: &partnerID, Rate: rate, MaxOrderValue: &maxOrder, Active: true})
	require.NoError(t, err)
	require.Equal(t, partnerID, *s.PartnerID)
	require.True(t, s.MaxOrderValue.Equal(maxOrder))
	require.Nil(t, s.MinOrderValue)
	require.False(t, q.created.ValidFrom.Valid)
}
