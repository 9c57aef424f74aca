// Package repo implements commission storage on Postgres with a Redis snapshot cache.
package repo

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	"github.com/noah-isme/fulfillment-fees/internal/commission"
	"github.com/noah-isme/fulfillment-fees/internal/common"
	dbgen "github.com/noah-isme/fulfillment-fees/internal/db/gen"
	"github.com/noah-isme/fulfillment-fees/internal/resilience"
)

// Querier defines the sqlc generated queries used by Postgres.
type Querier interface {
	ListActiveCommissionSettings(ctx context.Context) ([]dbgen.CommissionSetting, error)
	GetPartnerByID(ctx context.Context, id pgtype.UUID) (dbgen.Partner, error)
	UpsertPartner(ctx context.Context, arg dbgen.UpsertPartnerParams) (dbgen.Partner, error)
	CreateCommissionSetting(ctx context.Context, arg dbgen.CreateCommissionSettingParams) (dbgen.CommissionSetting, error)
}

// Postgres reads settings and partners through sqlc queries. A nil Breaker disables
// fail-fast behaviour.
type Postgres struct {
	Q       Querier
	Breaker *resilience.Breaker
	Logger  zerolog.Logger
}

// ActiveSettings returns every active setting. Rows that cannot be decoded are
// logged and left out of the snapshot.
func (p *Postgres) ActiveSettings(ctx context.Context) ([]commission.Setting, error) {
	var rows []dbgen.CommissionSetting
	err := p.Breaker.Do(ctx, func(ctx context.Context) error {
		var err error
		rows, err = p.Q.ListActiveCommissionSettings(ctx)
		return err
	})
	if err != nil {
		return nil, unavailable(err, "list commission settings")
	}
	settings := make([]commission.Setting, 0, len(rows))
	for _, row := range rows {
		s, err := settingFromRow(row)
		if err != nil {
			p.Logger.Warn().Err(err).Msg("skipping malformed commission setting")
			continue
		}
		settings = append(settings, s)
	}
	return settings, nil
}

// Partner returns the partner with id or commission.ErrPartnerNotFound.
func (p *Postgres) Partner(ctx context.Context, id uuid.UUID) (commission.Partner, error) {
	var row dbgen.Partner
	err := p.Breaker.Do(ctx, func(ctx context.Context) error {
		var err error
		row, err = p.Q.GetPartnerByID(ctx, pgUUID(id))
		if errors.Is(err, pgx.ErrNoRows) {
			return errors.Join(resilience.ErrNotCounted, commission.ErrPartnerNotFound)
		}
		return err
	})
	if errors.Is(err, commission.ErrPartnerNotFound) {
		return commission.Partner{}, commission.ErrPartnerNotFound
	}
	if err != nil {
		return commission.Partner{}, unavailable(err, "get partner")
	}
	return partnerFromRow(row)
}

// UpsertPartner creates or replaces a partner record.
func (p *Postgres) UpsertPartner(ctx context.Context, partner commission.Partner) (commission.Partner, error) {
	if partner.ID == uuid.Nil {
		partner.ID = uuid.New()
	}
	row, err := p.Q.UpsertPartner(ctx, dbgen.UpsertPartnerParams{
		ID:             pgUUID(partner.ID),
		Name:           partner.Name,
		PricingTier:    string(partner.PricingTier),
		CommissionRate: optionalNumeric(partner.CommissionRate),
		Category:       enumText(partner.Category),
		Marketplace:    enumText(partner.Marketplace),
	})
	if err != nil {
		return commission.Partner{}, fmt.Errorf("upsert partner: %w", err)
	}
	return partnerFromRow(row)
}

// CreateSetting inserts a commission setting and returns it with its generated id.
func (p *Postgres) CreateSetting(ctx context.Context, s commission.Setting) (commission.Setting, error) {
	row, err := p.Q.CreateCommissionSetting(ctx, dbgen.CreateCommissionSettingParams{
		PartnerID:     optionalPgUUID(s.PartnerID),
		Category:      enumText(s.Category),
		Marketplace:   enumText(s.Marketplace),
		Rate:          numeric(s.Rate),
		MinOrderValue: optionalNumeric(s.MinOrderValue),
		MaxOrderValue: optionalNumeric(s.MaxOrderValue),
		Active:        s.Active,
		ValidFrom:     timestamptz(s.ValidFrom),
		ValidTo:       timestamptz(s.ValidTo),
	})
	if err != nil {
		return commission.Setting{}, fmt.Errorf("create commission setting: %w", err)
	}
	return settingFromRow(row)
}

func unavailable(err error, op string) error {
	if errors.Is(err, resilience.ErrOpenCircuit) {
		return common.NewAppError(common.CodeUnavailable, "commission store unavailable", http.StatusServiceUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
