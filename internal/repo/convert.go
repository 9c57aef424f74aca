package repo

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/fulfillment-fees/internal/catalog"
	"github.com/noah-isme/fulfillment-fees/internal/commission"
	dbgen "github.com/noah-isme/fulfillment-fees/internal/db/gen"
	"github.com/noah-isme/fulfillment-fees/internal/tier"
)

func pgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

func optionalPgUUID(id *uuid.UUID) pgtype.UUID {
	if id == nil {
		return pgtype.UUID{}
	}
	return pgUUID(*id)
}

func optionalUUID(v pgtype.UUID) *uuid.UUID {
	if !v.Valid {
		return nil
	}
	id := uuid.UUID(v.Bytes)
	return &id
}

func numeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}

func optionalNumeric(d *decimal.Decimal) pgtype.Numeric {
	if d == nil {
		return pgtype.Numeric{}
	}
	return numeric(*d)
}

func optionalDecimal(n pgtype.Numeric) (*decimal.Decimal, error) {
	if !n.Valid {
		return nil, nil
	}
	if n.NaN || n.InfinityModifier != pgtype.Finite || n.Int == nil {
		return nil, fmt.Errorf("numeric value is not finite")
	}
	d := decimal.NewFromBigInt(n.Int, n.Exp)
	return &d, nil
}

func enumText[T ~string](v *T) pgtype.Text {
	if v == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: string(*v), Valid: true}
}

func optionalTime(v pgtype.Timestamptz) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

func timestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}

func optionalCategory(v pgtype.Text) (*catalog.Category, error) {
	if !v.Valid {
		return nil, nil
	}
	c, err := catalog.ParseCategory(v.String)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func optionalMarketplace(v pgtype.Text) (*catalog.Marketplace, error) {
	if !v.Valid {
		return nil, nil
	}
	m, err := catalog.ParseMarketplace(v.String)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func settingFromRow(row dbgen.CommissionSetting) (commission.Setting, error) {
	if !row.ID.Valid {
		return commission.Setting{}, fmt.Errorf("setting without id")
	}
	s := commission.Setting{
		ID:        uuid.UUID(row.ID.Bytes),
		PartnerID: optionalUUID(row.PartnerID),
		Active:    row.Active,
		ValidFrom: optionalTime(row.ValidFrom),
		ValidTo:   optionalTime(row.ValidTo),
		CreatedAt: row.CreatedAt.Time,
	}
	rate, err := optionalDecimal(row.Rate)
	if err != nil || rate == nil {
		return commission.Setting{}, fmt.Errorf("setting %s: invalid rate", s.ID)
	}
	s.Rate = *rate
	if s.MinOrderValue, err = optionalDecimal(row.MinOrderValue); err != nil {
		return commission.Setting{}, fmt.Errorf("setting %s: min order value: %w", s.ID, err)
	}
	if s.MaxOrderValue, err = optionalDecimal(row.MaxOrderValue); err != nil {
		return commission.Setting{}, fmt.Errorf("setting %s: max order value: %w", s.ID, err)
	}
	if s.Category, err = optionalCategory(row.Category); err != nil {
		return commission.Setting{}, fmt.Errorf("setting %s: %w", s.ID, err)
	}
	if s.Marketplace, err = optionalMarketplace(row.Marketplace); err != nil {
		return commission.Setting{}, fmt.Errorf("setting %s: %w", s.ID, err)
	}
	return s, nil
}

func partnerFromRow(row dbgen.Partner) (commission.Partner, error) {
	p := commission.Partner{
		ID:          uuid.UUID(row.ID.Bytes),
		Name:        row.Name,
		PricingTier: tier.Name(row.PricingTier),
	}
	var err error
	if p.CommissionRate, err = optionalDecimal(row.CommissionRate); err != nil {
		return commission.Partner{}, fmt.Errorf("partner %s: commission rate: %w", p.ID, err)
	}
	if p.Category, err = optionalCategory(row.Category); err != nil {
		return commission.Partner{}, fmt.Errorf("partner %s: %w", p.ID, err)
	}
	if p.Marketplace, err = optionalMarketplace(row.Marketplace); err != nil {
		return commission.Partner{}, fmt.Errorf("partner %s: %w", p.ID, err)
	}
	return p, nil
}
