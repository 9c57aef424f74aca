package pricing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/fulfillment-fees/internal/catalog"
	"github.com/noah-isme/fulfillment-fees/internal/commission"
	"github.com/noah-isme/fulfillment-fees/internal/common"
	"github.com/noah-isme/fulfillment-fees/internal/obs"
	"github.com/noah-isme/fulfillment-fees/internal/tier"
)

var defaultValidator = common.NewValidator()

// RateResolver supplies the marketplace commission when the caller does not.
type RateResolver interface {
	EffectiveRate(ctx context.Context, c commission.Context) (commission.Resolution, error)
}

// PartnerLookup loads the partner whose tier applies when no tier is named.
type PartnerLookup interface {
	Partner(ctx context.Context, id uuid.UUID) (commission.Partner, error)
}

// BreakdownInput is the boundary payload of a breakdown calculation.
type BreakdownInput struct {
	SalePrice                    *decimal.Decimal    `json:"salePrice" validate:"required,gte=0"`
	CostPrice                    *decimal.Decimal    `json:"costPrice" validate:"required,gte=0"`
	Quantity                     int                 `json:"quantity" validate:"gte=1"`
	Category                     catalog.Category    `json:"category" validate:"required,enum"`
	Marketplace                  catalog.Marketplace `json:"marketplace" validate:"required,enum"`
	LogisticsSizeClass           SizeClass           `json:"logisticsSizeClass" validate:"required,enum"`
	MarketplaceCommissionPercent *decimal.Decimal    `json:"marketplaceCommissionPercent,omitempty" validate:"omitempty,gte=0,lte=100"`
	TierName                     tier.Name           `json:"tierName,omitempty" validate:"omitempty,enum"`
	PartnerID                    string              `json:"partnerId,omitempty" validate:"omitempty,uuid"`
}

// Service validates breakdown inputs, resolves the tier and marketplace rate and
// runs the Calculator.
type Service struct {
	Rates      RateResolver
	Partners   PartnerLookup
	Calculator Calculator
	Validator  *validator.Validate
	Logger     zerolog.Logger
}

// Breakdown computes the profit breakdown for in. Invalid input is rejected with a
// VALIDATION_ERROR before any computation happens.
func (s *Service) Breakdown(ctx context.Context, in BreakdownInput) (Breakdown, error) {
	v := s.Validator
	if v == nil {
		v = defaultValidator
	}
	in.Category = catalog.Category(strings.ToLower(strings.TrimSpace(string(in.Category))))
	in.Marketplace = catalog.Marketplace(strings.ToLower(strings.TrimSpace(string(in.Marketplace))))
	in.LogisticsSizeClass = SizeClass(strings.ToLower(strings.TrimSpace(string(in.LogisticsSizeClass))))
	in.TierName = tier.Name(strings.ToLower(strings.TrimSpace(string(in.TierName))))
	in.PartnerID = strings.TrimSpace(in.PartnerID)

	if fields := amountErrors(in); len(fields) > 0 {
		return Breakdown{}, common.ValidationError(fields...)
	}
	if err := common.ValidateStruct(v, in); err != nil {
		return Breakdown{}, err
	}
	if in.TierName == "" && in.PartnerID == "" {
		return Breakdown{}, common.ValidationError(common.FieldError{Field: "tierName", Message: "is required when partnerId is absent"})
	}

	var partnerID *uuid.UUID
	if in.PartnerID != "" {
		id, err := uuid.Parse(in.PartnerID)
		if err != nil {
			return Breakdown{}, common.ValidationError(common.FieldError{Field: "partnerId", Message: "must be a valid UUID"})
		}
		partnerID = &id
	}

	t, err := s.resolveTier(ctx, in.TierName, partnerID)
	if err != nil {
		return Breakdown{}, err
	}

	req := Request{
		SalePrice:   *in.SalePrice,
		CostPrice:   *in.CostPrice,
		Quantity:    in.Quantity,
		Category:    in.Category,
		Marketplace: in.Marketplace,
		SizeClass:   in.LogisticsSizeClass,
	}
	if in.MarketplaceCommissionPercent != nil {
		req.MarketplaceCommissionPercent = *in.MarketplaceCommissionPercent
	} else {
		pct, err := s.resolvePercent(ctx, req, partnerID)
		if err != nil {
			return Breakdown{}, err
		}
		req.MarketplaceCommissionPercent = pct
	}

	out, err := s.Calculator.Compute(req, t)
	if err != nil {
		if errors.Is(err, tier.ErrNoBracket) {
			s.Logger.Error().Err(err).Str("tier", string(t.Name)).Msg("tier brackets do not cover net profit")
			return Breakdown{}, &common.AppError{Code: common.CodeConfig, Message: "pricing tier misconfigured", HTTPStatus: http.StatusInternalServerError, Err: err}
		}
		return Breakdown{}, err
	}

	outcome := "profit"
	if out.Loss() {
		outcome = "loss"
	}
	if obs.BreakdownsTotal != nil {
		obs.BreakdownsTotal.WithLabelValues(string(t.Name), outcome).Inc()
	}
	s.Logger.Debug().
		Str("tier", string(t.Name)).
		Str("net_profit", out.NetProfit.String()).
		Str("partner_profit", out.PartnerProfit.String()).
		Msg("breakdown computed")
	return out, nil
}

// amountErrors bounds the decimal fields before the validator converts them to float64.
func amountErrors(in BreakdownInput) []common.FieldError {
	var fields []common.FieldError
	for _, f := range []struct {
		name  string
		value *decimal.Decimal
	}{
		{"salePrice", in.SalePrice},
		{"costPrice", in.CostPrice},
		{"marketplaceCommissionPercent", in.MarketplaceCommissionPercent},
	} {
		if f.value == nil {
			continue
		}
		if err := common.CheckAmount(*f.value); err != nil {
			fields = append(fields, common.DecimalFieldError(f.name, err))
		}
	}
	return fields
}

func (s *Service) resolveTier(ctx context.Context, name tier.Name, partnerID *uuid.UUID) (tier.Tier, error) {
	if name == "" {
		if s.Partners == nil {
			return tier.Tier{}, errors.New("partner lookup not configured")
		}
		p, err := s.Partners.Partner(ctx, *partnerID)
		if err != nil {
			if errors.Is(err, commission.ErrPartnerNotFound) {
				return tier.Tier{}, common.NewAppError(common.CodeNotFound, "partner not found", http.StatusNotFound, err)
			}
			return tier.Tier{}, fmt.Errorf("load partner: %w", err)
		}
		name = p.PricingTier
	}
	t, err := tier.Lookup(name)
	if err != nil {
		return tier.Tier{}, &common.AppError{Code: common.CodeConfig, Message: "partner pricing tier is not registered", HTTPStatus: http.StatusInternalServerError, Err: err}
	}
	return t, nil
}

func (s *Service) resolvePercent(ctx context.Context, req Request, partnerID *uuid.UUID) (decimal.Decimal, error) {
	if s.Rates == nil {
		return decimal.Decimal{}, errors.New("commission resolver not configured")
	}
	category := req.Category
	marketplace := req.Marketplace
	orderValue := req.SalePrice
	res, err := s.Rates.EffectiveRate(ctx, commission.Context{
		PartnerID:   partnerID,
		Category:    &category,
		Marketplace: &marketplace,
		OrderValue:  &orderValue,
	})
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("resolve marketplace commission: %w", err)
	}
	return res.Percent(), nil
}
