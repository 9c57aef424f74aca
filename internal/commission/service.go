package commission

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/fulfillment-fees/internal/obs"
)

// ErrPartnerNotFound is returned by stores when no partner has the requested id.
var ErrPartnerNotFound = errors.New("partner not found")

// Store supplies a consistent snapshot of settings and partner records.
type Store interface {
	ActiveSettings(ctx context.Context) ([]Setting, error)
	Partner(ctx context.Context, id uuid.UUID) (Partner, error)
}

// Service loads resolution inputs from the store and runs the resolver.
type Service struct {
	Store    Store
	Resolver *Resolver
	Logger   zerolog.Logger
}

// EffectiveRate resolves the commission rate for the given context. An unknown partner id
// is not an error: the partner simply does not contribute its flat rate or affiliation.
func (s *Service) EffectiveRate(ctx context.Context, c Context) (Resolution, error) {
	if s.Store == nil || s.Resolver == nil {
		return Resolution{}, errors.New("commission service not configured")
	}
	settings, err := s.Store.ActiveSettings(ctx)
	if err != nil {
		return Resolution{}, fmt.Errorf("load commission settings: %w", err)
	}

	var partner *Partner
	if c.PartnerID != nil {
		p, err := s.Store.Partner(ctx, *c.PartnerID)
		switch {
		case err == nil:
			partner = &p
			c = withAffiliation(c, p)
		case errors.Is(err, ErrPartnerNotFound):
			s.Logger.Debug().Str("partner_id", c.PartnerID.String()).Msg("partner not found for commission lookup")
		default:
			return Resolution{}, fmt.Errorf("load partner: %w", err)
		}
	}

	res := s.Resolver.Resolve(c, settings, partner)
	if obs.CommissionResolutionsTotal != nil {
		obs.CommissionResolutionsTotal.WithLabelValues(string(res.Source)).Inc()
	}
	evt := s.Logger.Debug().Str("source", string(res.Source)).Str("rate", res.Rate.String())
	if res.SettingID != nil {
		evt = evt.Str("setting_id", res.SettingID.String())
	}
	evt.Msg("commission resolved")
	return res, nil
}

func withAffiliation(c Context, p Partner) Context {
	if c.Category == nil && p.Category != nil {
		cat := *p.Category
		c.Category = &cat
	}
	if c.Marketplace == nil && p.Marketplace != nil {
		m := *p.Marketplace
		c.Marketplace = &m
	}
	return c
}
