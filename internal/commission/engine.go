// Package commission resolves the effective commission rate for a sale by walking
// partner overrides, scoped settings, the partner's flat rate and a global default.
package commission

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/fulfillment-fees/internal/catalog"
	"github.com/noah-isme/fulfillment-fees/internal/tier"
)

// DefaultRate is the configuration default and the fallback of a chain without a
// terminal strategy.
var DefaultRate = decimal.RequireFromString("0.30")

// Source names the precedence level that produced a rate.
type Source string

const (
	SourcePartnerSetting Source = "partner_setting"
	SourceScopedSetting  Source = "scoped_setting"
	SourcePartnerRate    Source = "partner_rate"
	SourceGlobalDefault  Source = "global_default"
)

// Setting is a candidate commission override. Rate is a fraction (0.15 == 15%).
type Setting struct {
	ID            uuid.UUID            `json:"id"`
	PartnerID     *uuid.UUID           `json:"partnerId,omitempty"`
	Category      *catalog.Category    `json:"category,omitempty"`
	Marketplace   *catalog.Marketplace `json:"marketplace,omitempty"`
	Rate          decimal.Decimal      `json:"rate"`
	MinOrderValue *decimal.Decimal     `json:"minOrderValue,omitempty"`
	MaxOrderValue *decimal.Decimal     `json:"maxOrderValue,omitempty"`
	Active        bool                 `json:"active"`
	ValidFrom     *time.Time           `json:"validFrom,omitempty"`
	ValidTo       *time.Time           `json:"validTo,omitempty"`
	CreatedAt     time.Time            `json:"createdAt"`
}

// LiveAt reports whether the setting is active and inside its validity window.
func (s Setting) LiveAt(now time.Time) bool {
	if !s.Active {
		return false
	}
	if s.ValidFrom != nil && now.Before(*s.ValidFrom) {
		return false
	}
	if s.ValidTo != nil && now.After(*s.ValidTo) {
		return false
	}
	return true
}

// HasWindow reports whether the setting restricts the order value.
func (s Setting) HasWindow() bool {
	return s.MinOrderValue != nil || s.MaxOrderValue != nil
}

// Admits reports whether the inclusive order-value window contains v.
// Windowed settings never admit an unknown order value.
func (s Setting) Admits(v *decimal.Decimal) bool {
	if !s.HasWindow() {
		return true
	}
	if v == nil {
		return false
	}
	if s.MinOrderValue != nil && v.LessThan(*s.MinOrderValue) {
		return false
	}
	if s.MaxOrderValue != nil && v.GreaterThan(*s.MaxOrderValue) {
		return false
	}
	return true
}

// Partner carries the partner attributes the resolver and calculator consume.
type Partner struct {
	ID             uuid.UUID            `json:"id"`
	Name           string               `json:"name"`
	PricingTier    tier.Name            `json:"pricingTier"`
	CommissionRate *decimal.Decimal     `json:"commissionRate,omitempty"`
	Category       *catalog.Category    `json:"category,omitempty"`
	Marketplace    *catalog.Marketplace `json:"marketplace,omitempty"`
}

// Context narrows a resolution. Every field is optional.
type Context struct {
	PartnerID   *uuid.UUID
	Category    *catalog.Category
	Marketplace *catalog.Marketplace
	OrderValue  *decimal.Decimal
}

// Input is the snapshot a single resolution runs over.
type Input struct {
	Context  Context
	Settings []Setting
	Partner  *Partner
	Now      time.Time
}

// Resolution is the effective rate and where it came from.
type Resolution struct {
	Rate      decimal.Decimal `json:"rate"`
	Source    Source          `json:"source"`
	SettingID *uuid.UUID      `json:"settingId,omitempty"`
}

// Percent converts the fractional rate into a whole percentage.
func (r Resolution) Percent() decimal.Decimal {
	return r.Rate.Mul(decimal.NewFromInt(100))
}

// Strategy proposes a rate for one precedence level. Resolve leaves Source unset;
// the Resolver stamps it from Source().
type Strategy interface {
	Source() Source
	Resolve(in Input) (Resolution, bool)
}

// ErrInvalidDefaultRate rejects a global default outside (0, 1].
var ErrInvalidDefaultRate = errors.New("commission: default rate must be a fraction in (0, 1]")

// Resolver evaluates strategies in order; the first match wins.
type Resolver struct {
	Strategies []Strategy
	Now        func() time.Time
}

// NewResolver builds the standard precedence chain ending at defaultRate.
func NewResolver(defaultRate decimal.Decimal) (*Resolver, error) {
	if !defaultRate.IsPositive() || defaultRate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidDefaultRate, defaultRate)
	}
	return &Resolver{
		Strategies: []Strategy{
			PartnerSettingStrategy{},
			ScopedSettingStrategy{},
			PartnerRateStrategy{},
			GlobalDefaultStrategy{Rate: defaultRate},
		},
		Now: time.Now,
	}, nil
}

// Resolve returns the effective rate for the provided snapshot, tagged with the
// source of the strategy that matched. A chain without a terminal strategy falls
// back to the package DefaultRate.
func (r *Resolver) Resolve(ctx Context, settings []Setting, partner *Partner) Resolution {
	now := time.Now()
	if r.Now != nil {
		now = r.Now()
	}
	in := Input{Context: ctx, Settings: settings, Partner: partner, Now: now}
	for _, s := range r.Strategies {
		if res, ok := s.Resolve(in); ok {
			res.Source = s.Source()
			return res
		}
	}
	return Resolution{Rate: DefaultRate, Source: SourceGlobalDefault}
}

// PartnerSettingStrategy matches live settings addressed to the context's partner.
type PartnerSettingStrategy struct{}

// Source implements Strategy.
func (PartnerSettingStrategy) Source() Source { return SourcePartnerSetting }

// Resolve implements Strategy.
func (PartnerSettingStrategy) Resolve(in Input) (Resolution, bool) {
	if in.Context.PartnerID == nil {
		return Resolution{}, false
	}
	var best *Setting
	for i := range in.Settings {
		s := &in.Settings[i]
		if s.PartnerID == nil || *s.PartnerID != *in.Context.PartnerID {
			continue
		}
		if !s.LiveAt(in.Now) || !s.Admits(in.Context.OrderValue) {
			continue
		}
		if best == nil || s.CreatedAt.After(best.CreatedAt) {
			best = s
		}
	}
	if best == nil {
		return Resolution{}, false
	}
	return fromSetting(*best), true
}

// ScopedSettingStrategy ranks live non-partner settings by category/marketplace specificity.
type ScopedSettingStrategy struct{}

// Source implements Strategy.
func (ScopedSettingStrategy) Source() Source { return SourceScopedSetting }

// Resolve implements Strategy.
func (ScopedSettingStrategy) Resolve(in Input) (Resolution, bool) {
	type candidate struct {
		setting Setting
		score   int
	}
	candidates := make([]candidate, 0, len(in.Settings))
	for _, s := range in.Settings {
		if s.PartnerID != nil || !s.LiveAt(in.Now) {
			continue
		}
		score, ok := Specificity(s, in.Context)
		if !ok {
			continue
		}
		candidates = append(candidates, candidate{setting: s, score: score})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].setting.CreatedAt.After(candidates[j].setting.CreatedAt)
	})
	for _, c := range candidates {
		if c.setting.Admits(in.Context.OrderValue) {
			return fromSetting(c.setting), true
		}
	}
	return Resolution{}, false
}

// Specificity scores how many scoping attributes of s match ctx. A setting scoped to a
// category or marketplace the context does not carry is not applicable.
func Specificity(s Setting, ctx Context) (int, bool) {
	score := 0
	if s.Category != nil {
		if ctx.Category == nil || *ctx.Category != *s.Category {
			return 0, false
		}
		score++
	}
	if s.Marketplace != nil {
		if ctx.Marketplace == nil || *ctx.Marketplace != *s.Marketplace {
			return 0, false
		}
		score++
	}
	return score, true
}

// PartnerRateStrategy falls back to the identified partner's flat commission rate.
type PartnerRateStrategy struct{}

// Source implements Strategy.
func (PartnerRateStrategy) Source() Source { return SourcePartnerRate }

// Resolve implements Strategy.
func (PartnerRateStrategy) Resolve(in Input) (Resolution, bool) {
	if in.Partner == nil || in.Partner.CommissionRate == nil {
		return Resolution{}, false
	}
	return Resolution{Rate: *in.Partner.CommissionRate}, true
}

// GlobalDefaultStrategy always matches with the configured rate.
type GlobalDefaultStrategy struct {
	Rate decimal.Decimal
}

// Source implements Strategy.
func (GlobalDefaultStrategy) Source() Source { return SourceGlobalDefault }

// Resolve implements Strategy.
func (g GlobalDefaultStrategy) Resolve(Input) (Resolution, bool) {
	return Resolution{Rate: g.Rate}, true
}

func fromSetting(s Setting) Resolution {
	id := s.ID
	return Resolution{Rate: s.Rate, SettingID: &id}
}
