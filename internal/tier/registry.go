// Package tier defines the fulfillment pricing tiers and the progressive
// bracket fee charged against a partner's net profit.
package tier

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrUnknownTier is returned when a tier name is outside the registry.
	ErrUnknownTier = errors.New("unknown pricing tier")
	// ErrMalformedTier indicates bracket definitions that do not cover [0, ∞) exactly once.
	ErrMalformedTier = errors.New("malformed pricing tier")
)

// Name identifies a registered pricing tier.
type Name string

const (
	StarterPro       Name = "starter_pro"
	BusinessStandard Name = "business_standard"
	ProfessionalPlus Name = "professional_plus"
	EnterpriseElite  Name = "enterprise_elite"
)

// Names lists the registered tiers from entry level to top.
func Names() []Name {
	return []Name{StarterPro, BusinessStandard, ProfessionalPlus, EnterpriseElite}
}

// Valid reports whether n is a registered tier.
func (n Name) Valid() bool {
	_, err := Lookup(n)
	return err == nil
}

// ParseName normalises raw input into a tier Name.
func ParseName(raw string) (Name, error) {
	n := Name(strings.ToLower(strings.TrimSpace(raw)))
	if !n.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownTier, raw)
	}
	return n, nil
}

// Bracket charges Rate percent of net profit in [Min, Max). An invalid Max is unbounded.
type Bracket struct {
	Min  decimal.Decimal     `json:"min"`
	Max  decimal.NullDecimal `json:"max"`
	Rate decimal.Decimal     `json:"rate"`
}

// Contains reports whether v falls inside the half-open bracket interval.
func (b Bracket) Contains(v decimal.Decimal) bool {
	if v.LessThan(b.Min) {
		return false
	}
	return !b.Max.Valid || v.LessThan(b.Max.Decimal)
}

// FixedPayment is the flat per-period charge of a tier. Negotiated tiers carry no amount.
type FixedPayment struct {
	Amount     decimal.Decimal `json:"amount"`
	Negotiated bool            `json:"negotiated"`
}

// Effective returns the amount to charge, zero when negotiated.
func (f FixedPayment) Effective() decimal.Decimal {
	if f.Negotiated {
		return decimal.Zero
	}
	return f.Amount
}

// Tier is an immutable pricing tier definition.
type Tier struct {
	Name         Name         `json:"name"`
	FixedPayment FixedPayment `json:"fixedPayment"`
	Brackets     []Bracket    `json:"brackets"`
}

// Validate checks that brackets start at zero, chain without gaps or overlaps,
// end unbounded and carry rates within [0, 100].
func (t Tier) Validate() error {
	if len(t.Brackets) == 0 {
		return fmt.Errorf("%w: %s has no brackets", ErrMalformedTier, t.Name)
	}
	if t.FixedPayment.Amount.IsNegative() {
		return fmt.Errorf("%w: %s has a negative fixed payment", ErrMalformedTier, t.Name)
	}
	lower := decimal.Zero
	for i, b := range t.Brackets {
		if !b.Min.Equal(lower) {
			return fmt.Errorf("%w: %s bracket %d starts at %s, want %s", ErrMalformedTier, t.Name, i, b.Min, lower)
		}
		if b.Rate.IsNegative() || b.Rate.GreaterThan(hundred) {
			return fmt.Errorf("%w: %s bracket %d rate %s out of range", ErrMalformedTier, t.Name, i, b.Rate)
		}
		last := i == len(t.Brackets)-1
		if !b.Max.Valid {
			if !last {
				return fmt.Errorf("%w: %s bracket %d is unbounded but not last", ErrMalformedTier, t.Name, i)
			}
			continue
		}
		if last {
			return fmt.Errorf("%w: %s top bracket is bounded at %s", ErrMalformedTier, t.Name, b.Max.Decimal)
		}
		if !b.Max.Decimal.GreaterThan(b.Min) {
			return fmt.Errorf("%w: %s bracket %d is empty", ErrMalformedTier, t.Name, i)
		}
		lower = b.Max.Decimal
	}
	return nil
}

// Lookup returns the definition registered under n.
func Lookup(n Name) (Tier, error) {
	switch n {
	case StarterPro:
		return Tier{
			Name:         StarterPro,
			FixedPayment: FixedPayment{Amount: decimal.Zero},
			Brackets: []Bracket{
				bracket(0, 10_000_000, 45),
				bracket(10_000_000, 50_000_000, 35),
				topBracket(50_000_000, 30),
			},
		}, nil
	case BusinessStandard:
		return Tier{
			Name:         BusinessStandard,
			FixedPayment: FixedPayment{Amount: decimal.NewFromInt(3_000_000)},
			Brackets: []Bracket{
				bracket(0, 10_000_000, 35),
				bracket(10_000_000, 50_000_000, 30),
				topBracket(50_000_000, 25),
			},
		}, nil
	case ProfessionalPlus:
		return Tier{
			Name:         ProfessionalPlus,
			FixedPayment: FixedPayment{Amount: decimal.NewFromInt(5_000_000)},
			Brackets: []Bracket{
				bracket(0, 50_000_000, 25),
				bracket(50_000_000, 100_000_000, 20),
				topBracket(100_000_000, 18),
			},
		}, nil
	case EnterpriseElite:
		return Tier{
			Name:         EnterpriseElite,
			FixedPayment: FixedPayment{Negotiated: true},
			Brackets: []Bracket{
				bracket(0, 100_000_000, 20),
				topBracket(100_000_000, 15),
			},
		}, nil
	}
	return Tier{}, fmt.Errorf("%w: %q", ErrUnknownTier, string(n))
}

// All returns every registered tier in Names order.
func All() []Tier {
	out := make([]Tier, 0, len(Names()))
	for _, n := range Names() {
		t, err := Lookup(n)
		if err != nil {
			panic(err)
		}
		out = append(out, t)
	}
	return out
}

// MustValidateRegistry panics when any registered tier breaks the coverage invariant.
func MustValidateRegistry() {
	for _, t := range All() {
		if err := t.Validate(); err != nil {
			panic(err)
		}
	}
}

func bracket(lo, hi, rate int64) Bracket {
	return Bracket{
		Min:  decimal.NewFromInt(lo),
		Max:  decimal.NewNullDecimal(decimal.NewFromInt(hi)),
		Rate: decimal.NewFromInt(rate),
	}
}

func topBracket(lo, rate int64) Bracket {
	return Bracket{Min: decimal.NewFromInt(lo), Rate: decimal.NewFromInt(rate)}
}
