package pricing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrUnknownSizeClass is returned for logistics size classes outside the fee table.
var ErrUnknownSizeClass = errors.New("unknown logistics size class")

// SizeClass is the marketplace warehouse dimension class of a parcel.
type SizeClass string

const (
	SizeKGT       SizeClass = "kgt"
	SizeOGT       SizeClass = "ogt"
	SizeYGTMiddle SizeClass = "ygt_middle"
	SizeYGTLarge  SizeClass = "ygt_large"
)

// SizeClasses lists the supported size classes from smallest to largest.
func SizeClasses() []SizeClass {
	return []SizeClass{SizeKGT, SizeOGT, SizeYGTMiddle, SizeYGTLarge}
}

// PerUnitFee returns the logistics fee charged per unit shipped.
func (s SizeClass) PerUnitFee() (decimal.Decimal, error) {
	switch s {
	case SizeKGT:
		return decimal.NewFromInt(4_000), nil
	case SizeOGT:
		return decimal.NewFromInt(6_000), nil
	case SizeYGTMiddle:
		return decimal.NewFromInt(20_000), nil
	case SizeYGTLarge:
		return decimal.NewFromInt(35_000), nil
	}
	return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrUnknownSizeClass, string(s))
}

// Valid reports whether s is in the fee table.
func (s SizeClass) Valid() bool {
	_, err := s.PerUnitFee()
	return err == nil
}

// ParseSizeClass normalises raw input into a SizeClass.
func ParseSizeClass(raw string) (SizeClass, error) {
	s := SizeClass(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownSizeClass, raw)
	}
	return s, nil
}
