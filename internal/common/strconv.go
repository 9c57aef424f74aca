package common

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount bounds accepted at the API boundary. Larger exponents make decimal
// arithmetic allocate arbitrarily large integers.
const (
	MinAmountExponent = -8
	MaxAmountExponent = 15
)

var maxAmount = decimal.New(1, MaxAmountExponent)

// ErrAmountOutOfRange rejects a decimal outside the supported money range.
var ErrAmountOutOfRange = errors.New("amount out of range")

// AmountRangeMessage is the field error reported for ErrAmountOutOfRange.
const AmountRangeMessage = "must be at most 1e15 in magnitude with at most 8 decimal places"

// CheckAmount reports ErrAmountOutOfRange when d has more than 8 decimal places,
// an exponent above 15 or a magnitude above 1e15. The exponent is checked first so
// the comparison never rescales an oversized value.
func CheckAmount(d decimal.Decimal) error {
	if exp := d.Exponent(); exp < MinAmountExponent || exp > MaxAmountExponent {
		return ErrAmountOutOfRange
	}
	if d.Abs().GreaterThan(maxAmount) {
		return ErrAmountOutOfRange
	}
	return nil
}

// OptionalDecimal parses a trimmed decimal, returning nil for blank input. Values
// outside the CheckAmount range are rejected.
func OptionalDecimal(value string) (*decimal.Decimal, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return nil, err
	}
	if err := CheckAmount(d); err != nil {
		return nil, err
	}
	return &d, nil
}

// DecimalFieldError describes a parse failure of a numeric field.
func DecimalFieldError(field string, err error) FieldError {
	if errors.Is(err, ErrAmountOutOfRange) {
		return FieldError{Field: field, Message: AmountRangeMessage}
	}
	return FieldError{Field: field, Message: "must be a number"}
}
