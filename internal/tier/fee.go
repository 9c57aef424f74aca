package tier

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNoBracket signals that no bracket matched a positive profit, i.e. a malformed tier.
var ErrNoBracket = errors.New("no pricing bracket matches net profit")

var hundred = decimal.NewFromInt(100)

// Fee is the profit-dependent fulfillment commission. Rate is a whole percentage.
type Fee struct {
	Rate   decimal.Decimal `json:"rate"`
	Amount decimal.Decimal `json:"amount"`
}

// ComputeFee applies the marginal rate of the bracket containing netProfit.
// Losses and break-even orders are never charged. The tier's fixed payment is not included.
func ComputeFee(netProfit decimal.Decimal, t Tier) (Fee, error) {
	if !netProfit.IsPositive() {
		return Fee{Rate: decimal.Zero, Amount: decimal.Zero}, nil
	}
	for _, b := range t.Brackets {
		if b.Contains(netProfit) {
			return Fee{
				Rate:   b.Rate,
				Amount: netProfit.Mul(b.Rate).Div(hundred),
			}, nil
		}
	}
	return Fee{}, fmt.Errorf("%w: tier %s, profit %s", ErrNoBracket, t.Name, netProfit)
}
