// Package pricing computes the partner profit breakdown of a sale after marketplace
// commission, logistics, service cost, tax and the tiered fulfillment fee.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/fulfillment-fees/internal/catalog"
	"github.com/noah-isme/fulfillment-fees/internal/tier"
)

var (
	// DefaultServiceCostPerUnit is the flat operational cost per item.
	DefaultServiceCostPerUnit = decimal.NewFromInt(2_000)
	// DefaultTaxRate is the tax charged on the sale price, as a fraction.
	DefaultTaxRate = decimal.RequireFromString("0.03")

	hundred = decimal.NewFromInt(100)
)

// Request is a validated calculation input. MarketplaceCommissionPercent is a whole percentage.
type Request struct {
	SalePrice                    decimal.Decimal
	CostPrice                    decimal.Decimal
	Quantity                     int
	Category                     catalog.Category
	Marketplace                  catalog.Marketplace
	SizeClass                    SizeClass
	MarketplaceCommissionPercent decimal.Decimal
}

// Breakdown lists every intermediate value of the cost chain.
type Breakdown struct {
	SalePrice                    decimal.Decimal     `json:"salePrice"`
	CostPrice                    decimal.Decimal     `json:"costPrice"`
	Quantity                     int                 `json:"quantity"`
	Category                     catalog.Category    `json:"category"`
	Marketplace                  catalog.Marketplace `json:"marketplace"`
	LogisticsSizeClass           SizeClass           `json:"logisticsSizeClass"`
	GrossRevenue                 decimal.Decimal     `json:"grossRevenue"`
	MarketplaceCommissionPercent decimal.Decimal     `json:"marketplaceCommissionPercent"`
	MarketplaceCommission        decimal.Decimal     `json:"marketplaceCommission"`
	LogisticsFee                 decimal.Decimal     `json:"logisticsFee"`
	ServiceCost                  decimal.Decimal     `json:"serviceCost"`
	TaxRate                      decimal.Decimal     `json:"taxRate"`
	Tax                          decimal.Decimal     `json:"tax"`
	TotalCosts                   decimal.Decimal     `json:"totalCosts"`
	NetProfit                    decimal.Decimal     `json:"netProfit"`
	Tier                         tier.Name           `json:"tier"`
	FulfillmentRate              decimal.Decimal     `json:"fulfillmentRate"`
	FulfillmentCommission        decimal.Decimal     `json:"fulfillmentCommission"`
	FixedPayment                 decimal.Decimal     `json:"fixedPayment"`
	FixedPaymentNegotiated       bool                `json:"fixedPaymentNegotiated"`
	TotalFulfillmentFee          decimal.Decimal     `json:"totalFulfillmentFee"`
	PartnerProfit                decimal.Decimal     `json:"partnerProfit"`
	ProfitPercentage             decimal.Decimal     `json:"profitPercentage"`
}

// Loss reports whether the partner loses money on the order.
func (b Breakdown) Loss() bool {
	return b.PartnerProfit.IsNegative()
}

// Calculator holds the per-unit service cost and tax rate applied to every order.
type Calculator struct {
	ServiceCostPerUnit decimal.Decimal
	TaxRate            decimal.Decimal
}

// NewCalculator returns a Calculator, substituting defaults for negative inputs.
func NewCalculator(serviceCostPerUnit, taxRate decimal.Decimal) Calculator {
	if serviceCostPerUnit.IsNegative() {
		serviceCostPerUnit = DefaultServiceCostPerUnit
	}
	if taxRate.IsNegative() {
		taxRate = DefaultTaxRate
	}
	return Calculator{ServiceCostPerUnit: serviceCostPerUnit, TaxRate: taxRate}
}

// Compute runs the cost chain in a single forward pass. Losses are valid results; the
// only error is a tier whose brackets do not cover the net profit.
func (c Calculator) Compute(req Request, t tier.Tier) (Breakdown, error) {
	perUnitLogistics, err := req.SizeClass.PerUnitFee()
	if err != nil {
		return Breakdown{}, err
	}
	qty := decimal.NewFromInt(int64(req.Quantity))

	marketplaceCommission := req.SalePrice.Mul(req.MarketplaceCommissionPercent).Div(hundred)
	logisticsFee := perUnitLogistics.Mul(qty)
	serviceCost := c.ServiceCostPerUnit.Mul(qty)
	tax := req.SalePrice.Mul(c.TaxRate)
	netProfit := req.SalePrice.
		Sub(req.CostPrice).
		Sub(serviceCost).
		Sub(marketplaceCommission).
		Sub(logisticsFee).
		Sub(tax)

	fee, err := tier.ComputeFee(netProfit, t)
	if err != nil {
		return Breakdown{}, fmt.Errorf("fulfillment fee: %w", err)
	}
	fixed := t.FixedPayment.Effective()
	totalFee := fixed.Add(fee.Amount)
	partnerProfit := netProfit.Sub(totalFee)

	profitPct := decimal.Zero
	if req.SalePrice.IsPositive() {
		profitPct = partnerProfit.Div(req.SalePrice).Mul(hundred).Round(2)
	}

	return Breakdown{
		SalePrice:                    req.SalePrice,
		CostPrice:                    req.CostPrice,
		Quantity:                     req.Quantity,
		Category:                     req.Category,
		Marketplace:                  req.Marketplace,
		LogisticsSizeClass:           req.SizeClass,
		GrossRevenue:                 req.SalePrice,
		MarketplaceCommissionPercent: req.MarketplaceCommissionPercent,
		MarketplaceCommission:        marketplaceCommission,
		LogisticsFee:                 logisticsFee,
		ServiceCost:                  serviceCost,
		TaxRate:                      c.TaxRate,
		Tax:                          tax,
		TotalCosts:                   req.CostPrice.Add(serviceCost).Add(marketplaceCommission).Add(logisticsFee).Add(tax),
		NetProfit:                    netProfit,
		Tier:                         t.Name,
		FulfillmentRate:              fee.Rate,
		FulfillmentCommission:        fee.Amount,
		FixedPayment:                 fixed,
		FixedPaymentNegotiated:       t.FixedPayment.Negotiated,
		TotalFulfillmentFee:          totalFee,
		PartnerProfit:                partnerProfit,
		ProfitPercentage:             profitPct,
	}, nil
}
