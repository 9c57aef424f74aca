package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fulfillment-fees/internal/catalog"
	"github.com/noah-isme/fulfillment-fees/internal/tier"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func starterPro(t *testing.T) tier.Tier {
	t.Helper()
	tr, err := tier.Lookup(tier.StarterPro)
	require.NoError(t, err)
	return tr
}

func requireAmount(t *testing.T, want int64, got decimal.Decimal, field string) {
	t.Helper()
	require.Truef(t, got.Equal(d(want)), "%s: want %d got %s", field, want, got)
}

func TestComputeRoundTrip(t *testing.T) {
	calc := NewCalculator(DefaultServiceCostPerUnit, DefaultTaxRate)
	out, err := calc.Compute(Request{
		SalePrice:                    d(20_000_000),
		CostPrice:                    d(12_000_000),
		Quantity:                     1,
		Category:                     catalog.CategoryElectronics,
		Marketplace:                  catalog.MarketplaceUzum,
		SizeClass:                    SizeOGT,
		MarketplaceCommissionPercent: d(3),
	}, starterPro(t))
	require.NoError(t, err)

	requireAmount(t, 20_000_000, out.GrossRevenue, "grossRevenue")
	requireAmount(t, 600_000, out.MarketplaceCommission, "marketplaceCommission")
	requireAmount(t, 6_000, out.LogisticsFee, "logisticsFee")
	requireAmount(t, 2_000, out.ServiceCost, "serviceCost")
	requireAmount(t, 600_000, out.Tax, "tax")
	requireAmount(t, 13_208_000, out.TotalCosts, "totalCosts")
	requireAmount(t, 6_792_000, out.NetProfit, "netProfit")
	requireAmount(t, 45, out.FulfillmentRate, "fulfillmentRate")
	requireAmount(t, 3_056_400, out.FulfillmentCommission, "fulfillmentCommission")
	requireAmount(t, 0, out.FixedPayment, "fixedPayment")
	requireAmount(t, 3_056_400, out.TotalFulfillmentFee, "totalFulfillmentFee")
	requireAmount(t, 3_735_600, out.PartnerProfit, "partnerProfit")
	require.True(t, out.ProfitPercentage.Equal(decimal.RequireFromString("18.68")), out.ProfitPercentage.String())
	require.Equal(t, tier.StarterPro, out.Tier)
	require.False(t, out.Loss())
}

func TestComputeLossSkipsTierFee(t *testing.T) {
	calc := NewCalculator(DefaultServiceCostPerUnit, DefaultTaxRate)
	for _, tr := range tier.All() {
		out, err := calc.Compute(Request{
			SalePrice:                    d(1_000_000),
			CostPrice:                    d(2_000_000),
			Quantity:                     1,
			SizeClass:                    SizeKGT,
			MarketplaceCommissionPercent: d(5),
		}, tr)
		require.NoError(t, err)
		require.True(t, out.NetProfit.IsNegative())
		require.True(t, out.FulfillmentCommission.IsZero())
		require.True(t, out.PartnerProfit.Equal(out.NetProfit.Sub(tr.FixedPayment.Effective())), tr.Name)
		require.True(t, out.Loss())
	}
}

func TestComputeFixedPaymentReducesPartnerProfit(t *testing.T) {
	tr, err := tier.Lookup(tier.BusinessStandard)
	require.NoError(t, err)

	out, err := NewCalculator(DefaultServiceCostPerUnit, DefaultTaxRate).Compute(Request{
		SalePrice:                    d(20_000_000),
		CostPrice:                    d(12_000_000),
		Quantity:                     1,
		SizeClass:                    SizeOGT,
		MarketplaceCommissionPercent: d(3),
	}, tr)
	require.NoError(t, err)
	requireAmount(t, 35, out.FulfillmentRate, "fulfillmentRate")
	requireAmount(t, 2_377_200, out.FulfillmentCommission, "fulfillmentCommission")
	requireAmount(t, 5_377_200, out.TotalFulfillmentFee, "totalFulfillmentFee")
	requireAmount(t, 1_414_800, out.PartnerProfit, "partnerProfit")
}

func TestComputeScalesPerUnitCostsByQuantity(t *testing.T) {
	out, err := NewCalculator(DefaultServiceCostPerUnit, DefaultTaxRate).Compute(Request{
		SalePrice:                    d(5_000_000),
		CostPrice:                    d(1_000_000),
		Quantity:                     4,
		SizeClass:                    SizeYGTLarge,
		MarketplaceCommissionPercent: d(10),
	}, starterPro(t))
	require.NoError(t, err)
	requireAmount(t, 140_000, out.LogisticsFee, "logisticsFee")
	requireAmount(t, 8_000, out.ServiceCost, "serviceCost")
}

func TestComputeZeroSalePrice(t *testing.T) {
	out, err := NewCalculator(DefaultServiceCostPerUnit, DefaultTaxRate).Compute(Request{
		Quantity:  1,
		SizeClass: SizeKGT,
	}, starterPro(t))
	require.NoError(t, err)
	require.True(t, out.ProfitPercentage.IsZero())
	requireAmount(t, -6_000, out.NetProfit, "netProfit")
}

func TestComputeMalformedTier(t *testing.T) {
	broken := tier.Tier{Name: "broken"}
	_, err := NewCalculator(DefaultServiceCostPerUnit, DefaultTaxRate).Compute(Request{
		SalePrice: d(10_000_000),
		Quantity:  1,
		SizeClass: SizeKGT,
	}, broken)
	require.ErrorIs(t, err, tier.ErrNoBracket)
}

func TestNewCalculatorSubstitutesDefaults(t *testing.T) {
	c := NewCalculator(d(-1), d(-1))
	require.True(t, c.ServiceCostPerUnit.Equal(DefaultServiceCostPerUnit))
	require.True(t, c.TaxRate.Equal(DefaultTaxRate))
}

func TestPerUnitFee(t *testing.T) {
	want := map[SizeClass]int64{SizeKGT: 4_000, SizeOGT: 6_000, SizeYGTMiddle: 20_000, SizeYGTLarge: 35_000}
	for _, sc := range SizeClasses() {
		fee, err := sc.PerUnitFee()
		require.NoError(t, err)
		requireAmount(t, want[sc], fee, string(sc))
	}
	_, err := SizeClass("huge").PerUnitFee()
	require.ErrorIs(t, err, ErrUnknownSizeClass)
}
