package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteTiers(t *testing.T) {
	engine := NewEngine()
	spot := decimal.RequireFromString("25.00")

	cases := []struct {
		days    int
		premium string
		total   string
	}{
		{30, "2", "27"},
		{90, "3", "28"},
		{180, "3.75", "28.75"},
		{365, "5", "30"},
	}

	for _, tc := range cases {
		q, err := engine.Quote(spot, tc.days)
		require.NoError(t, err)
		assert.True(t, q.PremiumPerTon.Equal(decimal.RequireFromString(tc.premium)),
			"premium for %d days: got %s", tc.days, q.PremiumPerTon)
		assert.True(t, q.TotalPricePerTon.Equal(decimal.RequireFromString(tc.total)),
			"total for %d days: got %s", tc.days, q.TotalPricePerTon)
	}
}

func TestQuoteInvalidDuration(t *testing.T) {
	engine := NewEngine()
	spot := decimal.RequireFromString("28.50")

	for _, days := range []int{0, -30, 60, 364, 366} {
		q, err := engine.Quote(spot, days)
		assert.Nil(t, q)
		assert.ErrorIs(t, err, ErrInvalidDuration)
	}
}

func TestQuoteInvalidPrice(t *testing.T) {
	engine := NewEngine()

	for _, spot := range []string{"0", "-1", "-28.50"} {
		q, err := engine.Quote(decimal.RequireFromString(spot), 90)
		assert.Nil(t, q)
		assert.ErrorIs(t, err, ErrInvalidPrice)
	}
}

func TestQuoteAllOrdered(t *testing.T) {
	engine := NewEngine()

	quotes, err := engine.QuoteAll(decimal.RequireFromString("28.50"))
	require.NoError(t, err)
	require.Len(t, quotes, 4)

	assert.Equal(t, []int{30, 90, 180, 365},
		[]int{quotes[0].DurationDays, quotes[1].DurationDays, quotes[2].DurationDays, quotes[3].DurationDays})

	// Total price is strictly increasing with duration
	for i := 1; i < len(quotes); i++ {
		assert.True(t, quotes[i].TotalPricePerTon.GreaterThan(quotes[i-1].TotalPricePerTon))
	}
}

func TestContractPremiumScalesWithQuantity(t *testing.T) {
	engine := NewEngine()
	spot := decimal.RequireFromString("28.50")

	premium, err := engine.ContractPremium(spot, 90, decimal.NewFromInt(500))
	require.NoError(t, err)

	// 28.50 * 0.12 = 3.42 per ton; 500 tons = 1710.00
	assert.True(t, premium.Equal(decimal.RequireFromString("1710")), "got %s", premium)
}

func TestContractPremiumPropagatesErrors(t *testing.T) {
	engine := NewEngine()

	_, err := engine.ContractPremium(decimal.NewFromInt(-1), 90, decimal.NewFromInt(500))
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = engine.ContractPremium(decimal.NewFromInt(25), 45, decimal.NewFromInt(500))
	assert.ErrorIs(t, err, ErrInvalidDuration)
}
