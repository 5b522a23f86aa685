package sizer

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/buylow/internal/domain"
)

func TestWholeShares(t *testing.T) {
	tests := []struct {
		name     string
		budget   string
		price    string
		expected int64
	}{
		{name: "exact multiple", budget: "500", price: "100", expected: 5},
		{name: "rounds down", budget: "500", price: "90", expected: 5},
		{name: "just below next share", budget: "179.99", price: "90", expected: 1},
		{name: "fractional price", budget: "1000", price: "33.33", expected: 30},
		{name: "budget below price", budget: "50", price: "90", expected: 0},
		{name: "zero budget", budget: "0", price: "90", expected: 0},
		{name: "repeating quotient", budget: "100", price: "0.3", expected: 333},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := WholeShares(decimal.RequireFromString(tt.budget), decimal.RequireFromString(tt.price))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, shares)
			assert.GreaterOrEqual(t, shares, int64(0))
		})
	}
}

func TestWholeShares_InvalidPrice(t *testing.T) {
	for _, p := range []string{"0", "-1.5"} {
		_, err := WholeShares(decimal.NewFromInt(500), decimal.RequireFromString(p))
		assert.True(t, errors.Is(err, domain.ErrInvalidPrice), p)
	}
}

func TestWholeShares_NegativeBudget(t *testing.T) {
	_, err := WholeShares(decimal.NewFromInt(-1), decimal.NewFromInt(10))
	assert.True(t, errors.Is(err, domain.ErrInvalidBudget))
}

func TestSize_GatePasses(t *testing.T) {
	decision, err := Size("AAA", decimal.NewFromInt(90), decimal.NewFromInt(500), decimal.NewFromInt(1000))
	require.NoError(t, err)

	assert.Equal(t, "AAA", decision.Symbol)
	assert.Equal(t, int64(5), decision.AffordableShares)
	assert.True(t, decision.Budget.Equal(decimal.NewFromInt(500)))
	assert.True(t, decision.CashBalance.Equal(decimal.NewFromInt(1000)))
	assert.True(t, decision.Cost().Equal(decimal.NewFromInt(450)))
	assert.True(t, decision.Tradable())
}

func TestSize_BudgetEqualToCash(t *testing.T) {
	decision, err := Size("AAA", decimal.NewFromInt(90), decimal.NewFromInt(1000), decimal.NewFromInt(1000))
	require.NoError(t, err)
	assert.Equal(t, int64(11), decision.AffordableShares)
}

func TestSize_ZeroSharesIsNotAnError(t *testing.T) {
	decision, err := Size("BRK.A", decimal.NewFromInt(600000), decimal.NewFromInt(500), decimal.NewFromInt(1000))
	require.NoError(t, err)
	assert.Equal(t, int64(0), decision.AffordableShares)
	assert.False(t, decision.Tradable())
}

func TestSize_InsufficientFunds(t *testing.T) {
	decision, err := Size("AAA", decimal.NewFromInt(90), decimal.NewFromInt(2000), decimal.NewFromInt(1000))
	require.Error(t, err)

	var insufficient *domain.InsufficientFundsError
	require.True(t, errors.As(err, &insufficient))
	assert.True(t, insufficient.Budget.Equal(decimal.NewFromInt(2000)))
	assert.True(t, insufficient.CashBalance.Equal(decimal.NewFromInt(1000)))
	assert.True(t, errors.Is(err, domain.ErrInsufficientFunds))

	// the decision is still reported
	assert.Equal(t, int64(22), decision.AffordableShares)
}

func TestSize_InvalidPriceCarriesSymbol(t *testing.T) {
	_, err := Size("AAA", decimal.Zero, decimal.NewFromInt(500), decimal.NewFromInt(1000))

	var invalid *domain.InvalidPriceError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "AAA", invalid.Symbol)
}

func TestWholeShares_Overflow(t *testing.T) {
	shares, err := WholeShares(decimal.RequireFromString("1e30"), decimal.RequireFromString("0.01"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidBudget))
	assert.Zero(t, shares)

	_, err = Size("QQQ", decimal.RequireFromString("0.01"), decimal.RequireFromString("1e30"), decimal.RequireFromString("1e31"))
	assert.True(t, errors.Is(err, domain.ErrInvalidBudget))
}

func TestWholeShares_MaxInt64(t *testing.T) {
	shares, err := WholeShares(decimal.NewFromInt(math.MaxInt64), decimal.NewFromInt(1))
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), shares)
}
