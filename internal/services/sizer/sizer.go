// Package sizer converts a cash budget into a whole-share buy decision.
package sizer

import (
	"math"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/buylow/internal/domain"
)

var maxShares = decimal.NewFromInt(math.MaxInt64)

// WholeShares returns floor(budget / price).
func WholeShares(budget, price decimal.Decimal) (int64, error) {
	if !price.IsPositive() {
		return 0, &domain.InvalidPriceError{Price: price}
	}
	if budget.IsNegative() {
		return 0, errors.Wrapf(domain.ErrInvalidBudget, "budget %s is negative", budget.String())
	}

	// QuoRem truncates at precision 0, which is floor for non-negative operands.
	shares, _ := budget.QuoRem(price, 0)
	if shares.GreaterThan(maxShares) {
		return 0, errors.Wrapf(domain.ErrInvalidBudget, "budget %s buys more than %d shares at %s",
			budget.String(), int64(math.MaxInt64), price.String())
	}
	return shares.IntPart(), nil
}

// Size builds the trade decision for symbol and checks it against the cash balance.
//
// When the budget exceeds the cash balance the decision is returned together with an
// *domain.InsufficientFundsError so the caller can report what would have been bought.
// No order must be placed in that case.
func Size(symbol string, price, budget, cash decimal.Decimal) (domain.TradeDecision, error) {
	shares, err := WholeShares(budget, price)
	if err != nil {
		var invalid *domain.InvalidPriceError
		if errors.As(err, &invalid) {
			invalid.Symbol = symbol
		}
		return domain.TradeDecision{}, err
	}

	decision := domain.TradeDecision{
		Symbol:           symbol,
		Price:            price,
		AffordableShares: shares,
		Budget:           budget,
		CashBalance:      cash,
	}

	if budget.GreaterThan(cash) {
		return decision, &domain.InsufficientFundsError{Budget: budget, CashBalance: cash}
	}

	return decision, nil
}
