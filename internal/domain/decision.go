package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// TradeDecision sizing outcome for the worst performer.
type TradeDecision struct {
	// Symbol worst performing equity.
	Symbol string
	// Price current price used for sizing.
	Price decimal.Decimal
	// AffordableShares whole shares purchasable within Budget, never negative.
	AffordableShares int64
	// Budget maximum amount the operator allows for this run.
	Budget decimal.Decimal
	// CashBalance cash available in the account at run time.
	CashBalance decimal.Decimal
}

// Cost returns the amount the affordable shares would cost at Price.
func (d TradeDecision) Cost() decimal.Decimal {
	return d.Price.Mul(decimal.NewFromInt(d.AffordableShares))
}

// Tradable reports whether the decision results in a non-empty order.
func (d TradeDecision) Tradable() bool {
	return d.AffordableShares > 0
}

// String returns a human-readable string representation.
func (d TradeDecision) String() string {
	return fmt.Sprintf("%s shares: %d price: %s budget: %s cash: %s",
		d.Symbol, d.AffordableShares, d.Price.StringFixed(2), d.Budget.StringFixed(2), d.CashBalance.StringFixed(2))
}
