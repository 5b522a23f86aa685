package domain

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidBaseline baseline price is not strictly positive.
	ErrInvalidBaseline = errors.New("invalid baseline price")
	// ErrMissingPrice watchlist symbol has no current price.
	ErrMissingPrice = errors.New("missing current price")
	// ErrInvalidPrice price used for evaluation or sizing is not strictly positive.
	ErrInvalidPrice = errors.New("invalid price")
	// ErrInvalidBudget budget is negative.
	ErrInvalidBudget = errors.New("invalid budget")
	// ErrInsufficientFunds budget exceeds the cash balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrOrder broker rejected or failed the order.
	ErrOrder = errors.New("order failed")
	// ErrEmptyWatchlist nothing to evaluate.
	ErrEmptyWatchlist = errors.New("empty watchlist")
)

// InvalidBaselineError baseline price of Symbol is zero or negative.
type InvalidBaselineError struct {
	Symbol string
	Price  decimal.Decimal
}

func (e *InvalidBaselineError) Error() string {
	return fmt.Sprintf("%s: %s baseline is %s", ErrInvalidBaseline, e.Symbol, e.Price.String())
}

func (e *InvalidBaselineError) Is(target error) bool { return target == ErrInvalidBaseline }

// MissingPriceError current price map has no entry for Symbol.
type MissingPriceError struct {
	Symbol string
}

func (e *MissingPriceError) Error() string {
	return fmt.Sprintf("%s for %s", ErrMissingPrice, e.Symbol)
}

func (e *MissingPriceError) Is(target error) bool { return target == ErrMissingPrice }

// InvalidPriceError current price of Symbol is zero or negative.
type InvalidPriceError struct {
	Symbol string
	Price  decimal.Decimal
}

func (e *InvalidPriceError) Error() string {
	return fmt.Sprintf("%s: %s price is %s", ErrInvalidPrice, e.Symbol, e.Price.String())
}

func (e *InvalidPriceError) Is(target error) bool { return target == ErrInvalidPrice }

// InsufficientFundsError budget is larger than the available cash.
// Always blocks order submission.
type InsufficientFundsError struct {
	Budget      decimal.Decimal
	CashBalance decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("%s: budget $%s exceeds cash balance $%s",
		ErrInsufficientFunds, e.Budget.StringFixed(2), e.CashBalance.StringFixed(2))
}

func (e *InsufficientFundsError) Is(target error) bool { return target == ErrInsufficientFunds }

// OrderError order submission for Symbol failed.
type OrderError struct {
	Symbol   string
	Quantity int64
	Err      error
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("%s: buy %d %s: %v", ErrOrder, e.Quantity, e.Symbol, e.Err)
}

func (e *OrderError) Is(target error) bool { return target == ErrOrder }

func (e *OrderError) Unwrap() error { return e.Err }
