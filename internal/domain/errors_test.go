package domain

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestErrorsMatchSentinels(t *testing.T) {
	cases := []struct {
		err      error
		sentinel error
	}{
		{&InvalidBaselineError{Symbol: "A"}, ErrInvalidBaseline},
		{&MissingPriceError{Symbol: "A"}, ErrMissingPrice},
		{&InvalidPriceError{Symbol: "A"}, ErrInvalidPrice},
		{&InsufficientFundsError{Budget: decimal.NewFromInt(2), CashBalance: decimal.NewFromInt(1)}, ErrInsufficientFunds},
		{&OrderError{Symbol: "A", Quantity: 1, Err: fmt.Errorf("rejected")}, ErrOrder},
	}

	for _, tc := range cases {
		t.Run(tc.sentinel.Error(), func(t *testing.T) {
			wrapped := errors.Wrap(tc.err, "run")
			assert.ErrorIs(t, wrapped, tc.sentinel)
			assert.NotErrorIs(t, wrapped, ErrEmptyWatchlist)
		})
	}
}

func TestOrderErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("broker down")
	err := &OrderError{Symbol: "QQQ", Quantity: 3, Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "buy 3 QQQ")
}

func TestInsufficientFundsMessage(t *testing.T) {
	err := &InsufficientFundsError{Budget: decimal.NewFromInt(2000), CashBalance: decimal.NewFromInt(1000)}
	assert.Equal(t, "insufficient funds: budget $2000.00 exceeds cash balance $1000.00", err.Error())
}
