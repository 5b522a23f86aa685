package report

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/vadiminshakov/buylow/internal/domain"
)

func TestDollars(t *testing.T) {
	assert.Equal(t, "$90.00", Dollars(decimal.NewFromInt(90)))
	assert.Equal(t, "$1,000.25", Dollars(decimal.RequireFromString("1000.25")))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "-10.00%", Percent(decimal.NewFromInt(-10)))
	assert.Equal(t, "3.33%", Percent(decimal.RequireFromString("3.3333")))
}

func TestPrinter_Performance(t *testing.T) {
	records := []domain.PerformanceRecord{
		{Symbol: "AAA", BaselinePrice: decimal.NewFromInt(100), CurrentPrice: decimal.NewFromInt(90), PercentChange: decimal.NewFromInt(-10)},
		{Symbol: "BBB", BaselinePrice: decimal.NewFromInt(50), CurrentPrice: decimal.NewFromInt(55), PercentChange: decimal.NewFromInt(10)},
	}

	var buf bytes.Buffer
	NewPrinter(&buf).Performance(records, records[0])
	out := buf.String()

	for _, s := range []string{"Equity", "Starting Price", "Ending Price", "Percent Change",
		"AAA", "$100.00", "$90.00", "-10.00%", "BBB", "$55.00", "10.00%"} {
		assert.Contains(t, out, s)
	}
	assert.Contains(t, out, "Worst performing equity: AAA")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("AAA")), bytes.Index(buf.Bytes(), []byte("BBB")))
}

func TestPrinter_DecisionAndDryRun(t *testing.T) {
	d := domain.TradeDecision{
		Symbol:           "AAA",
		Price:            decimal.NewFromInt(90),
		AffordableShares: 5,
		Budget:           decimal.NewFromInt(500),
		CashBalance:      decimal.NewFromInt(1000),
	}

	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.Decision(d)
	p.CashBalance(d.CashBalance)
	p.DryRun(d)
	p.Done()

	out := buf.String()
	assert.Contains(t, out, "Maximum amount to spend: $500.00")
	assert.Contains(t, out, "Maximum whole shares of AAA to purchase: 5")
	assert.Contains(t, out, "Current cash balance: $1,000.00")
	assert.Contains(t, out, "otherwise 5 shares of AAA would be purchased")
	assert.Contains(t, out, "--live")
	assert.Contains(t, out, "Done!")
}

func TestPrinter_InsufficientFunds(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).InsufficientFunds(&domain.InsufficientFundsError{
		Budget:      decimal.NewFromInt(2000),
		CashBalance: decimal.NewFromInt(1000),
	})
	assert.Contains(t, buf.String(), "Insufficient cash balance ($1,000.00)")
}

func TestPrinter_OrderPlaced(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).OrderPlaced(domain.OrderConfirmation{ID: "1002", Symbol: "AAA", Quantity: 5})
	assert.Contains(t, buf.String(), "buy 5 AAA (order 1002)")
}

func TestPrinter_OrderHistory(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.OrderHistory(nil)
	assert.Contains(t, buf.String(), "No orders recorded.")

	buf.Reset()
	p.OrderHistory([]domain.OrderRecord{
		domain.NewBuyOrderRecord("r1", domain.OrderConfirmation{ID: "1002", Symbol: "AAA", Quantity: 5}),
		domain.NewBuyOrderRecord("r2", domain.OrderConfirmation{ID: "1003", Symbol: "BBB", Quantity: 2}),
	})
	out := buf.String()
	for _, s := range []string{"Equity", "Shares", "AAA", "1002", "BBB", "1003", "BUY"} {
		assert.Contains(t, out, s)
	}
}
