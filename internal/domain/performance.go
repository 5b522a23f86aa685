package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// PriceSample baseline and current price of a single symbol.
type PriceSample struct {
	Symbol        string
	BaselinePrice decimal.Decimal
	CurrentPrice  decimal.Decimal
}

// PerformanceRecord price change of a symbol over the lookback window.
type PerformanceRecord struct {
	Symbol        string
	BaselinePrice decimal.Decimal
	CurrentPrice  decimal.Decimal
	// PercentChange (current - baseline) / baseline * 100.
	PercentChange decimal.Decimal
}

// NewPerformanceRecord computes the percent change of the sample.
func NewPerformanceRecord(s PriceSample) (PerformanceRecord, error) {
	if !s.BaselinePrice.IsPositive() {
		return PerformanceRecord{}, &InvalidBaselineError{Symbol: s.Symbol, Price: s.BaselinePrice}
	}
	if !s.CurrentPrice.IsPositive() {
		return PerformanceRecord{}, &InvalidPriceError{Symbol: s.Symbol, Price: s.CurrentPrice}
	}

	change := s.CurrentPrice.Sub(s.BaselinePrice).Mul(hundred).Div(s.BaselinePrice)

	return PerformanceRecord{
		Symbol:        s.Symbol,
		BaselinePrice: s.BaselinePrice,
		CurrentPrice:  s.CurrentPrice,
		PercentChange: change,
	}, nil
}

// String returns a human-readable string representation.
func (r PerformanceRecord) String() string {
	return fmt.Sprintf("%s %s -> %s (%s%%)", r.Symbol,
		r.BaselinePrice.StringFixed(2), r.CurrentPrice.StringFixed(2), r.PercentChange.StringFixed(2))
}
