package pricer

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/buylow/internal/domain"
)

// Pricer market data needed to pick and size the worst performer.
type Pricer interface {
	GetBaselinePrice(ctx context.Context, session domain.Session, symbol string) (decimal.Decimal, error)
	GetCurrentPrices(ctx context.Context, session domain.Session, symbols []string) (map[string]decimal.Decimal, error)
	GetCashBalance(ctx context.Context, session domain.Session) (decimal.Decimal, error)
}

var _ Pricer = (*SchwabPricer)(nil)
