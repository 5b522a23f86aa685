package internal

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vadiminshakov/buylow/internal/domain"
	"github.com/vadiminshakov/buylow/internal/report"
	"github.com/vadiminshakov/buylow/internal/services/performance"
	"github.com/vadiminshakov/buylow/internal/services/sizer"
)

const defaultFetchConcurrency = 4

// Process exit codes.
const (
	ExitOK                = 0
	ExitFatal             = 1
	ExitInsufficientFunds = 2
)

// SessionProvider authorizes the run.
type SessionProvider interface {
	Authenticate(ctx context.Context) (domain.Session, error)
}

// MarketData supplies prices and the account balance.
type MarketData interface {
	GetBaselinePrice(ctx context.Context, session domain.Session, symbol string) (decimal.Decimal, error)
	GetCurrentPrices(ctx context.Context, session domain.Session, symbols []string) (map[string]decimal.Decimal, error)
	GetCashBalance(ctx context.Context, session domain.Session) (decimal.Decimal, error)
}

// OrderSubmitter places the buy order.
type OrderSubmitter interface {
	SubmitBuyOrder(ctx context.Context, session domain.Session, symbol string, quantity int64) (domain.OrderConfirmation, error)
}

// Reporter renders run progress for the operator.
type Reporter interface {
	Performance(sorted []domain.PerformanceRecord, worst domain.PerformanceRecord)
	Decision(d domain.TradeDecision)
	CashBalance(cash decimal.Decimal)
	InsufficientFunds(e *domain.InsufficientFundsError)
	NothingToBuy(d domain.TradeDecision)
	DryRun(d domain.TradeDecision)
	OrderPlaced(c domain.OrderConfirmation)
}

// Params inputs of a single run.
type Params struct {
	Watchlist []string
	Budget    decimal.Decimal
	// Live submits the order; otherwise the run only reports the decision.
	Live bool
}

// Result outcome of a run. Fields are filled up to the stage that failed.
type Result struct {
	Performance performance.Report
	Decision    domain.TradeDecision
	// Order is set only when an order was placed.
	Order *domain.OrderConfirmation
}

// Rebalancer buys the worst performer of a watchlist once per run.
type Rebalancer struct {
	sessions    SessionProvider
	market      MarketData
	trader      OrderSubmitter
	reporter    Reporter
	logger      *zap.Logger
	concurrency int
}

// RebalancerOption configures a Rebalancer.
type RebalancerOption func(*Rebalancer)

// WithReporter sets where progress is rendered.
func WithReporter(r Reporter) RebalancerOption {
	return func(b *Rebalancer) {
		b.reporter = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) RebalancerOption {
	return func(b *Rebalancer) {
		b.logger = l
	}
}

// WithFetchConcurrency bounds the number of baseline price requests in flight.
func WithFetchConcurrency(n int) RebalancerOption {
	return func(b *Rebalancer) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewRebalancer wires the collaborators of a run.
func NewRebalancer(sessions SessionProvider, market MarketData, trader OrderSubmitter, opts ...RebalancerOption) *Rebalancer {
	b := &Rebalancer{
		sessions:    sessions,
		market:      market,
		trader:      trader,
		reporter:    report.NewPrinter(io.Discard),
		logger:      zap.NewNop(),
		concurrency: defaultFetchConcurrency,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run executes one rebalancing pass. Any error aborts the remaining stages,
// an order is only submitted when pricing, sizing and the affordability check succeed.
func (b *Rebalancer) Run(ctx context.Context, p Params) (Result, error) {
	var result Result

	if !p.Live {
		b.logger.Info("running in test mode, no orders will be placed")
	}

	session, err := b.sessions.Authenticate(ctx)
	if err != nil {
		return result, errors.Wrap(err, "authenticate")
	}

	cash, err := b.market.GetCashBalance(ctx, session)
	if err != nil {
		return result, errors.Wrap(err, "get cash balance")
	}

	baseline, err := b.baselinePrices(ctx, session, p.Watchlist)
	if err != nil {
		return result, err
	}

	current, err := b.market.GetCurrentPrices(ctx, session, p.Watchlist)
	if err != nil {
		return result, errors.Wrap(err, "get current prices")
	}

	result.Performance, err = performance.Evaluate(p.Watchlist, baseline, current)
	if err != nil {
		return result, err
	}
	worst := result.Performance.Worst
	b.reporter.Performance(result.Performance.Sorted(), worst)
	b.logger.Info("worst performer",
		zap.String("symbol", worst.Symbol),
		zap.String("percent_change", worst.PercentChange.StringFixed(2)))

	decision, err := sizer.Size(worst.Symbol, worst.CurrentPrice, p.Budget, cash)
	var insufficient *domain.InsufficientFundsError
	switch {
	case errors.As(err, &insufficient):
		result.Decision = decision
		b.reporter.Decision(decision)
		b.reporter.InsufficientFunds(insufficient)
		return result, err
	case err != nil:
		return result, err
	}
	result.Decision = decision
	b.reporter.Decision(decision)
	b.reporter.CashBalance(cash)

	if !decision.Tradable() {
		b.reporter.NothingToBuy(decision)
		return result, nil
	}

	if !p.Live {
		b.reporter.DryRun(decision)
		return result, nil
	}

	confirmation, err := b.trader.SubmitBuyOrder(ctx, session, decision.Symbol, decision.AffordableShares)
	if err != nil {
		return result, err
	}
	result.Order = &confirmation
	b.reporter.OrderPlaced(confirmation)

	return result, nil
}

// baselinePrices fetches the baseline of every symbol concurrently.
// The returned map does not depend on completion order.
func (b *Rebalancer) baselinePrices(ctx context.Context, session domain.Session, watchlist []string) (map[string]decimal.Decimal, error) {
	prices := make([]decimal.Decimal, len(watchlist))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for i, symbol := range watchlist {
		g.Go(func() error {
			price, err := b.market.GetBaselinePrice(gctx, session, symbol)
			if err != nil {
				return errors.Wrapf(err, "get baseline price for %s", symbol)
			}
			prices[i] = price
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	baseline := make(map[string]decimal.Decimal, len(watchlist))
	for i, symbol := range watchlist {
		baseline[symbol] = prices[i]
	}
	return baseline, nil
}

// ExitCode maps a run error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, domain.ErrInsufficientFunds):
		return ExitInsufficientFunds
	default:
		return ExitFatal
	}
}
