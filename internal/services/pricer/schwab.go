package pricer

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vadiminshakov/buylow/internal/domain"
)

const (
	priceHistoryPath = "/marketdata/v1/pricehistory"
	quotesPath       = "/marketdata/v1/quotes"
	accountPathFmt   = "/trader/v1/accounts/%s"
)

// ErrParse broker response lacks an expected field.
var ErrParse = errors.New("unexpected broker response")

type schwabAPI interface {
	GetJSON(ctx context.Context, session domain.Session, path string, query url.Values, out any) error
}

// Lookback price history window whose first daily close is the baseline.
type Lookback struct {
	// PeriodType day, month, year or ytd.
	PeriodType string
	// Period number of PeriodType units, 0 uses the broker default.
	Period int
	// FrequencyType candle size, daily for month lookbacks.
	FrequencyType string
}

// DefaultLookback one month of daily candles.
var DefaultLookback = Lookback{PeriodType: "month", Period: 1, FrequencyType: "daily"}

// SchwabPricer reads prices and balances from Schwab market data and trader APIs.
type SchwabPricer struct {
	client   schwabAPI
	lookback Lookback
	logger   *zap.Logger
}

// NewSchwabPricer creates a pricer on top of an authenticated client.
func NewSchwabPricer(client schwabAPI, lookback Lookback, logger *zap.Logger) *SchwabPricer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if lookback.PeriodType == "" {
		lookback = DefaultLookback
	}
	return &SchwabPricer{client: client, lookback: lookback, logger: logger}
}

type priceHistory struct {
	Symbol  string `json:"symbol"`
	Empty   bool   `json:"empty"`
	Candles []struct {
		Close    decimal.NullDecimal `json:"close"`
		Datetime int64               `json:"datetime"`
	} `json:"candles"`
}

// GetBaselinePrice returns the close of the oldest candle in the lookback window.
func (p *SchwabPricer) GetBaselinePrice(ctx context.Context, session domain.Session, symbol string) (decimal.Decimal, error) {
	query := url.Values{}
	query.Set("symbol", symbol)
	query.Set("periodType", p.lookback.PeriodType)
	if p.lookback.Period > 0 {
		query.Set("period", strconv.Itoa(p.lookback.Period))
	}
	if p.lookback.FrequencyType != "" {
		query.Set("frequencyType", p.lookback.FrequencyType)
	}

	var history priceHistory
	if err := p.client.GetJSON(ctx, session, priceHistoryPath, query, &history); err != nil {
		return decimal.Zero, errors.Wrapf(err, "failed to get price history for %s", symbol)
	}
	if len(history.Candles) == 0 || !history.Candles[0].Close.Valid {
		return decimal.Zero, errors.Wrapf(ErrParse, "price history for %s has no candles", symbol)
	}

	baseline := history.Candles[0].Close.Decimal
	p.logger.Debug("baseline price", zap.String("symbol", symbol), zap.String("price", baseline.String()))

	return baseline, nil
}

type quoteEntry struct {
	Quote struct {
		Mark      decimal.NullDecimal `json:"mark"`
		LastPrice decimal.NullDecimal `json:"lastPrice"`
	} `json:"quote"`
}

// GetCurrentPrices returns the mark price of every symbol the broker quoted.
// Symbols the broker did not quote are absent from the result.
func (p *SchwabPricer) GetCurrentPrices(ctx context.Context, session domain.Session, symbols []string) (map[string]decimal.Decimal, error) {
	query := url.Values{}
	query.Set("symbols", strings.Join(symbols, ","))

	var quotes map[string]quoteEntry
	if err := p.client.GetJSON(ctx, session, quotesPath, query, &quotes); err != nil {
		return nil, errors.Wrap(err, "failed to get quotes")
	}

	prices := make(map[string]decimal.Decimal, len(quotes))
	for symbol, entry := range quotes {
		switch {
		case entry.Quote.Mark.Valid:
			prices[symbol] = entry.Quote.Mark.Decimal
		case entry.Quote.LastPrice.Valid:
			prices[symbol] = entry.Quote.LastPrice.Decimal
		default:
			p.logger.Warn("quote without price", zap.String("symbol", symbol))
		}
	}

	return prices, nil
}

type accountResponse struct {
	SecuritiesAccount struct {
		CurrentBalances struct {
			CashBalance decimal.NullDecimal `json:"cashBalance"`
		} `json:"currentBalances"`
	} `json:"securitiesAccount"`
}

// GetCashBalance returns the current cash balance of the session account.
func (p *SchwabPricer) GetCashBalance(ctx context.Context, session domain.Session) (decimal.Decimal, error) {
	var account accountResponse
	path := fmt.Sprintf(accountPathFmt, url.PathEscape(session.AccountHash))
	if err := p.client.GetJSON(ctx, session, path, nil, &account); err != nil {
		return decimal.Zero, errors.Wrap(err, "failed to get cash balance")
	}

	balance := account.SecuritiesAccount.CurrentBalances.CashBalance
	if !balance.Valid {
		return decimal.Zero, errors.Wrap(ErrParse, "account has no cash balance")
	}

	return balance.Decimal, nil
}
