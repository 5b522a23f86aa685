package pricer

import (
	"context"
	"encoding/json"
	"net/url"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/buylow/internal/domain"
)

// fakeAPI serves canned JSON bodies per path.
type fakeAPI struct {
	bodies  map[string]string
	err     error
	queries map[string]url.Values
}

func (f *fakeAPI) GetJSON(_ context.Context, session domain.Session, path string, query url.Values, out any) error {
	if f.err != nil {
		return f.err
	}
	if f.queries == nil {
		f.queries = make(map[string]url.Values)
	}
	f.queries[path] = query
	body, ok := f.bodies[path]
	if !ok {
		return errors.Errorf("unexpected path %s", path)
	}
	return json.Unmarshal([]byte(body), out)
}

var session = domain.Session{AccessToken: "tok", AccountHash: "HASH"}

func TestSchwabPricer_GetBaselinePrice(t *testing.T) {
	api := &fakeAPI{bodies: map[string]string{
		priceHistoryPath: `{"symbol":"QQQ","empty":false,"candles":[{"close":480.25,"datetime":1},{"close":490.5,"datetime":2}]}`,
	}}
	p := NewSchwabPricer(api, Lookback{}, nil)

	price, err := p.GetBaselinePrice(context.Background(), session, "QQQ")
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.RequireFromString("480.25")))

	q := api.queries[priceHistoryPath]
	assert.Equal(t, "QQQ", q.Get("symbol"))
	assert.Equal(t, "month", q.Get("periodType"))
	assert.Equal(t, "1", q.Get("period"))
	assert.Equal(t, "daily", q.Get("frequencyType"))
}

func TestSchwabPricer_GetBaselinePriceCustomLookback(t *testing.T) {
	api := &fakeAPI{bodies: map[string]string{
		priceHistoryPath: `{"candles":[{"close":10}]}`,
	}}
	p := NewSchwabPricer(api, Lookback{PeriodType: "year", Period: 1, FrequencyType: "weekly"}, nil)

	_, err := p.GetBaselinePrice(context.Background(), session, "SPY")
	require.NoError(t, err)
	assert.Equal(t, "year", api.queries[priceHistoryPath].Get("periodType"))
	assert.Equal(t, "weekly", api.queries[priceHistoryPath].Get("frequencyType"))
}

func TestSchwabPricer_GetBaselinePriceNoCandles(t *testing.T) {
	api := &fakeAPI{bodies: map[string]string{priceHistoryPath: `{"candles":[],"empty":true}`}}
	p := NewSchwabPricer(api, DefaultLookback, nil)

	_, err := p.GetBaselinePrice(context.Background(), session, "QQQ")
	assert.True(t, errors.Is(err, ErrParse))
}

func TestSchwabPricer_GetCurrentPrices(t *testing.T) {
	api := &fakeAPI{bodies: map[string]string{
		quotesPath: `{
			"AAA":{"quote":{"mark":90.5,"lastPrice":90.4}},
			"BBB":{"quote":{"lastPrice":55}},
			"CCC":{"quote":{}}
		}`,
	}}
	p := NewSchwabPricer(api, DefaultLookback, nil)

	prices, err := p.GetCurrentPrices(context.Background(), session, []string{"AAA", "BBB", "CCC"})
	require.NoError(t, err)
	assert.Equal(t, "AAA,BBB,CCC", api.queries[quotesPath].Get("symbols"))
	require.Len(t, prices, 2)
	assert.True(t, prices["AAA"].Equal(decimal.RequireFromString("90.5")))
	assert.True(t, prices["BBB"].Equal(decimal.NewFromInt(55)))
	_, ok := prices["CCC"]
	assert.False(t, ok)
}

func TestSchwabPricer_GetCashBalance(t *testing.T) {
	api := &fakeAPI{bodies: map[string]string{
		"/trader/v1/accounts/HASH": `{"securitiesAccount":{"currentBalances":{"cashBalance":1000.25}}}`,
	}}
	p := NewSchwabPricer(api, DefaultLookback, nil)

	balance, err := p.GetCashBalance(context.Background(), session)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("1000.25")))
}

func TestSchwabPricer_GetCashBalanceMissing(t *testing.T) {
	api := &fakeAPI{bodies: map[string]string{
		"/trader/v1/accounts/HASH": `{"securitiesAccount":{}}`,
	}}
	p := NewSchwabPricer(api, DefaultLookback, nil)

	_, err := p.GetCashBalance(context.Background(), session)
	assert.True(t, errors.Is(err, ErrParse))
}

func TestSchwabPricer_PropagatesTransportError(t *testing.T) {
	boom := errors.New("connection reset")
	p := NewSchwabPricer(&fakeAPI{err: boom}, DefaultLookback, nil)

	_, err := p.GetCurrentPrices(context.Background(), session, []string{"AAA"})
	assert.True(t, errors.Is(err, boom))
}
