package trader

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vadiminshakov/buylow/internal/domain"
)

const ordersPathFmt = "/trader/v1/accounts/%s/orders"

type schwabAPI interface {
	PostJSON(ctx context.Context, session domain.Session, path string, payload any) (http.Header, []byte, error)
}

// OrderSink receives every order the broker confirmed.
type OrderSink interface {
	Save(ctx context.Context, record domain.OrderRecord) error
}

type orderRequest struct {
	OrderType          string     `json:"orderType"`
	Session            string     `json:"session"`
	Duration           string     `json:"duration"`
	OrderStrategyType  string     `json:"orderStrategyType"`
	OrderLegCollection []orderLeg `json:"orderLegCollection"`
}

type orderLeg struct {
	Instruction string     `json:"instruction"`
	Quantity    int64      `json:"quantity"`
	Instrument  instrument `json:"instrument"`
}

type instrument struct {
	Symbol    string `json:"symbol"`
	AssetType string `json:"assetType"`
}

func newMarketBuy(symbol string, quantity int64) orderRequest {
	return orderRequest{
		OrderType:         domain.OrderTypeMarket,
		Session:           domain.OrderSessionNormal,
		Duration:          domain.OrderDurationDay,
		OrderStrategyType: domain.OrderStrategySingle,
		OrderLegCollection: []orderLeg{{
			Instruction: domain.InstructionBuy,
			Quantity:    quantity,
			Instrument:  instrument{Symbol: symbol, AssetType: domain.AssetTypeEquity},
		}},
	}
}

// SchwabTrader places market buy orders through the Schwab trader API.
type SchwabTrader struct {
	client schwabAPI
	sink   OrderSink
	logger *zap.Logger
	now    func() time.Time
}

// NewSchwabTrader creates an order submitter. sink may be nil.
func NewSchwabTrader(client schwabAPI, sink OrderSink, logger *zap.Logger) *SchwabTrader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchwabTrader{client: client, sink: sink, logger: logger, now: time.Now}
}

// SubmitBuyOrder places a single market day order for quantity shares of symbol.
// Any failure is returned as *domain.OrderError.
func (t *SchwabTrader) SubmitBuyOrder(ctx context.Context, session domain.Session, symbol string, quantity int64) (domain.OrderConfirmation, error) {
	if quantity <= 0 {
		return domain.OrderConfirmation{}, &domain.OrderError{
			Symbol: symbol, Quantity: quantity, Err: errors.New("quantity must be positive"),
		}
	}

	ordersPath := fmt.Sprintf(ordersPathFmt, url.PathEscape(session.AccountHash))
	header, _, err := t.client.PostJSON(ctx, session, ordersPath, newMarketBuy(symbol, quantity))
	if err != nil {
		return domain.OrderConfirmation{}, &domain.OrderError{Symbol: symbol, Quantity: quantity, Err: err}
	}

	confirmation := domain.OrderConfirmation{
		Symbol:   symbol,
		Quantity: quantity,
		PlacedAt: t.now().UTC(),
	}
	if header != nil {
		confirmation.Location = header.Get("Location")
		if confirmation.Location != "" {
			confirmation.ID = path.Base(confirmation.Location)
		}
	}

	t.logger.Info("order placed",
		zap.String("symbol", symbol),
		zap.Int64("quantity", quantity),
		zap.String("order_id", confirmation.ID))

	t.record(ctx, confirmation)

	return confirmation, nil
}

// record forwards the confirmation to the sink. The order is already live,
// so a sink failure is logged and never reported as an order failure.
func (t *SchwabTrader) record(ctx context.Context, c domain.OrderConfirmation) {
	if t.sink == nil {
		return
	}
	record := domain.NewBuyOrderRecord(uuid.NewString(), c)
	if err := t.sink.Save(ctx, record); err != nil {
		t.logger.Error("failed to record order",
			zap.String("symbol", c.Symbol),
			zap.String("record_id", record.ID),
			zap.Error(err))
	}
}
