package domain

import "time"

// Order fields sent to the broker for every buy; the tool only places single market day orders.
const (
	OrderTypeMarket     = "MARKET"
	OrderSessionNormal  = "NORMAL"
	OrderDurationDay    = "DAY"
	OrderStrategySingle = "SINGLE"
	InstructionBuy      = "BUY"
	AssetTypeEquity     = "EQUITY"
)

// OrderConfirmation broker acknowledgement of a placed order.
type OrderConfirmation struct {
	// ID broker order id, empty if the broker did not return one.
	ID       string
	Symbol   string
	Quantity int64
	// Location URL of the created order resource.
	Location string
	PlacedAt time.Time
}

// OrderRecord persisted form of a placed order.
type OrderRecord struct {
	ID                string    `json:"id"`
	BrokerOrderID     string    `json:"broker_order_id,omitempty"`
	Session           string    `json:"session"`
	Duration          string    `json:"duration"`
	OrderType         string    `json:"order_type"`
	OrderStrategyType string    `json:"order_strategy_type"`
	Symbol            string    `json:"symbol"`
	AssetType         string    `json:"asset_type"`
	Instruction       string    `json:"instruction"`
	Quantity          int64     `json:"quantity"`
	PlacedAt          time.Time `json:"placed_at"`
}

// NewBuyOrderRecord builds the record of a confirmed market buy.
func NewBuyOrderRecord(id string, c OrderConfirmation) OrderRecord {
	return OrderRecord{
		ID:                id,
		BrokerOrderID:     c.ID,
		Session:           OrderSessionNormal,
		Duration:          OrderDurationDay,
		OrderType:         OrderTypeMarket,
		OrderStrategyType: OrderStrategySingle,
		Symbol:            c.Symbol,
		AssetType:         AssetTypeEquity,
		Instruction:       InstructionBuy,
		Quantity:          c.Quantity,
		PlacedAt:          c.PlacedAt,
	}
}
