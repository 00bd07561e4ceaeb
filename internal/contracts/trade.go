package contracts

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// OrderType is the direction of a completed trade
type OrderType string

const (
	OrderTypeBuy      OrderType = "BUY"
	OrderTypeBuyStop  OrderType = "BUY_STOP"
	OrderTypeSell     OrderType = "SELL"
	OrderTypeSellStop OrderType = "SELL_STOP"
)

// IsLong reports BUY or BUY_STOP
func (o OrderType) IsLong() bool {
	return o == OrderTypeBuy || o == OrderTypeBuyStop
}

// IsShort reports SELL or SELL_STOP
func (o OrderType) IsShort() bool {
	return o == OrderTypeSell || o == OrderTypeSellStop
}

// Valid reports whether o is one of the four supported directions
func (o OrderType) Valid() bool {
	return o.IsLong() || o.IsShort()
}

// TradeRecord is one completed trade as supplied by the client
// ⭐ SSOT: 거래 입력 모델
type TradeRecord struct {
	OrderType  OrderType `json:"order_type"`
	EntryTime  Timestamp `json:"entry_time"`
	ExitTime   Timestamp `json:"exit_time"`
	EntryPrice float64   `json:"entry_price"`
	ExitPrice  float64   `json:"exit_price"`
}

// tradeWire accepts prices as JSON numbers or numeric strings.
// Times are pointers so an absent key is told apart from epoch zero.
type tradeWire struct {
	OrderType  string          `json:"order_type"`
	EntryTime  *Timestamp      `json:"entry_time"`
	ExitTime   *Timestamp      `json:"exit_time"`
	EntryPrice decimal.Decimal `json:"entry_price"`
	ExitPrice  decimal.Decimal `json:"exit_price"`
}

// UnmarshalJSON decodes a trade, requires both times and checks that prices are positive.
// Order types are validated later by the analyzer so the error carries the trade index.
func (t *TradeRecord) UnmarshalJSON(data []byte) error {
	var w tradeWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	if w.EntryTime == nil {
		return fmt.Errorf("%w: entry_time is missing", ErrMalformedTimestamp)
	}
	if w.ExitTime == nil {
		return fmt.Errorf("%w: exit_time is missing", ErrMalformedTimestamp)
	}

	if !w.EntryPrice.IsPositive() || !w.ExitPrice.IsPositive() {
		return fmt.Errorf("%w: entry_price=%s exit_price=%s", ErrInvalidPrice, w.EntryPrice, w.ExitPrice)
	}

	*t = TradeRecord{
		OrderType:  OrderType(strings.ToUpper(strings.TrimSpace(w.OrderType))),
		EntryTime:  *w.EntryTime,
		ExitTime:   *w.ExitTime,
		EntryPrice: w.EntryPrice.InexactFloat64(),
		ExitPrice:  w.ExitPrice.InexactFloat64(),
	}
	return nil
}

// DecodeTable decodes a table that arrives either as a JSON array or as a
// string holding a JSON array (the legacy dataframe-as-string encoding).
func DecodeTable(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		return fmt.Errorf("table is missing")
	}

	if raw[0] == '"' {
		var embedded string
		if err := json.Unmarshal(raw, &embedded); err != nil {
			return fmt.Errorf("decode embedded table: %w", err)
		}
		raw = json.RawMessage(embedded)
	}

	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode table: %w", err)
	}
	return nil
}
