package contracts

import (
	"bytes"
	"encoding/json"
	"sort"
)

// AnnotatedTrade carries the per-trade derived fields alongside the input.
// Built fresh for every request; the input record is never mutated.
type AnnotatedTrade struct {
	Trade         TradeRecord `json:"trade"`
	Win           bool        `json:"win"`
	DaysFromStart int         `json:"days_from_start"`
	CumulativeRFR Float       `json:"cumulative_rfr"`
	RFRAmount     Float       `json:"rfr_amount"`
	RawReturn     Float       `json:"raw_return"`
	ExcessReturn  Float       `json:"excess_return"`
}

// DailyAggregate is the per-exit-date reduction of trades
type DailyAggregate struct {
	Date            string `json:"-"`
	TradeCount      int    `json:"trade_count"`
	ExcessReturnSum Float  `json:"excess_return_sum"`
	RFRAmountFirst  Float  `json:"rfr_amount_first"`
}

// DailyBreakdown is ordered by date ascending and serializes as an object keyed by date
type DailyBreakdown []DailyAggregate

// MarshalJSON writes {"2024-01-15": {...}, ...} preserving slice order
func (b DailyBreakdown) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, day := range b {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(day.Date)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(day)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the keyed object back (used by the remote CLI client)
func (b *DailyBreakdown) UnmarshalJSON(data []byte) error {
	var keyed map[string]DailyAggregate
	if err := json.Unmarshal(data, &keyed); err != nil {
		return err
	}
	out := make(DailyBreakdown, 0, len(keyed))
	for date, day := range keyed {
		day.Date = date
		out = append(out, day)
	}
	// YYYY-MM-DD keys sort chronologically
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	*b = out
	return nil
}

// SharpeReport is the final performance result for one request
// ⭐ SSOT: 성과 분석 응답 모델
type SharpeReport struct {
	ROI            Float          `json:"roi"`
	SharpeRatio    Float          `json:"sharpe_ratio"`
	DailyBreakdown DailyBreakdown `json:"daily_breakdown"`
	RawReturn      Float          `json:"raw_return"`

	AnnualRiskFreeRate float64 `json:"annual_risk_free_rate"`
	DailyRFR           Float   `json:"daily_rfr"`
	TradeCount         int     `json:"trade_count"`
	Wins               int     `json:"wins"`
	Losses             int     `json:"losses"`
	WinRate            Float   `json:"win_rate"`
}

// TradingDays returns the number of distinct exit dates
func (r *SharpeReport) TradingDays() int {
	return len(r.DailyBreakdown)
}

// WinLossSummary is the result of the win/loss classification endpoint
type WinLossSummary struct {
	Trades  []ClassifiedTrade `json:"trades"`
	Wins    int               `json:"wins"`
	Losses  int               `json:"losses"`
	WinRate Float             `json:"win_rate"`
}

// ClassifiedTrade is a trade with its win flag
type ClassifiedTrade struct {
	OrderType  OrderType `json:"order_type"`
	EntryTime  Timestamp `json:"entry_time"`
	ExitTime   Timestamp `json:"exit_time"`
	EntryPrice float64   `json:"entry_price"`
	ExitPrice  float64   `json:"exit_price"`
	Win        bool      `json:"win"`
}
