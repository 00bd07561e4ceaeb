package contracts

import (
	"encoding/json"
	"sort"

	"github.com/shopspring/decimal"
)

// Source columns an indicator may read from
const (
	ColumnOpen   = "candle_open"
	ColumnHigh   = "high"
	ColumnLow    = "low"
	ColumnClose  = "candle_close"
	ColumnCustom = "custom"

	ColumnTimestamp = "candle_timestamp"
)

// SourceColumns lists the accepted *_value selectors
var SourceColumns = []string{ColumnOpen, ColumnHigh, ColumnLow, ColumnClose, ColumnCustom}

// IsSourceColumn reports whether name is an accepted selector
func IsSourceColumn(name string) bool {
	for _, c := range SourceColumns {
		if c == name {
			return true
		}
	}
	return false
}

// Candle is one OHLC bar. Nil fields mean the column was absent.
type Candle struct {
	Timestamp *Timestamp
	Open      *float64
	High      *float64
	Low       *float64
	Close     *float64
	Volume    *float64
	Custom    *float64
}

type candleWire struct {
	Timestamp *Timestamp          `json:"candle_timestamp"`
	Open      decimal.NullDecimal `json:"candle_open"`
	High      decimal.NullDecimal `json:"high"`
	Low       decimal.NullDecimal `json:"low"`
	Close     decimal.NullDecimal `json:"candle_close"`
	Volume    decimal.NullDecimal `json:"volume"`
	Custom    decimal.NullDecimal `json:"custom"`
}

func nullable(d decimal.NullDecimal) *float64 {
	if !d.Valid {
		return nil
	}
	f := d.Decimal.InexactFloat64()
	return &f
}

// UnmarshalJSON decodes price columns as numbers or numeric strings
func (c *Candle) UnmarshalJSON(data []byte) error {
	var w candleWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*c = Candle{
		Timestamp: w.Timestamp,
		Open:      nullable(w.Open),
		High:      nullable(w.High),
		Low:       nullable(w.Low),
		Close:     nullable(w.Close),
		Volume:    nullable(w.Volume),
		Custom:    nullable(w.Custom),
	}
	return nil
}

// Column returns the named price column
func (c Candle) Column(name string) (float64, bool) {
	var p *float64
	switch name {
	case ColumnOpen:
		p = c.Open
	case ColumnHigh:
		p = c.High
	case ColumnLow:
		p = c.Low
	case ColumnClose:
		p = c.Close
	case ColumnCustom:
		p = c.Custom
	}
	if p == nil {
		return 0, false
	}
	return *p, true
}

// fields returns the present columns for serialization
func (c Candle) fields() map[string]interface{} {
	out := make(map[string]interface{}, 7)
	if c.Timestamp != nil {
		out[ColumnTimestamp] = *c.Timestamp
	}
	for name, p := range map[string]*float64{
		ColumnOpen:   c.Open,
		ColumnHigh:   c.High,
		ColumnLow:    c.Low,
		ColumnClose:  c.Close,
		"volume":     c.Volume,
		ColumnCustom: c.Custom,
	} {
		if p != nil {
			out[name] = *p
		}
	}
	return out
}

// CandleSeries is an ordered run of candles
type CandleSeries []Candle

// Validate checks the requested source column, then the timestamp column
func (s CandleSeries) Validate(source string) error {
	if len(s) == 0 {
		return ErrEmptyCandleSet
	}
	for i, c := range s {
		if _, ok := c.Column(source); !ok {
			return &ColumnError{Column: source, Row: i}
		}
	}
	for i, c := range s {
		if c.Timestamp == nil {
			return &ColumnError{Column: ColumnTimestamp, Row: i}
		}
	}
	return nil
}

// ValidateColumns checks several source columns in order
func (s CandleSeries) ValidateColumns(columns ...string) error {
	for _, col := range columns {
		if err := s.Validate(col); err != nil {
			return err
		}
	}
	return nil
}

// SortByTime returns a copy sorted by candle_timestamp (stable)
func (s CandleSeries) SortByTime() CandleSeries {
	out := make(CandleSeries, len(s))
	copy(out, s)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp.Time)
	})
	return out
}

// Values extracts one column; missing values become 0 (callers validate first)
func (s CandleSeries) Values(column string) []float64 {
	out := make([]float64, len(s))
	for i, c := range s {
		out[i], _ = c.Column(column)
	}
	return out
}

// IndicatorRow is a candle augmented with derived columns
type IndicatorRow struct {
	Candle
	Values map[string]Float
}

// MarshalJSON flattens candle and indicator columns into one record
func (r IndicatorRow) MarshalJSON() ([]byte, error) {
	out := r.Candle.fields()
	for k, v := range r.Values {
		out[k] = v
	}
	return json.Marshal(out)
}
