// Package indicators computes technical indicators over candle series.
//
// The slice functions (SMA, EMA, RSI, Ichimoku) are pure and aligned to their
// input, with NaN marking bars that have not seen enough history. The Apply*
// functions validate a CandleSeries, sort it by candle_timestamp and return the
// candles augmented with the indicator columns.
package indicators

import (
	"fmt"
	"math"

	"github.com/wonny/tradecalc/internal/contracts"
)

// Request defaults
const (
	DefaultRSILength = 14
	DefaultEMALength = 20
	ColumnRSI        = "rsi"
)

// EMAName is the output column of an EMA with the given period
func EMAName(period int) string {
	return fmt.Sprintf("ema_%d", period)
}

func checkPeriod(name string, p int) error {
	if p <= 0 {
		return fmt.Errorf("%w: %s=%d", contracts.ErrInvalidPeriod, name, p)
	}
	return nil
}

func prepare(series contracts.CandleSeries, columns ...string) (contracts.CandleSeries, error) {
	for _, col := range columns {
		if !contracts.IsSourceColumn(col) {
			return nil, fmt.Errorf("%w: %s", contracts.ErrInvalidSource, col)
		}
	}
	if err := series.ValidateColumns(columns...); err != nil {
		return nil, err
	}
	return series.SortByTime(), nil
}

func rows(series contracts.CandleSeries, columns map[string][]float64) []contracts.IndicatorRow {
	out := make([]contracts.IndicatorRow, len(series))
	for i, c := range series {
		values := make(map[string]contracts.Float, len(columns))
		for name, col := range columns {
			values[name] = contracts.Float(col[i])
		}
		out[i] = contracts.IndicatorRow{Candle: c, Values: values}
	}
	return out
}

// ApplyRSI adds an "rsi" column computed from source. Warmup rows are kept with a null rsi.
func ApplyRSI(series contracts.CandleSeries, period int, source string) ([]contracts.IndicatorRow, error) {
	if err := checkPeriod("rsi_length", period); err != nil {
		return nil, err
	}
	sorted, err := prepare(series, source)
	if err != nil {
		return nil, err
	}

	rsi := RSI(sorted.Values(source), period)
	return rows(sorted, map[string][]float64{ColumnRSI: rsi}), nil
}

// ApplyEMA adds an "ema_<period>" column computed from source.
// With dropWarmup set, rows before the first defined EMA are removed.
func ApplyEMA(series contracts.CandleSeries, period int, source string, dropWarmup bool) ([]contracts.IndicatorRow, error) {
	if err := checkPeriod("ema_length", period); err != nil {
		return nil, err
	}
	sorted, err := prepare(series, source)
	if err != nil {
		return nil, err
	}

	ema := EMA(sorted.Values(source), period)
	out := rows(sorted, map[string][]float64{EMAName(period): ema})
	if !dropWarmup {
		return out, nil
	}

	first := len(ema)
	for i, v := range ema {
		if !math.IsNaN(v) {
			first = i
			break
		}
	}
	return out[first:], nil
}

// ApplyIchimoku adds the five cloud columns. Requires high, low and candle_close.
func ApplyIchimoku(series contracts.CandleSeries, p IchimokuParams) ([]contracts.IndicatorRow, error) {
	if err := checkPeriod("tenkan", p.Tenkan); err != nil {
		return nil, err
	}
	if err := checkPeriod("kijun", p.Kijun); err != nil {
		return nil, err
	}
	if err := checkPeriod("senkou", p.Senkou); err != nil {
		return nil, err
	}
	sorted, err := prepare(series, contracts.ColumnHigh, contracts.ColumnLow, contracts.ColumnClose)
	if err != nil {
		return nil, err
	}

	lines := Ichimoku(
		sorted.Values(contracts.ColumnHigh),
		sorted.Values(contracts.ColumnLow),
		sorted.Values(contracts.ColumnClose),
		p,
	)
	return rows(sorted, map[string][]float64{
		ColumnTenkan: lines.Tenkan,
		ColumnKijun:  lines.Kijun,
		ColumnSpanA:  lines.SpanA,
		ColumnSpanB:  lines.SpanB,
		ColumnChikou: lines.Chikou,
	}), nil
}
