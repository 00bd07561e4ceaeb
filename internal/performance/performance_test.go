package performance

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tradecalc/internal/contracts"
	"github.com/wonny/tradecalc/pkg/logger"
)

var start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func at(day, hour int) contracts.Timestamp {
	return contracts.NewTimestamp(time.Date(2024, 1, day, hour, 0, 0, 0, time.UTC))
}

func trade(orderType contracts.OrderType, entry, exit float64, exitAt contracts.Timestamp) contracts.TradeRecord {
	return contracts.TradeRecord{
		OrderType:  orderType,
		EntryTime:  contracts.NewTimestamp(exitAt.Add(-time.Hour)),
		ExitTime:   exitAt,
		EntryPrice: entry,
		ExitPrice:  exit,
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		orderType contracts.OrderType
		entry     float64
		exit      float64
		want      bool
	}{
		{"buy up", contracts.OrderTypeBuy, 100, 110, true},
		{"buy down", contracts.OrderTypeBuy, 100, 90, false},
		{"buy flat", contracts.OrderTypeBuy, 100, 100, false},
		{"buy stop up", contracts.OrderTypeBuyStop, 100, 101, true},
		{"buy stop flat", contracts.OrderTypeBuyStop, 100, 100, false},
		{"sell down", contracts.OrderTypeSell, 100, 90, true},
		{"sell up", contracts.OrderTypeSell, 100, 110, false},
		{"sell flat", contracts.OrderTypeSell, 100, 100, false},
		{"sell stop down", contracts.OrderTypeSellStop, 100, 99, true},
		{"sell stop flat", contracts.OrderTypeSellStop, 100, 100, false},
		{"unknown", contracts.OrderType("HOLD"), 100, 200, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(trade(tt.orderType, tt.entry, tt.exit, at(2, 0)))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyAll(t *testing.T) {
	trades := []contracts.TradeRecord{
		trade(contracts.OrderTypeBuy, 100, 110, at(2, 0)),
		trade(contracts.OrderTypeSell, 100, 110, at(2, 0)),
		trade(contracts.OrderTypeSellStop, 100, 95, at(3, 0)),
		trade(contracts.OrderTypeBuyStop, 100, 100, at(3, 0)),
	}

	summary := ClassifyAll(trades)

	require.Len(t, summary.Trades, 4)
	assert.Equal(t, []bool{true, false, true, false}, []bool{
		summary.Trades[0].Win, summary.Trades[1].Win, summary.Trades[2].Win, summary.Trades[3].Win,
	})
	assert.Equal(t, 2, summary.Wins)
	assert.Equal(t, 2, summary.Losses)
	assert.InDelta(t, 0.5, float64(summary.WinRate), 1e-12)
}

func TestRawReturn(t *testing.T) {
	raw, err := RawReturn(trade(contracts.OrderTypeBuy, 100, 110, at(2, 0)), DefaultNotional)
	require.NoError(t, err)
	assert.InDelta(t, 100_000, raw, 1e-6)

	raw, err = RawReturn(trade(contracts.OrderTypeSell, 100, 90, at(2, 0)), DefaultNotional)
	require.NoError(t, err)
	assert.InDelta(t, 100_000, raw, 1e-6)

	raw, err = RawReturn(trade(contracts.OrderTypeBuyStop, 50, 45, at(2, 0)), DefaultNotional)
	require.NoError(t, err)
	assert.InDelta(t, -100_000, raw, 1e-6)

	_, err = RawReturn(trade(contracts.OrderType("HOLD"), 100, 90, at(2, 0)), DefaultNotional)
	assert.ErrorIs(t, err, contracts.ErrInvalidOrderType)
}

func TestAttribute_ExcessIsRawMinusBenchmark(t *testing.T) {
	for _, rfr := range []float64{0, 88.955, -250, 12345.678} {
		raw, excess, err := Attribute(trade(contracts.OrderTypeSellStop, 80, 77.5, at(5, 0)), rfr, DefaultNotional)
		require.NoError(t, err)
		assert.Equal(t, raw-rfr, excess)
	}
}

func TestDailyRate(t *testing.T) {
	got := DailyRate(0.033)
	assert.InDelta(t, 8.89552e-05, got, 1e-10)
	assert.Equal(t, math.Pow(1.033, 1.0/365)-1, got)

	assert.Equal(t, 0.0, DailyRate(0))
}

func TestDaysFromStart(t *testing.T) {
	tests := []struct {
		name string
		exit time.Time
		want int
	}{
		{"same instant", start, 0},
		{"same day", start.Add(23 * time.Hour), 0},
		{"one day", start.Add(24 * time.Hour), 1},
		{"partial second day", start.Add(47 * time.Hour), 1},
		{"thirty days", start.AddDate(0, 0, 30), 30},
		{"one hour before", start.Add(-time.Hour), -1},
		{"exactly one day before", start.Add(-24 * time.Hour), -1},
		{"25 hours before", start.Add(-25 * time.Hour), -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysFromStart(tt.exit, start))
		})
	}
}

func TestAccrue(t *testing.T) {
	daily := DailyRate(0.033)

	acc := Accrue(daily, 10, DefaultNotional)
	assert.Equal(t, 10, acc.Days)
	assert.InDelta(t, daily*10, acc.Cumulative, 1e-15)
	assert.InDelta(t, daily*10*DefaultNotional, acc.Amount, 1e-9)

	// linear, not compounded
	assert.InDelta(t, 2*Accrue(daily, 5, DefaultNotional).Amount, acc.Amount, 1e-9)

	neg := Accrue(daily, -3, DefaultNotional)
	assert.Less(t, neg.Amount, 0.0)
}

func annotated(date contracts.Timestamp, excess, rfr float64) contracts.AnnotatedTrade {
	return contracts.AnnotatedTrade{
		Trade:        trade(contracts.OrderTypeBuy, 100, 101, date),
		ExcessReturn: contracts.Float(excess),
		RFRAmount:    contracts.Float(rfr),
		RawReturn:    contracts.Float(excess + rfr),
	}
}

func TestAggregateDaily(t *testing.T) {
	trades := []contracts.AnnotatedTrade{
		annotated(at(3, 15), 10, 300),
		annotated(at(2, 9), 5, 200),
		annotated(at(3, 8), 20, 301),
		annotated(at(2, 23), -1, 201),
		annotated(at(7, 0), 7, 700),
	}

	breakdown := AggregateDaily(trades)

	require.Len(t, breakdown, 3)
	assert.Equal(t, []string{"2024-01-02", "2024-01-03", "2024-01-07"},
		[]string{breakdown[0].Date, breakdown[1].Date, breakdown[2].Date})

	assert.Equal(t, 2, breakdown[0].TradeCount)
	assert.InDelta(t, 4, float64(breakdown[0].ExcessReturnSum), 1e-12)
	assert.Equal(t, contracts.Float(200), breakdown[0].RFRAmountFirst)

	// first encountered in input order, not earliest in time
	assert.Equal(t, 2, breakdown[1].TradeCount)
	assert.InDelta(t, 30, float64(breakdown[1].ExcessReturnSum), 1e-12)
	assert.Equal(t, contracts.Float(300), breakdown[1].RFRAmountFirst)

	assert.Equal(t, 1, breakdown[2].TradeCount)
}

func TestAggregateDaily_OrderIndependentTotals(t *testing.T) {
	forward := []contracts.AnnotatedTrade{
		annotated(at(2, 1), 1, 0), annotated(at(2, 2), 2, 0), annotated(at(4, 1), 4, 0),
	}
	reversed := []contracts.AnnotatedTrade{forward[2], forward[1], forward[0]}

	a := AggregateDaily(forward)
	b := AggregateDaily(reversed)

	require.Len(t, b, len(a))
	for i := range a {
		assert.Equal(t, a[i].Date, b[i].Date)
		assert.Equal(t, a[i].TradeCount, b[i].TradeCount)
		assert.InDelta(t, float64(a[i].ExcessReturnSum), float64(b[i].ExcessReturnSum), 1e-12)
	}
}

func TestComputeStats_TwoDays(t *testing.T) {
	trades := []contracts.AnnotatedTrade{
		annotated(at(2, 0), 100, 0),
		annotated(at(3, 0), 300, 0),
	}
	daily := AggregateDaily(trades)
	dailyRFR := DailyRate(0.033)

	stats, err := ComputeStats(trades, daily, dailyRFR, DefaultNotional)
	require.NoError(t, err)

	assert.InDelta(t, 200, stats.Mean, 1e-12)
	assert.InDelta(t, 141.42135623730951, stats.Std, 1e-9)
	assert.InDelta(t, (200-dailyRFR)/141.42135623730951, stats.Sharpe, 1e-12)
	assert.Equal(t, 1, stats.MaxTrades)
	assert.InDelta(t, 400.0/DefaultNotional, stats.ROI, 1e-15)
}

func TestComputeStats_SingleDayIsNaN(t *testing.T) {
	trades := []contracts.AnnotatedTrade{
		annotated(at(2, 1), 100, 0),
		annotated(at(2, 5), 300, 0),
	}
	daily := AggregateDaily(trades)

	stats, err := ComputeStats(trades, daily, DailyRate(0.033), DefaultNotional)
	require.NoError(t, err)

	assert.True(t, math.IsNaN(stats.Sharpe), "single trading day must give NaN, got %v", stats.Sharpe)
	assert.True(t, math.IsNaN(stats.Std))
	assert.InDelta(t, 400, stats.Mean, 1e-12)
	assert.InDelta(t, 400.0/(2*DefaultNotional), stats.ROI, 1e-15)
}

func TestComputeStats_Empty(t *testing.T) {
	_, err := ComputeStats(nil, nil, 0, DefaultNotional)
	assert.ErrorIs(t, err, contracts.ErrEmptyTradeSet)
}

func TestComputeStats_ROIInvariantUnderRegrouping(t *testing.T) {
	// same raw returns and same busiest-day count, different day layout
	grouped := []contracts.AnnotatedTrade{
		annotated(at(2, 0), 10, 0), annotated(at(2, 1), 20, 0),
		annotated(at(3, 0), 30, 0), annotated(at(4, 0), 40, 0),
	}
	regrouped := []contracts.AnnotatedTrade{
		annotated(at(2, 0), 10, 0), annotated(at(3, 1), 20, 0),
		annotated(at(5, 0), 30, 0), annotated(at(5, 1), 40, 0),
	}

	a, err := ComputeStats(grouped, AggregateDaily(grouped), 0, DefaultNotional)
	require.NoError(t, err)
	b, err := ComputeStats(regrouped, AggregateDaily(regrouped), 0, DefaultNotional)
	require.NoError(t, err)

	assert.Equal(t, 2, a.MaxTrades)
	assert.Equal(t, a.MaxTrades, b.MaxTrades)
	assert.Equal(t, a.ROI, b.ROI)
	assert.InDelta(t, 100.0/(2*DefaultNotional), a.ROI, 1e-15)
}

func newTestAnalyzer(cfg Config) *Analyzer {
	return NewAnalyzer(StaticConfig(cfg), logger.Nop())
}

func sampleTrades() []contracts.TradeRecord {
	return []contracts.TradeRecord{
		trade(contracts.OrderTypeBuy, 100, 110, at(2, 10)),
		trade(contracts.OrderTypeSell, 100, 90, at(2, 15)),
		trade(contracts.OrderTypeBuyStop, 50, 45, at(4, 0)),
	}
}

func TestAnalyzer_Analyze(t *testing.T) {
	a := newTestAnalyzer(DefaultConfig())

	report, err := a.Analyze(context.Background(), Request{
		Trades:    sampleTrades(),
		StartDate: start,
		EndDate:   start.AddDate(0, 1, 0),
	})
	require.NoError(t, err)

	dailyRFR := DailyRate(DefaultAnnualRiskFreeRate)

	assert.Equal(t, DefaultAnnualRiskFreeRate, report.AnnualRiskFreeRate)
	assert.InDelta(t, dailyRFR, float64(report.DailyRFR), 1e-18)
	assert.InDelta(t, 100_000, float64(report.RawReturn), 1e-6)
	assert.InDelta(t, 100_000/(2*DefaultNotional), float64(report.ROI), 1e-12)
	assert.Equal(t, 3, report.TradeCount)
	assert.Equal(t, 2, report.Wins)
	assert.Equal(t, 1, report.Losses)

	require.Len(t, report.DailyBreakdown, 2)
	day1, day2 := report.DailyBreakdown[0], report.DailyBreakdown[1]
	assert.Equal(t, "2024-01-02", day1.Date)
	assert.Equal(t, 2, day1.TradeCount)
	assert.InDelta(t, dailyRFR*1*DefaultNotional, float64(day1.RFRAmountFirst), 1e-9)
	assert.InDelta(t, 200_000-2*dailyRFR*DefaultNotional, float64(day1.ExcessReturnSum), 1e-6)
	assert.Equal(t, "2024-01-04", day2.Date)
	assert.InDelta(t, -100_000-3*dailyRFR*DefaultNotional, float64(day2.ExcessReturnSum), 1e-6)

	sums := []float64{float64(day1.ExcessReturnSum), float64(day2.ExcessReturnSum)}
	m := (sums[0] + sums[1]) / 2
	std := math.Sqrt((math.Pow(sums[0]-m, 2) + math.Pow(sums[1]-m, 2)) / 1)
	assert.InDelta(t, (m-dailyRFR)/std, float64(report.SharpeRatio), 1e-12)
}

func TestAnalyzer_RequestRateOverridesDefault(t *testing.T) {
	a := newTestAnalyzer(DefaultConfig())
	rate := 0.05

	report, err := a.Analyze(context.Background(), Request{
		Trades:             sampleTrades(),
		StartDate:          start,
		AnnualRiskFreeRate: &rate,
	})
	require.NoError(t, err)

	assert.Equal(t, 0.05, report.AnnualRiskFreeRate)
	assert.InDelta(t, DailyRate(0.05), float64(report.DailyRFR), 1e-18)
}

func TestAnalyzer_CustomNotional(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Notional = 10_000
	a := newTestAnalyzer(cfg)

	report, err := a.Analyze(context.Background(), Request{Trades: sampleTrades(), StartDate: start})
	require.NoError(t, err)

	assert.InDelta(t, 1_000, float64(report.RawReturn), 1e-9)
	// ROI is notional-free
	assert.InDelta(t, 0.05, float64(report.ROI), 1e-12)
}

func TestAnalyzer_Errors(t *testing.T) {
	a := newTestAnalyzer(DefaultConfig())

	_, err := a.Analyze(context.Background(), Request{StartDate: start})
	assert.ErrorIs(t, err, contracts.ErrEmptyTradeSet)

	trades := sampleTrades()
	trades = append(trades, trade(contracts.OrderType("HOLD"), 10, 11, at(5, 0)))

	_, err = a.Analyze(context.Background(), Request{Trades: trades, StartDate: start})
	require.ErrorIs(t, err, contracts.ErrInvalidOrderType)

	var tradeErr *contracts.TradeError
	require.True(t, errors.As(err, &tradeErr))
	assert.Equal(t, 3, tradeErr.Index)
	assert.Equal(t, contracts.OrderType("HOLD"), tradeErr.OrderType)
}

func TestAnalyzer_SingleDaySharpeIsNaN(t *testing.T) {
	a := newTestAnalyzer(DefaultConfig())

	report, err := a.Analyze(context.Background(), Request{
		Trades: []contracts.TradeRecord{
			trade(contracts.OrderTypeBuy, 100, 110, at(2, 10)),
		},
		StartDate: start,
	})
	require.NoError(t, err)

	assert.True(t, math.IsNaN(float64(report.SharpeRatio)))
	assert.InDelta(t, 0.1, float64(report.ROI), 1e-12)
}

func TestAnnotate_NegativeDays(t *testing.T) {
	trades := []contracts.TradeRecord{
		trade(contracts.OrderTypeBuy, 100, 110, contracts.NewTimestamp(start.Add(-36*time.Hour))),
	}

	permissive, _, err := Annotate(trades, start, 0.033, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, -2, permissive[0].DaysFromStart)
	assert.Less(t, float64(permissive[0].RFRAmount), 0.0)
	assert.Greater(t, float64(permissive[0].ExcessReturn), float64(permissive[0].RawReturn))

	cfg := DefaultConfig()
	cfg.ClampNegativeDays = true
	clamped, _, err := Annotate(trades, start, 0.033, cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, clamped[0].DaysFromStart)
	assert.Equal(t, contracts.Float(0), clamped[0].RFRAmount)
}

func TestAnnotate_Idempotent(t *testing.T) {
	trades := sampleTrades()
	snapshot := append([]contracts.TradeRecord(nil), trades...)

	first, rate1, err := Annotate(trades, start, 0.033, DefaultConfig())
	require.NoError(t, err)
	second, rate2, err := Annotate(trades, start, 0.033, DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, rate1, rate2)
	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, trades, "input must not be mutated")

	for _, a := range first {
		assert.Equal(t, float64(a.RawReturn)-float64(a.RFRAmount), float64(a.ExcessReturn))
		assert.Equal(t, Classify(a.Trade), a.Win)
	}
}

func TestAnalyzer_ClassifyTrades(t *testing.T) {
	a := newTestAnalyzer(DefaultConfig())

	summary, err := a.ClassifyTrades(context.Background(), sampleTrades())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Wins)
	assert.Equal(t, 1, summary.Losses)

	_, err = a.ClassifyTrades(context.Background(), []contracts.TradeRecord{
		trade(contracts.OrderType("SHORT"), 1, 2, at(2, 0)),
	})
	assert.ErrorIs(t, err, contracts.ErrInvalidOrderType)

	_, err = a.ClassifyTrades(context.Background(), nil)
	assert.ErrorIs(t, err, contracts.ErrEmptyTradeSet)
}
