package performance

import (
	"math"

	"github.com/wonny/tradecalc/internal/contracts"
)

// Stats holds the day-level figures behind the Sharpe ratio
type Stats struct {
	ROI       float64
	Sharpe    float64
	Mean      float64
	Std       float64
	MaxTrades int
	RawReturn float64
}

// ComputeStats derives ROI and the Sharpe ratio.
//
// ROI divides total raw return by the busiest day's notional exposure
// (max daily trade count * notional), not by trade count.
// The Sharpe ratio samples one excess-return sum per trading day and uses the
// sample standard deviation, so a single trading day yields NaN.
func ComputeStats(trades []contracts.AnnotatedTrade, daily contracts.DailyBreakdown, dailyRFR, notional float64) (Stats, error) {
	if len(daily) == 0 {
		return Stats{}, contracts.ErrEmptyTradeSet
	}

	var stats Stats
	for _, t := range trades {
		stats.RawReturn += float64(t.RawReturn)
	}

	sums := make([]float64, len(daily))
	for i, d := range daily {
		if d.TradeCount > stats.MaxTrades {
			stats.MaxTrades = d.TradeCount
		}
		sums[i] = float64(d.ExcessReturnSum)
	}

	stats.ROI = stats.RawReturn / (float64(stats.MaxTrades) * notional)
	stats.Mean = mean(sums)
	stats.Std = sampleStd(sums, stats.Mean)
	stats.Sharpe = (stats.Mean - dailyRFR) / stats.Std

	return stats, nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStd uses the n-1 denominator; undefined (NaN) below two samples
func sampleStd(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return math.NaN()
	}
	var ss float64
	for _, v := range values {
		diff := v - mean
		ss += diff * diff
	}
	return math.Sqrt(ss / float64(len(values)-1))
}
