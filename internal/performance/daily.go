package performance

import (
	"sort"

	"github.com/wonny/tradecalc/internal/contracts"
)

type dayAccumulator struct {
	count     int
	excessSum float64
	rfrFirst  float64
}

// AggregateDaily buckets trades by the UTC calendar date of exit_time.
// Count and sum do not depend on iteration order; rfr_amount_first is the
// first trade of the bucket in input order.
func AggregateDaily(trades []contracts.AnnotatedTrade) contracts.DailyBreakdown {
	buckets := make(map[string]*dayAccumulator)

	for _, t := range trades {
		date := t.Trade.ExitTime.Date()
		acc, ok := buckets[date]
		if !ok {
			acc = &dayAccumulator{rfrFirst: float64(t.RFRAmount)}
			buckets[date] = acc
		}
		acc.count++
		acc.excessSum += float64(t.ExcessReturn)
	}

	breakdown := make(contracts.DailyBreakdown, 0, len(buckets))
	for date, acc := range buckets {
		breakdown = append(breakdown, contracts.DailyAggregate{
			Date:            date,
			TradeCount:      acc.count,
			ExcessReturnSum: contracts.Float(acc.excessSum),
			RFRAmountFirst:  contracts.Float(acc.rfrFirst),
		})
	}

	// YYYY-MM-DD sorts chronologically
	sort.Slice(breakdown, func(i, j int) bool {
		return breakdown[i].Date < breakdown[j].Date
	})

	return breakdown
}
