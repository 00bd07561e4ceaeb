package performance

import "github.com/wonny/tradecalc/internal/contracts"

// Classify reports whether the trade closed in the trader's favor.
// Ties are losses; unknown directions are never wins.
func Classify(t contracts.TradeRecord) bool {
	switch {
	case t.OrderType.IsLong():
		return t.ExitPrice > t.EntryPrice
	case t.OrderType.IsShort():
		return t.ExitPrice < t.EntryPrice
	default:
		return false
	}
}

// ClassifyAll labels every trade independently and tallies the result
func ClassifyAll(trades []contracts.TradeRecord) *contracts.WinLossSummary {
	summary := &contracts.WinLossSummary{
		Trades: make([]contracts.ClassifiedTrade, len(trades)),
	}

	for i, t := range trades {
		win := Classify(t)
		summary.Trades[i] = contracts.ClassifiedTrade{
			OrderType:  t.OrderType,
			EntryTime:  t.EntryTime,
			ExitTime:   t.ExitTime,
			EntryPrice: t.EntryPrice,
			ExitPrice:  t.ExitPrice,
			Win:        win,
		}
		if win {
			summary.Wins++
		} else {
			summary.Losses++
		}
	}

	summary.WinRate = contracts.Float(winRate(summary.Wins, len(trades)))
	return summary
}

func winRate(wins, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(wins) / float64(total)
}
