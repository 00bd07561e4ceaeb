package performance

import "github.com/wonny/tradecalc/internal/contracts"

// BuildReport assembles the response. No computation beyond tallying wins.
func BuildReport(
	trades []contracts.AnnotatedTrade,
	daily contracts.DailyBreakdown,
	stats Stats,
	annualRate, dailyRFR float64,
) *contracts.SharpeReport {
	report := &contracts.SharpeReport{
		ROI:                contracts.Float(stats.ROI),
		SharpeRatio:        contracts.Float(stats.Sharpe),
		DailyBreakdown:     daily,
		RawReturn:          contracts.Float(stats.RawReturn),
		AnnualRiskFreeRate: annualRate,
		DailyRFR:           contracts.Float(dailyRFR),
		TradeCount:         len(trades),
	}

	for _, t := range trades {
		if t.Win {
			report.Wins++
		} else {
			report.Losses++
		}
	}
	report.WinRate = contracts.Float(winRate(report.Wins, len(trades)))

	return report
}
