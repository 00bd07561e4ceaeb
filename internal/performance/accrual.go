package performance

import (
	"math"
	"time"
)

const day = 24 * time.Hour

// DailyRate converts an annual risk-free rate into the constant daily
// compounding rate: (1 + r)^(1/365) - 1.
func DailyRate(annualRate float64) float64 {
	return math.Pow(1+annualRate, 1/DaysPerYear) - 1
}

// DaysFromStart returns whole days between start and exit, floored.
// A trade exiting 1h before start is day -1, matching timedelta.days.
func DaysFromStart(exit, start time.Time) int {
	d := exit.Sub(start)
	days := d / day
	if d%day != 0 && d < 0 {
		days--
	}
	return int(days)
}

// Accrual is the risk-free benchmark applicable to one trade at its exit date
type Accrual struct {
	Days       int
	Cumulative float64 // rate, daily_rfr * days
	Amount     float64 // notional * cumulative
}

// Accrue applies linear (not compounded) accrual of the daily rate over days
func Accrue(dailyRate float64, days int, notional float64) Accrual {
	cumulative := dailyRate * float64(days)
	return Accrual{
		Days:       days,
		Cumulative: cumulative,
		Amount:     notional * cumulative,
	}
}
