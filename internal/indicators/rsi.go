package indicators

import "math"

// RSI computes the Relative Strength Index with Wilder's smoothing.
// The first value lands at index p (p deltas seed the averages with an SMA);
// earlier slots are NaN. A window with no losses reads 100.
func RSI(x []float64, p int) []float64 {
	if p <= 0 {
		return nil
	}
	out := nanSlice(len(x))
	if len(x) <= p {
		return out
	}

	var avgGain, avgLoss float64
	for i := 1; i <= p; i++ {
		gain, loss := split(x[i] - x[i-1])
		avgGain += gain
		avgLoss += loss
	}
	avgGain /= float64(p)
	avgLoss /= float64(p)
	out[p] = strength(avgGain, avgLoss)

	n := float64(p)
	for i := p + 1; i < len(x); i++ {
		gain, loss := split(x[i] - x[i-1])
		avgGain = (avgGain*(n-1) + gain) / n
		avgLoss = (avgLoss*(n-1) + loss) / n
		out[i] = strength(avgGain, avgLoss)
	}
	return out
}

func split(delta float64) (gain, loss float64) {
	if delta > 0 {
		return delta, 0
	}
	return 0, -delta
}

func strength(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			// flat series
			return math.NaN()
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
