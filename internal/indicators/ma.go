package indicators

import "math"

// SMA over the last p points; aligned to input length with NaN during warmup.
func SMA(x []float64, p int) []float64 {
	if p <= 0 {
		return nil
	}
	out := make([]float64, len(x))
	var sum float64
	for i := range x {
		sum += x[i]
		if i >= p {
			sum -= x[i-p]
		}
		if i < p-1 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(p)
	}
	return out
}

// EMA with smoothing 2/(p+1), seeded with SMA(p) at index p-1. NaN before that.
func EMA(x []float64, p int) []float64 {
	if p <= 0 {
		return nil
	}
	out := nanSlice(len(x))
	if len(x) < p {
		return out
	}

	var seed float64
	for i := 0; i < p; i++ {
		seed += x[i]
	}
	out[p-1] = seed / float64(p)

	k := 2.0 / float64(p+1)
	for i := p; i < len(x); i++ {
		out[i] = (x[i]-out[i-1])*k + out[i-1]
	}
	return out
}

// midpoint returns (highest high + lowest low) / 2 over a trailing window of p bars
func midpoint(high, low []float64, p int) []float64 {
	out := nanSlice(len(high))
	for i := p - 1; i < len(high); i++ {
		hh, ll := math.Inf(-1), math.Inf(1)
		for j := i - p + 1; j <= i; j++ {
			hh = math.Max(hh, high[j])
			ll = math.Min(ll, low[j])
		}
		out[i] = (hh + ll) / 2
	}
	return out
}

// shift moves values forward by n positions (negative n moves them back),
// filling the vacated slots with NaN
func shift(x []float64, n int) []float64 {
	out := nanSlice(len(x))
	for i := range x {
		j := i + n
		if j >= 0 && j < len(x) {
			out[j] = x[i]
		}
	}
	return out
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
