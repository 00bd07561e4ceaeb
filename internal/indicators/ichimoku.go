package indicators

// Ichimoku column names
const (
	ColumnTenkan  = "tenkan_sen"
	ColumnKijun   = "kijun_sen"
	ColumnSpanA   = "senkou_span_a"
	ColumnSpanB   = "senkou_span_b"
	ColumnChikou  = "chikou_span"
	DefaultTenkan = 9
	DefaultKijun  = 26
	DefaultSenkou = 52
)

// IchimokuParams are the three lookback lengths
type IchimokuParams struct {
	Tenkan int `json:"tenkan"`
	Kijun  int `json:"kijun"`
	Senkou int `json:"senkou"`
}

// DefaultIchimoku returns the classic 9/26/52 setup
func DefaultIchimoku() IchimokuParams {
	return IchimokuParams{Tenkan: DefaultTenkan, Kijun: DefaultKijun, Senkou: DefaultSenkou}
}

// IchimokuLines holds the five cloud lines, each aligned to the input bars
type IchimokuLines struct {
	Tenkan []float64
	Kijun  []float64
	SpanA  []float64
	SpanB  []float64
	Chikou []float64
}

// Ichimoku computes the cloud. Leading spans are plotted Kijun bars ahead and the
// lagging span Kijun bars behind; within a fixed-length result this means the
// spans start late and the chikou line ends early.
func Ichimoku(high, low, closes []float64, p IchimokuParams) IchimokuLines {
	tenkan := midpoint(high, low, p.Tenkan)
	kijun := midpoint(high, low, p.Kijun)

	spanA := make([]float64, len(high))
	for i := range spanA {
		spanA[i] = (tenkan[i] + kijun[i]) / 2
	}

	return IchimokuLines{
		Tenkan: tenkan,
		Kijun:  kijun,
		SpanA:  shift(spanA, p.Kijun),
		SpanB:  shift(midpoint(high, low, p.Senkou), p.Kijun),
		Chikou: shift(closes, -p.Kijun),
	}
}
