package performance

import (
	"fmt"

	"github.com/wonny/tradecalc/internal/contracts"
)

// RawReturn is the direction-adjusted percentage move scaled by notional
func RawReturn(t contracts.TradeRecord, notional float64) (float64, error) {
	switch {
	case t.OrderType.IsLong():
		return ((t.ExitPrice - t.EntryPrice) / t.EntryPrice) * notional, nil
	case t.OrderType.IsShort():
		return ((t.EntryPrice - t.ExitPrice) / t.EntryPrice) * notional, nil
	default:
		return 0, fmt.Errorf("%w %q", contracts.ErrInvalidOrderType, string(t.OrderType))
	}
}

// Attribute returns the raw return and the return in excess of the risk-free amount
func Attribute(t contracts.TradeRecord, rfrAmount, notional float64) (raw, excess float64, err error) {
	raw, err = RawReturn(t, notional)
	if err != nil {
		return 0, 0, err
	}
	return raw, raw - rfrAmount, nil
}
