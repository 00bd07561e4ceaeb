package contracts

import (
	"errors"
	"fmt"
)

// Analytics error taxonomy. Handlers map these to HTTP 400.
var (
	ErrInvalidOrderType   = errors.New("invalid order type")
	ErrEmptyTradeSet      = errors.New("empty trade set")
	ErrMalformedTimestamp = errors.New("malformed timestamp")
	ErrInvalidPrice       = errors.New("invalid price")

	ErrInvalidSource  = errors.New("invalid source column")
	ErrMissingColumn  = errors.New("missing column")
	ErrInvalidPeriod  = errors.New("invalid period")
	ErrEmptyCandleSet = errors.New("empty candle set")
)

// TradeError pinpoints the trade that failed validation
type TradeError struct {
	Index     int
	OrderType OrderType
	Err       error
}

func (e *TradeError) Error() string {
	return fmt.Sprintf("trade %d: %v %q", e.Index, e.Err, string(e.OrderType))
}

func (e *TradeError) Unwrap() error {
	return e.Err
}

// ColumnError names the candle column a request needed but did not carry
type ColumnError struct {
	Column string
	Row    int
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("%v: %s (row %d)", ErrMissingColumn, e.Column, e.Row)
}

func (e *ColumnError) Unwrap() error {
	return ErrMissingColumn
}

// IsClientError reports whether err stems from bad request data
func IsClientError(err error) bool {
	for _, target := range []error{
		ErrInvalidOrderType,
		ErrEmptyTradeSet,
		ErrMalformedTimestamp,
		ErrInvalidPrice,
		ErrInvalidSource,
		ErrMissingColumn,
		ErrInvalidPeriod,
		ErrEmptyCandleSet,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
