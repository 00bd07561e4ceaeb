package contracts

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Float is a float64 that survives JSON when it is NaN or ±Inf (written as null).
// Single-day Sharpe ratios are NaN by definition, so reports need this.
type Float float64

// IsFinite reports whether f is neither NaN nor infinite
func (f Float) IsFinite() bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}

// MarshalJSON writes null for non-finite values
func (f Float) MarshalJSON() ([]byte, error) {
	if !f.IsFinite() {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, float64(f), 'g', -1, 64), nil
}

// UnmarshalJSON reads null back as NaN
func (f *Float) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*f = Float(math.NaN())
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Float(v)
	return nil
}
