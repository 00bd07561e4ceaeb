package contracts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar-day key used in daily breakdowns
const DateLayout = "2006-01-02"

// accepted string layouts, tried in order
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	DateLayout,
}

// Timestamp is a UTC instant decoded from epoch milliseconds or a date string.
// Marshals back to epoch milliseconds.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t in UTC
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC()}
}

// FromMillis converts epoch milliseconds
func FromMillis(ms int64) Timestamp {
	return Timestamp{Time: time.UnixMilli(ms).UTC()}
}

// ParseTimestamp accepts epoch milliseconds or one of the supported layouts
func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}, fmt.Errorf("%w: empty value", ErrMalformedTimestamp)
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return millisFromFloat(f)
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewTimestamp(t), nil
		}
	}

	return Timestamp{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, s)
}

func millisFromFloat(f float64) (Timestamp, error) {
	// float64(math.MaxInt64) rounds up to 2^63, so >= keeps int64(f) in range
	if math.IsNaN(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return Timestamp{}, fmt.Errorf("%w: %v", ErrMalformedTimestamp, f)
	}
	return FromMillis(int64(f)), nil
}

// Millis returns epoch milliseconds
func (ts Timestamp) Millis() int64 {
	return ts.Time.UnixMilli()
}

// Date returns the UTC calendar-day key (YYYY-MM-DD)
func (ts Timestamp) Date() string {
	return ts.Time.UTC().Format(DateLayout)
}

// UnmarshalJSON accepts a JSON number (ms) or string
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("%w: null", ErrMalformedTimestamp)
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedTimestamp, err)
		}
		parsed, err := ParseTimestamp(s)
		if err != nil {
			return err
		}
		*ts = parsed
		return nil
	}

	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrMalformedTimestamp, data)
	}
	parsed, err := millisFromFloat(f)
	if err != nil {
		return err
	}
	*ts = parsed
	return nil
}

// MarshalJSON writes epoch milliseconds
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(ts.Millis(), 10)), nil
}
