package contracts

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"
)

func TestOrderType_Direction(t *testing.T) {
	tests := []struct {
		orderType OrderType
		long      bool
		short     bool
	}{
		{OrderTypeBuy, true, false},
		{OrderTypeBuyStop, true, false},
		{OrderTypeSell, false, true},
		{OrderTypeSellStop, false, true},
		{OrderType("HOLD"), false, false},
		{OrderType(""), false, false},
	}

	for _, tt := range tests {
		if got := tt.orderType.IsLong(); got != tt.long {
			t.Errorf("%q.IsLong() = %v, want %v", tt.orderType, got, tt.long)
		}
		if got := tt.orderType.IsShort(); got != tt.short {
			t.Errorf("%q.IsShort() = %v, want %v", tt.orderType, got, tt.short)
		}
		if got := tt.orderType.Valid(); got != (tt.long || tt.short) {
			t.Errorf("%q.Valid() = %v", tt.orderType, got)
		}
	}
}

func TestTradeRecord_UnmarshalJSON(t *testing.T) {
	data := []byte(`{
		"order_type": "buy_stop",
		"entry_time": 1705305600000,
		"exit_time": "2024-01-16T09:30:00Z",
		"entry_price": "100.25",
		"exit_price": 101
	}`)

	var tr TradeRecord
	if err := json.Unmarshal(data, &tr); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if tr.OrderType != OrderTypeBuyStop {
		t.Errorf("OrderType = %q, want BUY_STOP", tr.OrderType)
	}
	if !tr.EntryTime.Equal(time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)) {
		t.Errorf("EntryTime = %v", tr.EntryTime)
	}
	if tr.ExitTime.Date() != "2024-01-16" {
		t.Errorf("ExitTime date = %s, want 2024-01-16", tr.ExitTime.Date())
	}
	if tr.EntryPrice != 100.25 || tr.ExitPrice != 101 {
		t.Errorf("prices = %v/%v, want 100.25/101", tr.EntryPrice, tr.ExitPrice)
	}
}

func TestTradeRecord_UnmarshalJSON_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{
			name:    "zero entry price",
			data:    `{"order_type":"BUY","entry_time":0,"exit_time":0,"entry_price":0,"exit_price":1}`,
			wantErr: ErrInvalidPrice,
		},
		{
			name:    "missing exit price",
			data:    `{"order_type":"BUY","entry_time":0,"exit_time":0,"entry_price":1}`,
			wantErr: ErrInvalidPrice,
		},
		{
			name:    "missing exit time",
			data:    `{"order_type":"BUY","entry_time":"2024-01-02T09:00:00Z","entry_price":1,"exit_price":2}`,
			wantErr: ErrMalformedTimestamp,
		},
		{
			name:    "missing entry time",
			data:    `{"order_type":"SELL","exit_time":1704186000000,"entry_price":1,"exit_price":2}`,
			wantErr: ErrMalformedTimestamp,
		},
		{
			name:    "epoch out of range",
			data:    `{"order_type":"BUY","entry_time":1e30,"exit_time":0,"entry_price":1,"exit_price":2}`,
			wantErr: ErrMalformedTimestamp,
		},
		{
			name:    "garbage exit time",
			data:    `{"order_type":"BUY","entry_time":0,"exit_time":"yesterday","entry_price":1,"exit_price":1}`,
			wantErr: ErrMalformedTimestamp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tr TradeRecord
			err := json.Unmarshal([]byte(tt.data), &tr)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeTable(t *testing.T) {
	array := `[{"order_type":"SELL","entry_time":0,"exit_time":86400000,"entry_price":100,"exit_price":90}]`
	embedded, _ := json.Marshal(array)

	for name, raw := range map[string]json.RawMessage{
		"array":    json.RawMessage(array),
		"embedded": json.RawMessage(embedded),
	} {
		t.Run(name, func(t *testing.T) {
			var trades []TradeRecord
			if err := DecodeTable(raw, &trades); err != nil {
				t.Fatalf("DecodeTable failed: %v", err)
			}
			if len(trades) != 1 || trades[0].OrderType != OrderTypeSell {
				t.Errorf("got %+v", trades)
			}
		})
	}

	var trades []TradeRecord
	if err := DecodeTable(nil, &trades); err == nil {
		t.Error("expected error for missing table")
	}
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	for _, in := range []string{
		"2024-03-01",
		"2024-03-01 00:00:00",
		"2024-03-01T00:00:00",
		"2024-03-01T09:00:00+09:00",
		"1709251200000",
	} {
		ts, err := ParseTimestamp(in)
		if err != nil {
			t.Errorf("ParseTimestamp(%q) error: %v", in, err)
			continue
		}
		if !ts.Equal(want) {
			t.Errorf("ParseTimestamp(%q) = %v, want %v", in, ts.Time, want)
		}
	}

	for _, bad := range []string{"03/01/2024", "1e30", "-1e19", "9223372036854775808"} {
		if _, err := ParseTimestamp(bad); !errors.Is(err, ErrMalformedTimestamp) {
			t.Errorf("ParseTimestamp(%q): expected ErrMalformedTimestamp, got %v", bad, err)
		}
	}
}

func TestTimestamp_JSON(t *testing.T) {
	ts := FromMillis(1709251200000)

	data, err := json.Marshal(ts)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != "1709251200000" {
		t.Errorf("Marshal = %s", data)
	}

	var decoded Timestamp
	if err := json.Unmarshal([]byte(`null`), &decoded); !errors.Is(err, ErrMalformedTimestamp) {
		t.Errorf("null should be malformed, got %v", err)
	}
}

func TestFloat_MarshalJSON(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1.5, "1.5"},
		{-200, "-200"},
		{math.NaN(), "null"},
		{math.Inf(1), "null"},
		{math.Inf(-1), "null"},
	}

	for _, tt := range tests {
		data, err := json.Marshal(Float(tt.in))
		if err != nil {
			t.Fatalf("Marshal(%v) error: %v", tt.in, err)
		}
		if string(data) != tt.want {
			t.Errorf("Marshal(%v) = %s, want %s", tt.in, data, tt.want)
		}
	}

	var f Float
	if err := json.Unmarshal([]byte("null"), &f); err != nil || !math.IsNaN(float64(f)) {
		t.Errorf("null should decode to NaN, got %v (err %v)", f, err)
	}
}
