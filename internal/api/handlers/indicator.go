package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/wonny/tradecalc/internal/contracts"
	"github.com/wonny/tradecalc/internal/indicators"
	"github.com/wonny/tradecalc/internal/observability"
	"github.com/wonny/tradecalc/pkg/logger"
)

// IndicatorHandler serves the technical indicator endpoints
type IndicatorHandler struct {
	base
}

// NewIndicatorHandler creates a new indicator handler
func NewIndicatorHandler(
	profiles ProfileSource,
	cache ResponseCache,
	metrics *observability.Metrics,
	log *logger.Logger,
) *IndicatorHandler {
	return &IndicatorHandler{
		base: base{
			profiles: profiles,
			cache:    cache,
			metrics:  metrics,
			logger:   log,
		},
	}
}

// RSIRequest is the body of /api/calc-rsi
type RSIRequest struct {
	CandlestickData json.RawMessage `json:"candlestick_data"`
	RSILength       *int            `json:"rsi_length"`
	RSIValue        *string         `json:"rsi_value"`
}

// RSIResponse echoes the effective parameters
type RSIResponse struct {
	CandlestickData []contracts.IndicatorRow `json:"candlestick_data"`
	RSILength       int                      `json:"rsi_length"`
	RSIValue        string                   `json:"rsi_value"`
}

// EMARequest is the body of /api/calc-ema
type EMARequest struct {
	CandlestickData json.RawMessage `json:"candlestick_data"`
	EMALength       *int            `json:"ema_length"`
	EMAValue        *string         `json:"ema_value"`
	AccuracyFilter  *bool           `json:"accuracy_filter"`
}

// EMAResponse echoes the effective parameters and the output column name
type EMAResponse struct {
	CandlestickData []contracts.IndicatorRow `json:"candlestick_data"`
	EMALength       int                      `json:"ema_length"`
	EMAValue        string                   `json:"ema_value"`
	AccuracyFilter  bool                     `json:"accuracy_filter"`
	EMAName         string                   `json:"ema_name"`
}

// IchimokuRequest is the body of /api/calc-ichimoku
type IchimokuRequest struct {
	CandlestickData json.RawMessage `json:"candlestick_data"`
	Tenkan          *int            `json:"tenkan"`
	Kijun           *int            `json:"kijun"`
	Senkou          *int            `json:"senkou"`
}

// IchimokuResponse echoes the effective lengths
type IchimokuResponse struct {
	CandlestickData []contracts.IndicatorRow `json:"candlestick_data"`
	indicators.IchimokuParams
}

func decodeCandles(raw json.RawMessage) (contracts.CandleSeries, error) {
	var series contracts.CandleSeries
	if err := contracts.DecodeTable(raw, &series); err != nil {
		if contracts.IsClientError(err) {
			return nil, err
		}
		return nil, badRequest(fmt.Sprintf("Invalid candlestick_data: %v", err))
	}
	return series, nil
}

// resolve applies defaults and checks the source column and the length
func resolve(lengthParam string, length *int, def int, valueParam string, value *string) (int, string, error) {
	n := def
	if length != nil {
		n = *length
	}
	if n < 1 {
		return 0, "", badRequest(invalidValue(lengthParam, n))
	}

	source := contracts.ColumnClose
	if value != nil {
		source = *value
	}
	if !contracts.IsSourceColumn(source) {
		return 0, "", badRequest(invalidValue(valueParam, source))
	}
	return n, source, nil
}

func positive(param string, v *int, def int) (int, error) {
	if v == nil {
		return def, nil
	}
	if *v < 1 {
		return 0, badRequest(invalidValue(param, *v))
	}
	return *v, nil
}

func (h *IndicatorHandler) countCandles(indicator string, n int) {
	if h.metrics != nil {
		h.metrics.CandlesProcessed.WithLabelValues(indicator).Add(float64(n))
	}
}

// CalcRSI adds an rsi column to the candles
// GET|POST /api/calc-rsi
func (h *IndicatorHandler) CalcRSI(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "calc-rsi", func(ctx context.Context, body []byte) (interface{}, error) {
		var req RSIRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return nil, badRequest("Invalid request body")
		}

		defaults := h.profiles.Current().Indicators
		period, source, err := resolve("rsi_length", req.RSILength, defaults.RSILength, "rsi_value", req.RSIValue)
		if err != nil {
			return nil, err
		}

		series, err := decodeCandles(req.CandlestickData)
		if err != nil {
			return nil, err
		}

		rows, err := indicators.ApplyRSI(series, period, source)
		if err != nil {
			return nil, err
		}
		h.countCandles("rsi", len(series))

		return RSIResponse{CandlestickData: rows, RSILength: period, RSIValue: source}, nil
	})
}

// CalcEMA adds an ema_<period> column to the candles
// GET|POST /api/calc-ema
func (h *IndicatorHandler) CalcEMA(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "calc-ema", func(ctx context.Context, body []byte) (interface{}, error) {
		var req EMARequest
		if err := json.Unmarshal(body, &req); err != nil {
			return nil, badRequest("Invalid request body")
		}

		defaults := h.profiles.Current().Indicators
		period, source, err := resolve("ema_length", req.EMALength, defaults.EMALength, "ema_value", req.EMAValue)
		if err != nil {
			return nil, err
		}

		filter := defaults.AccuracyFilter
		if req.AccuracyFilter != nil {
			filter = *req.AccuracyFilter
		}

		series, err := decodeCandles(req.CandlestickData)
		if err != nil {
			return nil, err
		}

		rows, err := indicators.ApplyEMA(series, period, source, filter)
		if err != nil {
			return nil, err
		}
		h.countCandles("ema", len(series))

		return EMAResponse{
			CandlestickData: rows,
			EMALength:       period,
			EMAValue:        source,
			AccuracyFilter:  filter,
			EMAName:         indicators.EMAName(period),
		}, nil
	})
}

// CalcIchimoku adds the Ichimoku cloud columns to the candles
// GET|POST /api/calc-ichimoku
func (h *IndicatorHandler) CalcIchimoku(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "calc-ichimoku", func(ctx context.Context, body []byte) (interface{}, error) {
		var req IchimokuRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return nil, badRequest("Invalid request body")
		}

		defaults := h.profiles.Current().Indicators.Ichimoku
		var p indicators.IchimokuParams
		var err error
		if p.Tenkan, err = positive("tenkan", req.Tenkan, defaults.Tenkan); err != nil {
			return nil, err
		}
		if p.Kijun, err = positive("kijun", req.Kijun, defaults.Kijun); err != nil {
			return nil, err
		}
		if p.Senkou, err = positive("senkou", req.Senkou, defaults.Senkou); err != nil {
			return nil, err
		}

		series, err := decodeCandles(req.CandlestickData)
		if err != nil {
			return nil, err
		}

		rows, err := indicators.ApplyIchimoku(series, p)
		if err != nil {
			return nil, err
		}
		h.countCandles("ichimoku", len(series))

		return IchimokuResponse{CandlestickData: rows, IchimokuParams: p}, nil
	})
}
