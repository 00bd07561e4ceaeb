package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/wonny/tradecalc/internal/contracts"
	"github.com/wonny/tradecalc/internal/observability"
	"github.com/wonny/tradecalc/internal/performance"
	"github.com/wonny/tradecalc/pkg/logger"
)

// PerformanceHandler serves the trade performance endpoints
type PerformanceHandler struct {
	base
	analyzer *performance.Analyzer
}

// NewPerformanceHandler creates a new performance handler
func NewPerformanceHandler(
	analyzer *performance.Analyzer,
	profiles ProfileSource,
	cache ResponseCache,
	metrics *observability.Metrics,
	log *logger.Logger,
) *PerformanceHandler {
	return &PerformanceHandler{
		base: base{
			profiles: profiles,
			cache:    cache,
			metrics:  metrics,
			logger:   log,
		},
		analyzer: analyzer,
	}
}

// SharpeRequest is the body of /api/calc-sharpe
type SharpeRequest struct {
	TradeData          json.RawMessage      `json:"trade_data"`
	StartDate          *contracts.Timestamp `json:"start_date"`
	EndDate            *contracts.Timestamp `json:"end_date"`
	AnnualRiskFreeRate *float64             `json:"annual_risk_free_rate"`
}

// WinsRequest is the body of /api/calc-wins
type WinsRequest struct {
	TradeData json.RawMessage `json:"trade_data"`
}

func decodeTrades(raw json.RawMessage) ([]contracts.TradeRecord, error) {
	var trades []contracts.TradeRecord
	if err := contracts.DecodeTable(raw, &trades); err != nil {
		if contracts.IsClientError(err) {
			return nil, err
		}
		return nil, badRequest(fmt.Sprintf("Invalid trade_data: %v", err))
	}
	return trades, nil
}

// DecodeSharpeRequest turns a calc-sharpe body into an analyzer request.
// The CLI reads the same document from a file.
func DecodeSharpeRequest(body []byte) (performance.Request, error) {
	var req SharpeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		if contracts.IsClientError(err) {
			return performance.Request{}, err
		}
		return performance.Request{}, badRequest("Invalid request body")
	}
	if req.StartDate == nil {
		return performance.Request{}, badRequest("start_date is required")
	}

	trades, err := decodeTrades(req.TradeData)
	if err != nil {
		return performance.Request{}, err
	}

	preq := performance.Request{
		Trades:             trades,
		StartDate:          req.StartDate.Time,
		AnnualRiskFreeRate: req.AnnualRiskFreeRate,
	}
	if req.EndDate != nil {
		preq.EndDate = req.EndDate.Time
	}
	return preq, nil
}

// CalcSharpe returns ROI, Sharpe ratio and the daily breakdown for a trade set
// GET|POST /api/calc-sharpe
func (h *PerformanceHandler) CalcSharpe(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "calc-sharpe", func(ctx context.Context, body []byte) (interface{}, error) {
		preq, err := DecodeSharpeRequest(body)
		if err != nil {
			return nil, err
		}

		report, err := h.analyzer.Analyze(ctx, preq)
		if err != nil {
			return nil, err
		}
		if h.metrics != nil {
			h.metrics.TradesAnalyzed.Add(float64(len(preq.Trades)))
		}
		return report, nil
	})
}

// CalcWins labels every trade as a win or a loss
// GET|POST /api/calc-wins
func (h *PerformanceHandler) CalcWins(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "calc-wins", func(ctx context.Context, body []byte) (interface{}, error) {
		var req WinsRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return nil, badRequest("Invalid request body")
		}

		trades, err := decodeTrades(req.TradeData)
		if err != nil {
			return nil, err
		}

		summary, err := h.analyzer.ClassifyTrades(ctx, trades)
		if err != nil {
			return nil, err
		}
		return summary, nil
	})
}
