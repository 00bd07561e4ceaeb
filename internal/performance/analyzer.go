package performance

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/wonny/tradecalc/internal/contracts"
	"github.com/wonny/tradecalc/pkg/logger"
	"github.com/wonny/tradecalc/pkg/tracing"
)

// Request is the input of one Sharpe analysis
type Request struct {
	Trades    []contracts.TradeRecord
	StartDate time.Time
	// EndDate is accepted for interface compatibility; the computation ignores it
	EndDate time.Time
	// AnnualRiskFreeRate overrides the configured default when set
	AnnualRiskFreeRate *float64
}

// Analyzer runs the trade performance pipeline:
// validate → classify → accrue → attribute → aggregate daily → Sharpe → report.
// ⭐ SSOT: 성과 분석 로직은 여기서만
type Analyzer struct {
	source ConfigSource
	logger *logger.Logger
}

// NewAnalyzer creates a new performance analyzer
func NewAnalyzer(source ConfigSource, log *logger.Logger) *Analyzer {
	return &Analyzer{
		source: source,
		logger: log,
	}
}

// Analyze computes the SharpeReport for one request
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*contracts.SharpeReport, error) {
	cfg := a.source.PerformanceConfig()

	annualRate := cfg.AnnualRiskFreeRate
	if req.AnnualRiskFreeRate != nil {
		annualRate = *req.AnnualRiskFreeRate
	}

	_, span := tracing.StartSpan(ctx, "performance.Analyze",
		attribute.Int("trades", len(req.Trades)),
		attribute.Float64("annual_risk_free_rate", annualRate),
	)
	defer span.End()

	annotated, dailyRFR, err := Annotate(req.Trades, req.StartDate, annualRate, cfg)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	daily := AggregateDaily(annotated)

	stats, err := ComputeStats(annotated, daily, dailyRFR, cfg.Notional)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("compute sharpe: %w", err)
	}

	report := BuildReport(annotated, daily, stats, annualRate, dailyRFR)

	a.logger.WithFields(map[string]interface{}{
		"trades":       report.TradeCount,
		"trading_days": report.TradingDays(),
		"max_trades":   stats.MaxTrades,
		"roi":          stats.ROI,
		"sharpe":       stats.Sharpe,
		"win_rate":     float64(report.WinRate),
	}).Debug("Performance analysis completed")

	return report, nil
}

// ClassifyTrades runs only the win/loss stage
func (a *Analyzer) ClassifyTrades(ctx context.Context, trades []contracts.TradeRecord) (*contracts.WinLossSummary, error) {
	_, span := tracing.StartSpan(ctx, "performance.ClassifyTrades", attribute.Int("trades", len(trades)))
	defer span.End()

	if err := Validate(trades); err != nil {
		span.RecordError(err)
		return nil, err
	}

	return ClassifyAll(trades), nil
}

// Validate rejects empty sets and unknown directions before any arithmetic
func Validate(trades []contracts.TradeRecord) error {
	if len(trades) == 0 {
		return contracts.ErrEmptyTradeSet
	}
	for i, t := range trades {
		if !t.OrderType.Valid() {
			return &contracts.TradeError{
				Index:     i,
				OrderType: t.OrderType,
				Err:       contracts.ErrInvalidOrderType,
			}
		}
	}
	return nil
}

// Annotate builds one derived record per input trade, in input order.
// Returns the request-level daily risk-free rate alongside.
func Annotate(trades []contracts.TradeRecord, start time.Time, annualRate float64, cfg Config) ([]contracts.AnnotatedTrade, float64, error) {
	if err := Validate(trades); err != nil {
		return nil, 0, err
	}

	dailyRFR := DailyRate(annualRate)
	out := make([]contracts.AnnotatedTrade, len(trades))

	for i, t := range trades {
		days := DaysFromStart(t.ExitTime.Time, start)
		if cfg.ClampNegativeDays && days < 0 {
			days = 0
		}
		accrual := Accrue(dailyRFR, days, cfg.Notional)

		raw, excess, err := Attribute(t, accrual.Amount, cfg.Notional)
		if err != nil {
			return nil, 0, &contracts.TradeError{Index: i, OrderType: t.OrderType, Err: contracts.ErrInvalidOrderType}
		}

		out[i] = contracts.AnnotatedTrade{
			Trade:         t,
			Win:           Classify(t),
			DaysFromStart: accrual.Days,
			CumulativeRFR: contracts.Float(accrual.Cumulative),
			RFRAmount:     contracts.Float(accrual.Amount),
			RawReturn:     contracts.Float(raw),
			ExcessReturn:  contracts.Float(excess),
		}
	}

	return out, dailyRFR, nil
}
