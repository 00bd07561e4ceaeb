package profile

import "fmt"

// ValidationError 검증 실패 (로드 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

// Validate checks all required constraints
func Validate(p *Profile) error {
	// === Engine ===
	if p.Engine.Notional <= 0 {
		return ValidationError{"engine.notional", "must be > 0"}
	}
	if p.Engine.AnnualRiskFreeRate <= -1 {
		return ValidationError{"engine.annual_risk_free_rate", "must be > -1"}
	}

	// === Indicators ===
	if p.Indicators.RSILength < 1 {
		return ValidationError{"indicators.rsi_length", "must be >= 1"}
	}
	if p.Indicators.EMALength < 1 {
		return ValidationError{"indicators.ema_length", "must be >= 1"}
	}

	ich := p.Indicators.Ichimoku
	if ich.Tenkan < 1 || ich.Kijun < 1 || ich.Senkou < 1 {
		return ValidationError{"indicators.ichimoku", "all lengths must be >= 1"}
	}
	if ich.Tenkan > ich.Kijun || ich.Kijun > ich.Senkou {
		return ValidationError{"indicators.ichimoku", fmt.Sprintf("must satisfy tenkan <= kijun <= senkou, got %d/%d/%d", ich.Tenkan, ich.Kijun, ich.Senkou)}
	}

	return nil
}

// Warn checks recommended constraints (non-fatal)
func Warn(p *Profile) []Warning {
	var warnings []Warning

	if p.Engine.AnnualRiskFreeRate > 0.2 {
		warnings = append(warnings, Warning{
			Code:    "HIGH_RISK_FREE_RATE",
			Message: fmt.Sprintf("annual_risk_free_rate=%.4f looks like a percentage, expected a fraction", p.Engine.AnnualRiskFreeRate),
		})
	}

	if p.Engine.AnnualRiskFreeRate < 0 {
		warnings = append(warnings, Warning{
			Code:    "NEGATIVE_RISK_FREE_RATE",
			Message: "negative annual_risk_free_rate inflates excess returns",
		})
	}

	if !p.Accrual.ClampNegativeDays {
		warnings = append(warnings, Warning{
			Code:    "NEGATIVE_DAYS_ALLOWED",
			Message: "trades exiting before start_date get a negative risk-free charge",
		})
	}

	return warnings
}
