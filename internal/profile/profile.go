package profile

import "github.com/wonny/tradecalc/internal/performance"

// Profile is the analytics profile: engine parameters plus indicator defaults
type Profile struct {
	Meta       Meta       `yaml:"meta" json:"meta"`
	Engine     Engine     `yaml:"engine" json:"engine"`
	Accrual    Accrual    `yaml:"accrual" json:"accrual"`
	Indicators Indicators `yaml:"indicators" json:"indicators"`
}

// Meta 메타 정보
type Meta struct {
	ProfileID string `yaml:"profile_id" json:"profile_id"`
	Version   string `yaml:"version" json:"version"`
}

// Engine holds the scaling parameters of the performance engine
type Engine struct {
	Notional           float64 `yaml:"notional" json:"notional"`
	AnnualRiskFreeRate float64 `yaml:"annual_risk_free_rate" json:"annual_risk_free_rate"`
}

// Accrual controls the risk-free benchmark
type Accrual struct {
	ClampNegativeDays bool `yaml:"clamp_negative_days" json:"clamp_negative_days"`
}

// Indicators holds defaults applied when a request omits a parameter
type Indicators struct {
	RSILength      int      `yaml:"rsi_length" json:"rsi_length"`
	EMALength      int      `yaml:"ema_length" json:"ema_length"`
	AccuracyFilter bool     `yaml:"accuracy_filter" json:"accuracy_filter"`
	Ichimoku       Ichimoku `yaml:"ichimoku" json:"ichimoku"`
}

type Ichimoku struct {
	Tenkan int `yaml:"tenkan" json:"tenkan"`
	Kijun  int `yaml:"kijun" json:"kijun"`
	Senkou int `yaml:"senkou" json:"senkou"`
}

// Default returns the built-in profile
func Default() *Profile {
	return &Profile{
		Meta: Meta{ProfileID: "default", Version: "1"},
		Engine: Engine{
			Notional:           performance.DefaultNotional,
			AnnualRiskFreeRate: performance.DefaultAnnualRiskFreeRate,
		},
		Indicators: Indicators{
			RSILength:      14,
			EMALength:      20,
			AccuracyFilter: true,
			Ichimoku:       Ichimoku{Tenkan: 9, Kijun: 26, Senkou: 52},
		},
	}
}

// Seeded returns the defaults with the engine parameters taken from base
func Seeded(base performance.Config) *Profile {
	p := Default()
	p.Engine.Notional = base.Notional
	p.Engine.AnnualRiskFreeRate = base.AnnualRiskFreeRate
	p.Accrual.ClampNegativeDays = base.ClampNegativeDays
	return p
}

// Performance converts the profile into engine parameters
func (p *Profile) Performance() performance.Config {
	return performance.Config{
		Notional:           p.Engine.Notional,
		AnnualRiskFreeRate: p.Engine.AnnualRiskFreeRate,
		ClampNegativeDays:  p.Accrual.ClampNegativeDays,
	}
}
