package performance

// Defaults used when no analytics profile overrides them
const (
	DefaultNotional           = 1_000_000.0
	DefaultAnnualRiskFreeRate = 0.033
	DaysPerYear               = 365.0
)

// Config holds the tunable engine parameters
type Config struct {
	// Notional scales percentage returns and the risk-free benchmark into amounts
	Notional float64
	// AnnualRiskFreeRate is used when a request does not carry its own rate
	AnnualRiskFreeRate float64
	// ClampNegativeDays floors days_from_start at zero for trades exiting before start_date
	ClampNegativeDays bool
}

// DefaultConfig returns the reference parameters
func DefaultConfig() Config {
	return Config{
		Notional:           DefaultNotional,
		AnnualRiskFreeRate: DefaultAnnualRiskFreeRate,
	}
}

// ConfigSource supplies the current engine parameters.
// The analytics profile holder implements it so reloads apply to the next request.
type ConfigSource interface {
	PerformanceConfig() Config
}

// StaticConfig is a ConfigSource that never changes
type StaticConfig Config

// PerformanceConfig implements ConfigSource
func (c StaticConfig) PerformanceConfig() Config {
	return Config(c)
}
