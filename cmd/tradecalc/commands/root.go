package commands

import (
	"github.com/spf13/cobra"

	"github.com/wonny/tradecalc/pkg/config"
)

var (
	// Global flags
	profilePath string
	verbose     bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tradecalc",
	Short: "Trade performance and indicator calculator",
	Long: `tradecalc computes trade performance reports (ROI, Sharpe ratio, daily
breakdown, win/loss) and technical indicators (RSI, EMA, Ichimoku).

Usage:
  go run ./cmd/tradecalc [command]

Examples:
  go run ./cmd/tradecalc serve
  go run ./cmd/tradecalc sharpe --file trades.json
  go run ./cmd/tradecalc indicator rsi --file candles.json --length 14
  go run ./cmd/tradecalc profile validate config/profile/default.yaml`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&profilePath, "profile", "", "analytics profile YAML (default: ANALYTICS_PROFILE)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// offlineConfig is the configuration for commands that do not start the server.
// Environment values are used when present; a broken environment falls back to defaults.
func offlineConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.Default()
	}
	if profilePath != "" {
		cfg.Analytics.ProfilePath = profilePath
	}
	cfg.LogFormat = "console"
	if verbose {
		cfg.LogLevel = "debug"
	} else {
		cfg.LogLevel = "warn"
	}
	return cfg
}
