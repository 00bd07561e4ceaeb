package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/tradecalc/internal/contracts"
	"github.com/wonny/tradecalc/internal/indicators"
	"github.com/wonny/tradecalc/internal/profile"
)

// indicatorCmd represents the indicator command
var indicatorCmd = &cobra.Command{
	Use:   "indicator",
	Short: "기술 지표 계산",
	Long: `Computes an indicator over a candle file. The file holds the candle table
(a JSON array of candles, or the same array embedded as a string).

Subcommands:
  rsi       - Relative Strength Index
  ema       - Exponential moving average
  ichimoku  - Ichimoku cloud

Example:
  go run ./cmd/tradecalc indicator rsi --file candles.json --length 14
  go run ./cmd/tradecalc indicator ema --file candles.json --length 20 --keep-warmup
  go run ./cmd/tradecalc indicator ichimoku --file candles.json --kijun 26`,
}

var (
	indicatorFile   string
	indicatorLength int
	indicatorSource string
	keepWarmup      bool
	ichimokuTenkan  int
	ichimokuKijun   int
	ichimokuSenkou  int
)

var (
	rsiCmd = &cobra.Command{
		Use:   "rsi",
		Short: "RSI 계산",
		RunE: withCandles(func(cmd *cobra.Command, series contracts.CandleSeries, defaults profile.Indicators) (interface{}, error) {
			period := pick(cmd, "length", indicatorLength, defaults.RSILength)
			return indicators.ApplyRSI(series, period, indicatorSource)
		}),
	}

	emaCmd = &cobra.Command{
		Use:   "ema",
		Short: "EMA 계산",
		RunE: withCandles(func(cmd *cobra.Command, series contracts.CandleSeries, defaults profile.Indicators) (interface{}, error) {
			period := pick(cmd, "length", indicatorLength, defaults.EMALength)
			dropWarmup := defaults.AccuracyFilter
			if cmd.Flags().Changed("keep-warmup") {
				dropWarmup = !keepWarmup
			}
			return indicators.ApplyEMA(series, period, indicatorSource, dropWarmup)
		}),
	}

	ichimokuCmd = &cobra.Command{
		Use:   "ichimoku",
		Short: "일목균형표 계산",
		RunE: withCandles(func(cmd *cobra.Command, series contracts.CandleSeries, defaults profile.Indicators) (interface{}, error) {
			p := indicators.IchimokuParams{
				Tenkan: pick(cmd, "tenkan", ichimokuTenkan, defaults.Ichimoku.Tenkan),
				Kijun:  pick(cmd, "kijun", ichimokuKijun, defaults.Ichimoku.Kijun),
				Senkou: pick(cmd, "senkou", ichimokuSenkou, defaults.Ichimoku.Senkou),
			}
			return indicators.ApplyIchimoku(series, p)
		}),
	}
)

func init() {
	rootCmd.AddCommand(indicatorCmd)
	indicatorCmd.AddCommand(rsiCmd, emaCmd, ichimokuCmd)

	indicatorCmd.PersistentFlags().StringVarP(&indicatorFile, "file", "f", "", "candle JSON file (- for stdin)")

	for _, c := range []*cobra.Command{rsiCmd, emaCmd} {
		c.Flags().IntVar(&indicatorLength, "length", 0, "lookback length (default from profile)")
		c.Flags().StringVar(&indicatorSource, "source", contracts.ColumnClose, "source column")
	}
	emaCmd.Flags().BoolVar(&keepWarmup, "keep-warmup", false, "keep rows before the first EMA value")

	ichimokuCmd.Flags().IntVar(&ichimokuTenkan, "tenkan", 0, "conversion line length")
	ichimokuCmd.Flags().IntVar(&ichimokuKijun, "kijun", 0, "base line length")
	ichimokuCmd.Flags().IntVar(&ichimokuSenkou, "senkou", 0, "leading span B length")
}

type indicatorFunc func(cmd *cobra.Command, series contracts.CandleSeries, defaults profile.Indicators) (interface{}, error)

// withCandles loads the candle file and the profile defaults before running fn
func withCandles(fn indicatorFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		data, err := readInput(indicatorFile)
		if err != nil {
			return err
		}

		var series contracts.CandleSeries
		if err := contracts.DecodeTable(data, &series); err != nil {
			return fmt.Errorf("invalid candle data: %w", err)
		}

		defaults := profile.Default().Indicators
		if path := offlineConfig().Analytics.ProfilePath; path != "" {
			p, _, err := profile.Load(path)
			if err != nil {
				return fmt.Errorf("load analytics profile: %w", err)
			}
			defaults = p.Indicators
		}

		rows, err := fn(cmd, series, defaults)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), rows)
	}
}

// pick returns the flag value when it was set, otherwise def
func pick(cmd *cobra.Command, flag string, value, def int) int {
	if cmd.Flags().Changed(flag) {
		return value
	}
	return def
}
