package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/tradecalc/internal/api/handlers"
	"github.com/wonny/tradecalc/internal/contracts"
	"github.com/wonny/tradecalc/internal/performance"
	"github.com/wonny/tradecalc/internal/profile"
	"github.com/wonny/tradecalc/pkg/httputil"
	"github.com/wonny/tradecalc/pkg/logger"
)

// sharpeCmd represents the sharpe command
var sharpeCmd = &cobra.Command{
	Use:   "sharpe",
	Short: "거래 성과 리포트 계산 (ROI, Sharpe)",
	Long: `Computes the performance report for a calc-sharpe request document:

  {"trade_data": [...], "start_date": "2024-01-01", "annual_risk_free_rate": 0.033}

The report is computed locally unless --remote points at a running server.

Example:
  go run ./cmd/tradecalc sharpe --file trades.json
  go run ./cmd/tradecalc sharpe --file trades.json --wins
  go run ./cmd/tradecalc sharpe --file trades.json --remote http://localhost:8089`,
	RunE: runSharpe,
}

var (
	sharpeFile   string
	sharpeRemote string
	sharpeWins   bool
)

func init() {
	rootCmd.AddCommand(sharpeCmd)

	sharpeCmd.Flags().StringVarP(&sharpeFile, "file", "f", "", "request JSON file (- for stdin)")
	sharpeCmd.Flags().StringVar(&sharpeRemote, "remote", "", "API server base URL")
	sharpeCmd.Flags().BoolVar(&sharpeWins, "wins", false, "only classify trades as wins or losses")
}

func runSharpe(cmd *cobra.Command, args []string) error {
	body, err := readInput(sharpeFile)
	if err != nil {
		return err
	}

	cfg := offlineConfig()
	log := logger.New(cfg)

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	if sharpeRemote != "" {
		endpoint := "/api/calc-sharpe"
		if sharpeWins {
			endpoint = "/api/calc-wins"
		}
		var out json.RawMessage
		client := httputil.New(log)
		if err := client.DoJSON(ctx, strings.TrimRight(sharpeRemote, "/")+endpoint, json.RawMessage(body), &out); err != nil {
			return fmt.Errorf("remote %s: %w", endpoint, err)
		}
		return printJSON(cmd.OutOrStdout(), out)
	}

	base := performance.Config{
		Notional:           cfg.Analytics.Notional,
		AnnualRiskFreeRate: cfg.Analytics.AnnualRiskFreeRate,
	}
	profiles, err := profile.NewHolder(cfg.Analytics.ProfilePath, base, log)
	if err != nil {
		return fmt.Errorf("load analytics profile: %w", err)
	}
	analyzer := performance.NewAnalyzer(profiles, log)

	if sharpeWins {
		var req handlers.WinsRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return fmt.Errorf("invalid request: %w", err)
		}
		var trades []contracts.TradeRecord
		if err := contracts.DecodeTable(req.TradeData, &trades); err != nil {
			return fmt.Errorf("invalid trade_data: %w", err)
		}
		summary, err := analyzer.ClassifyTrades(ctx, trades)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), summary)
	}

	req, err := handlers.DecodeSharpeRequest(body)
	if err != nil {
		return err
	}
	report, err := analyzer.Analyze(ctx, req)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), report)
}
