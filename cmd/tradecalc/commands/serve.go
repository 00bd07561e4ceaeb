package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/tradecalc/internal/api"
	"github.com/wonny/tradecalc/internal/api/handlers"
	"github.com/wonny/tradecalc/internal/observability"
	"github.com/wonny/tradecalc/internal/performance"
	"github.com/wonny/tradecalc/internal/profile"
	"github.com/wonny/tradecalc/internal/scheduler"
	"github.com/wonny/tradecalc/internal/scheduler/jobs"
	"github.com/wonny/tradecalc/pkg/config"
	"github.com/wonny/tradecalc/pkg/logger"
	"github.com/wonny/tradecalc/pkg/redis"
	"github.com/wonny/tradecalc/pkg/tracing"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET  /health              - Health check
  GET  /metrics             - Prometheus metrics
  POST /api/calc-sharpe     - ROI, Sharpe ratio, daily breakdown
  POST /api/calc-wins       - Win/loss classification
  POST /api/calc-rsi        - RSI
  POST /api/calc-ema        - EMA
  POST /api/calc-ichimoku   - Ichimoku cloud

Engine parameters: keys set in the --profile file win, then ANALYTICS_NOTIONAL
and ANNUAL_RISK_FREE_RATE, then built-in defaults.
X-Forwarded-For is honored only from TRUSTED_PROXIES (IPs or CIDRs).

Example:
  go run ./cmd/tradecalc serve
  go run ./cmd/tradecalc serve --port 8080 --profile config/profile/default.yaml`,
	RunE: runServe,
}

var (
	servePort string
)

const limiterIdle = 10 * time.Minute

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "API 서버 포트 (default: PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if servePort != "" {
		cfg.Port = servePort
	}
	if profilePath != "" {
		cfg.Analytics.ProfilePath = profilePath
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	// 2. Initialize logger and tracing
	log := logger.New(cfg)

	shutdownTracing, err := tracing.Init(cfg)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(ctx)
	}()

	// 3. Analytics profile
	base := performance.Config{
		Notional:           cfg.Analytics.Notional,
		AnnualRiskFreeRate: cfg.Analytics.AnnualRiskFreeRate,
	}
	profiles, err := profile.NewHolder(cfg.Analytics.ProfilePath, base, log)
	if err != nil {
		return fmt.Errorf("load analytics profile: %w", err)
	}
	current := profiles.Current()
	for _, w := range profile.Warn(&current) {
		log.WithFields(map[string]interface{}{"code": w.Code}).Warn(w.Message)
	}

	// 4. Redis (optional)
	rdb, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer rdb.Close()
	cache := redis.NewCache(rdb, "tradecalc", cfg.Redis.CacheTTL)

	// 5. Metrics and rate limiting
	var metrics *observability.Metrics
	if cfg.MetricsEnabled {
		metrics = observability.NewMetrics()
	}
	limiter := api.NewClientLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, redis.NewRateLimiter(rdb, "tradecalc"))
	if limiter != nil {
		if err := limiter.TrustProxies(cfg.RateLimit.TrustedProxies); err != nil {
			return fmt.Errorf("configure rate limiter: %w", err)
		}
	}

	// 6. Handlers and router
	analyzer := performance.NewAnalyzer(profiles, log)
	router := api.NewRouter(api.RouterDeps{
		Performance: handlers.NewPerformanceHandler(analyzer, profiles, cache, metrics, log),
		Indicators:  handlers.NewIndicatorHandler(profiles, cache, metrics, log),
		Profiles:    profiles,
		Redis:       rdb,
		Metrics:     metrics,
		Limiter:     limiter,
		Logger:      log,
	})

	// 7. Background jobs
	sched := scheduler.New(log)
	if cfg.Analytics.ProfileReloadCron != "" && profiles.Path() != "" {
		reloader := &meteredReloader{reloader: profiles, metrics: metrics}
		if err := sched.AddJob(jobs.NewProfileReloadJob(reloader, cfg.Analytics.ProfileReloadCron, log)); err != nil {
			return fmt.Errorf("schedule profile reload: %w", err)
		}
	}
	if limiter != nil {
		if err := sched.AddJob(jobs.NewLimiterCleanupJob(limiter, limiterIdle, log)); err != nil {
			return fmt.Errorf("schedule limiter cleanup: %w", err)
		}
	}
	sched.Start()
	defer sched.Stop()

	// 8. Start server with graceful shutdown
	server := api.New(cfg, log, router)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	log.WithFields(map[string]interface{}{
		"addr":         server.Addr(),
		"profile_hash": profiles.Hash(),
		"redis":        rdb.Enabled(),
		"jobs":         sched.Jobs(),
	}).Info("API server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}

// meteredReloader counts reload outcomes
type meteredReloader struct {
	reloader jobs.Reloader
	metrics  *observability.Metrics
}

func (m *meteredReloader) Reload() (bool, error) {
	changed, err := m.reloader.Reload()
	if m.metrics != nil {
		result := "unchanged"
		switch {
		case err != nil:
			result = "error"
		case changed:
			result = "changed"
		}
		m.metrics.ProfileReloads.WithLabelValues(result).Inc()
	}
	return changed, err
}
