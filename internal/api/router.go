package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/tradecalc/internal/api/handlers"
	"github.com/wonny/tradecalc/internal/observability"
	"github.com/wonny/tradecalc/pkg/logger"
)

// Pinger reports the health of an optional backing service
type Pinger interface {
	Enabled() bool
	Ping(ctx context.Context) error
}

// RouterDeps groups everything the router wires together
type RouterDeps struct {
	Performance *handlers.PerformanceHandler
	Indicators  *handlers.IndicatorHandler
	Profiles    handlers.ProfileSource
	Redis       Pinger                 // optional
	Metrics     *observability.Metrics // nil disables /metrics
	Limiter     *ClientLimiter         // nil disables rate limiting
	Logger      *logger.Logger
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(deps RouterDeps) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", healthCheckHandler(deps)).Methods(http.MethodGet)
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics.Handler()).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()
	api.Use(rateLimitMiddleware(deps.Limiter, deps.Logger, deps.Metrics))

	// Trade performance
	api.HandleFunc("/calc-sharpe", deps.Performance.CalcSharpe).Methods(http.MethodGet, http.MethodPost)
	api.HandleFunc("/calc-wins", deps.Performance.CalcWins).Methods(http.MethodGet, http.MethodPost)

	// Indicators
	api.HandleFunc("/calc-rsi", deps.Indicators.CalcRSI).Methods(http.MethodGet, http.MethodPost)
	api.HandleFunc("/calc-ema", deps.Indicators.CalcEMA).Methods(http.MethodGet, http.MethodPost)
	api.HandleFunc("/calc-ichimoku", deps.Indicators.CalcIchimoku).Methods(http.MethodGet, http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// Apply middleware
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(deps.Logger, deps.Metrics))
	r.Use(recoveryMiddleware(deps.Logger))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(deps RouterDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := map[string]interface{}{
			"status":  "ok",
			"service": logger.ServiceName,
		}
		if deps.Profiles != nil {
			body["profile_hash"] = deps.Profiles.Hash()
		}

		if deps.Redis != nil && deps.Redis.Enabled() {
			ctx, cancel := context.WithTimeout(r.Context(), time.Second)
			defer cancel()
			if err := deps.Redis.Ping(ctx); err != nil {
				// cache is optional; report but keep serving
				body["status"] = "degraded"
				body["redis"] = err.Error()
			} else {
				body["redis"] = "ok"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}
