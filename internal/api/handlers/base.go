package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wonny/tradecalc/internal/observability"
	"github.com/wonny/tradecalc/internal/profile"
	"github.com/wonny/tradecalc/pkg/logger"
	"github.com/wonny/tradecalc/pkg/redis"
)

// ProfileSource exposes the active analytics profile
type ProfileSource interface {
	Current() profile.Profile
	Hash() string
}

// ResponseCache memoizes encoded responses
type ResponseCache interface {
	Enabled() bool
	GetRaw(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value interface{}) error
}

// badRequest is a validation failure whose message goes to the client verbatim
type badRequest string

func (e badRequest) Error() string { return string(e) }

// computeFunc turns a raw request body into a response value
type computeFunc func(ctx context.Context, body []byte) (interface{}, error)

// base carries what every calculation endpoint shares: body handling,
// the response cache, error mapping, metrics and logging
type base struct {
	profiles ProfileSource
	cache    ResponseCache
	metrics  *observability.Metrics
	logger   *logger.Logger
}

func (b *base) serve(w http.ResponseWriter, r *http.Request, endpoint string, compute computeFunc) {
	ctx := r.Context()

	body, err := readBody(w, r)
	if err != nil {
		b.countError(endpoint, "client")
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	key := redis.RequestKey(endpoint, b.profiles.Hash(), body)
	if b.cache != nil && b.cache.Enabled() {
		cached, found, err := b.cache.GetRaw(ctx, key)
		switch {
		case err != nil:
			b.countCache("error")
			b.logger.WithError(err).Warn("Response cache lookup failed")
		case found:
			b.countCache("hit")
			respondRaw(w, http.StatusOK, cached)
			return
		default:
			b.countCache("miss")
		}
	}

	result, err := compute(ctx, body)
	if err != nil {
		var bad badRequest
		if errors.As(err, &bad) {
			b.countError(endpoint, "client")
			respondError(w, http.StatusBadRequest, bad.Error())
			return
		}

		status, msg := errorMessage(err)
		if status == http.StatusInternalServerError {
			b.countError(endpoint, "internal")
			b.logger.WithError(err).WithField("endpoint", endpoint).Error("Calculation failed")
		} else {
			b.countError(endpoint, "client")
			b.logger.WithError(err).WithField("endpoint", endpoint).Debug("Rejected request")
		}
		respondError(w, status, msg)
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		b.countError(endpoint, "internal")
		b.logger.WithError(err).WithField("endpoint", endpoint).Error("Failed to encode response")
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if b.cache != nil && b.cache.Enabled() {
		if err := b.cache.Set(ctx, key, json.RawMessage(data)); err != nil {
			b.logger.WithError(err).Warn("Response cache store failed")
		}
	}

	respondRaw(w, http.StatusOK, data)
}

func (b *base) countError(endpoint, kind string) {
	if b.metrics != nil {
		b.metrics.AnalysisErrors.WithLabelValues(endpoint, kind).Inc()
	}
}

func (b *base) countCache(result string) {
	if b.metrics != nil {
		b.metrics.CacheLookups.WithLabelValues(result).Inc()
	}
}
