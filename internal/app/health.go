package service

import (
	"context"

	"github.com/E1207/bank-transaction-ml/internal/adapters/predictor"
	"github.com/E1207/bank-transaction-ml/pkg/logger"
)

// Health describes the service dependencies.
type Health struct {
	Predictor      predictor.Health `json:"predictor"`
	PredictorReady bool             `json:"predictor_ready"`
	StoreReady     bool             `json:"store_ready"`
}

// Degraded reports that new assessments will use the fallback scorer.
func (h Health) Degraded() bool { return !h.PredictorReady }

type pinger interface {
	Ping(ctx context.Context) error
}

// Health probes the predictor and the history store. Failures are reported,
// never returned: scoring keeps working in degraded mode.
func (s *Service) Health(ctx context.Context) Health {
	var h Health

	ph, err := s.predictor.Health(ctx)
	if err != nil {
		s.logger.Warn(ctx, "predictor health check failed", logger.Error(err))
	} else {
		h.Predictor = ph
		h.PredictorReady = ph.Healthy()
	}

	h.StoreReady = true
	if p, ok := s.store.(pinger); ok {
		if err := p.Ping(ctx); err != nil {
			s.logger.Warn(ctx, "history store ping failed", logger.Error(err))
			h.StoreReady = false
		}
	}
	return h
}
