package predictor

import (
	"context"
	"time"

	"github.com/E1207/bank-transaction-ml/internal/domain/features"
	"github.com/E1207/bank-transaction-ml/pkg/logger"
)

// Warmup probes the service health and model metadata once so the first
// assessment does not pay for a cold start. It reports whether the service
// is ready for the local feature layout; the outcome is only advisory.
func Warmup(ctx context.Context, p Predictor, timeout time.Duration) bool {
	log := logger.Get().Named("predictor")
	wctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	h, err := p.Health(wctx)
	if err != nil {
		log.Warn(ctx, "predictive service warm-up failed", logger.Error(err))
		return false
	}
	if !h.Healthy() {
		log.Warn(ctx, "predictive service not ready",
			logger.String("status", h.Status), logger.String("model_status", h.ModelStatus))
		return false
	}

	info, err := p.ModelInfo(wctx)
	if err != nil {
		// Model metadata is optional.
		log.Info(ctx, "predictive service ready, model info unavailable",
			logger.String("scaler_status", h.ScalerStatus), logger.Error(err))
		return true
	}
	if info.NFeatures != 0 && info.NFeatures != features.Size {
		log.Warn(ctx, "predictive model expects a different feature count",
			logger.Int("model_features", info.NFeatures), logger.Int("features", features.Size))
		return false
	}
	log.Info(ctx, "predictive service ready",
		logger.String("model_type", info.ModelType),
		logger.Int("features", info.NFeatures),
		logger.String("scaler_status", h.ScalerStatus))
	return true
}
