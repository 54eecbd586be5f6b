// Package predictor talks to the predictive scoring service, or simulates it
// in process when no service is configured.
package predictor

import (
	"context"
	"errors"

	"github.com/E1207/bank-transaction-ml/internal/domain/features"
)

// Sentinel kinds for predictor failures.
var (
	ErrPredictorUnavailable = errors.New("predictive service unavailable")
	ErrBadResponse          = errors.New("invalid predictive service response")
)

// Prediction is one model answer.
type Prediction struct {
	// Probability of a positive outcome in percent, 0..100.
	Probability float64
	Class       int
	Message     string
}

// Health is the service self-report.
type Health struct {
	Status       string `json:"status"`
	ModelStatus  string `json:"model_status"`
	ScalerStatus string `json:"scaler_status"`
}

// Healthy reports whether the model is ready to answer.
func (h Health) Healthy() bool {
	return h.Status == "healthy" && h.ModelStatus == "loaded"
}

// ModelInfo describes the loaded model.
type ModelInfo struct {
	ModelType         string   `json:"model_type"`
	NFeatures         int      `json:"n_features"`
	TrainingFramework string   `json:"training_framework"`
	Scaler            string   `json:"scaler"`
	Target            string   `json:"target"`
	Classes           []int    `json:"classes"`
	ClassNames        []string `json:"class_names"`
}

// Predictor computes a probability from a feature vector. Implementations
// honor ctx for cancellation.
type Predictor interface {
	Predict(ctx context.Context, v features.Vector) (Prediction, error)
	Health(ctx context.Context) (Health, error)
	ModelInfo(ctx context.Context) (ModelInfo, error)
}
