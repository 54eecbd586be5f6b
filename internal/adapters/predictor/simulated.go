package predictor

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/E1207/bank-transaction-ml/internal/domain/features"
)

// Default simulation constants.
const (
	defaultMinLatency = 80 * time.Millisecond
	defaultMaxLatency = 150 * time.Millisecond
	defaultRandomSeed = 42
	defaultSteepness  = 0.35
	defaultBias       = 1.2
)

// Option applies a configuration option to the Simulated predictor.
type Option func(*Simulated)

// WithLatencyRange sets the simulated latency range.
func WithLatencyRange(minLatency, maxLatency time.Duration) Option {
	return func(s *Simulated) {
		if minLatency >= 0 && maxLatency > minLatency {
			s.minLatency = minLatency
			s.maxLatency = maxLatency
		}
	}
}

// WithResponse sets the logistic curve: p = 1/(1+exp(-(bias + steepness*d)))
// where d is the importance-weighted deviation of the vector from the defaults.
func WithResponse(bias, steepness float64) Option {
	return func(s *Simulated) {
		if steepness > 0 {
			s.bias = bias
			s.steepness = steepness
		}
	}
}

// Simulated implements Predictor in process. Latency is drawn from a seeded
// source; the probability is a pure function of the vector.
type Simulated struct {
	minLatency time.Duration
	maxLatency time.Duration
	bias       float64
	steepness  float64

	mu  sync.Mutex
	rng *rand.Rand
}

var _ Predictor = (*Simulated)(nil)

// NewSimulated creates a simulated predictor.
func NewSimulated(opts ...Option) *Simulated {
	s := &Simulated{
		minLatency: defaultMinLatency,
		maxLatency: defaultMaxLatency,
		bias:       defaultBias,
		steepness:  defaultSteepness,
		rng:        rand.New(rand.NewSource(defaultRandomSeed)), //nolint:gosec // deterministic seed for reproducible latency
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulated) latency() time.Duration {
	span := int64(s.maxLatency - s.minLatency)
	if span <= 0 {
		return s.minLatency
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.minLatency + time.Duration(s.rng.Int63n(span))
}

// Predict waits for the simulated latency, then scores v.
func (s *Simulated) Predict(ctx context.Context, v features.Vector) (Prediction, error) {
	timer := time.NewTimer(s.latency())
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return Prediction{}, fmt.Errorf("context cancelled: %w", ctx.Err())
	case <-timer.C:
	}

	p := s.probability(v)
	class := 0
	if p >= defaultDecisionCutoff*percent {
		class = 1
	}
	return Prediction{Probability: p, Class: class, Message: "simulated"}, nil
}

func (s *Simulated) probability(v features.Vector) float64 {
	defaults := features.Defaults()
	var d float64
	for i := range features.Size {
		d += features.Weight(i) * (v[i] - defaults[i])
	}
	p := percent / (1 + math.Exp(-(s.bias + s.steepness*d)))
	return math.Max(0, math.Min(percent, p))
}

// Health always reports a loaded model.
func (s *Simulated) Health(context.Context) (Health, error) {
	return Health{Status: "healthy", ModelStatus: "loaded", ScalerStatus: "loaded"}, nil
}

// ModelInfo describes the simulation.
func (s *Simulated) ModelInfo(context.Context) (ModelInfo, error) {
	return ModelInfo{
		ModelType:         "simulated-logistic",
		NFeatures:         features.Size,
		TrainingFramework: "none",
		Scaler:            "None",
		Target:            "binary_classification",
		Classes:           []int{0, 1},
		ClassNames:        []string{"No Transaction", "Transaction"},
	}, nil
}
