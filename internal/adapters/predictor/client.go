package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/E1207/bank-transaction-ml/internal/domain/features"
	"github.com/E1207/bank-transaction-ml/pkg/logger"
	"github.com/E1207/bank-transaction-ml/pkg/metrics"
)

const (
	defaultTimeout         = 60 * time.Second
	defaultMaxRetries      = 2
	defaultInitialInterval = 500 * time.Millisecond
	defaultDecisionCutoff  = 0.5
	maxErrorBodyBytes      = 512
	percent                = 100
)

// ClientOption applies a configuration option to the Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMaxRetries sets how many times a failed attempt is retried.
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithInitialInterval sets the first backoff delay; later delays grow exponentially.
func WithInitialInterval(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.initialInterval = d
		}
	}
}

// WithClientLogger overrides the client logger.
func WithClientLogger(l logger.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// Client calls the predictive service over HTTP.
type Client struct {
	baseURL         string
	http            *http.Client
	timeout         time.Duration
	maxRetries      int
	initialInterval time.Duration
	log             logger.Logger
}

var _ Predictor = (*Client)(nil)

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:         strings.TrimRight(baseURL, "/"),
		http:            &http.Client{},
		timeout:         defaultTimeout,
		maxRetries:      defaultMaxRetries,
		initialInterval: defaultInitialInterval,
		log:             logger.Get().Named("predictor"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type predictRequest struct {
	Features  []float64 `json:"features"`
	Threshold float64   `json:"threshold,omitempty"`
}

type predictResponse struct {
	Prediction  *int `json:"prediction"`
	Probability *struct {
		Transaction   float64 `json:"transaction"`
		NoTransaction float64 `json:"no_transaction"`
	} `json:"probability"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Predict posts v and returns the positive-class probability in percent.
// Transport errors and non-2xx answers are retried; a response that decodes
// but lacks a probability is not.
func (c *Client) Predict(ctx context.Context, v features.Vector) (Prediction, error) {
	body, err := json.Marshal(predictRequest{Features: v.Slice(), Threshold: defaultDecisionCutoff})
	if err != nil {
		return Prediction{}, fmt.Errorf("encode predict request: %w", err)
	}

	var resp predictResponse
	if err := c.do(ctx, http.MethodPost, "/predict", body, &resp); err != nil {
		return Prediction{}, err
	}
	if resp.Probability == nil || resp.Prediction == nil {
		metrics.RecordPredictorError("decode")
		return Prediction{}, fmt.Errorf("%w: missing probability", ErrBadResponse)
	}
	p := resp.Probability.Transaction * percent
	if p < 0 || p > percent {
		metrics.RecordPredictorError("decode")
		return Prediction{}, fmt.Errorf("%w: probability %.4f out of range", ErrBadResponse, resp.Probability.Transaction)
	}
	return Prediction{Probability: p, Class: *resp.Prediction, Message: resp.Message}, nil
}

// Health queries the service health endpoint.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var h Health
	if err := c.do(ctx, http.MethodGet, "/health", nil, &h); err != nil {
		return Health{}, err
	}
	return h, nil
}

// ModelInfo queries the model metadata endpoint.
func (c *Client) ModelInfo(ctx context.Context) (ModelInfo, error) {
	var info ModelInfo
	if err := c.do(ctx, http.MethodGet, "/model-info", nil, &info); err != nil {
		return ModelInfo{}, err
	}
	return info, nil
}

// do runs one request under the retry budget and decodes a 2xx body into out.
func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	attempt := 0
	op := func() error {
		attempt++
		if attempt > 1 {
			metrics.RecordPredictorRetry()
		}
		err := c.attempt(ctx, method, path, body, out)
		if err != nil && ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		if errors.Is(err, ErrBadResponse) {
			return backoff.Permanent(err)
		}
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialInterval
	b.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.maxRetries)), ctx)

	notify := func(err error, wait time.Duration) {
		c.log.Warn(ctx, "predictive call failed, retrying",
			logger.String("path", path), logger.Int("attempt", attempt), logger.Duration("wait", wait), logger.Error(err))
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if errors.Is(err, ErrBadResponse) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrPredictorUnavailable, err)
	}
	return nil
}

func (c *Client) attempt(ctx context.Context, method, path string, body []byte, out any) error {
	actx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(actx, method, c.baseURL+path, reader)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.RecordPredictorLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordPredictorError("transport")
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.RecordPredictorError("status")
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		metrics.RecordPredictorError("decode")
		return fmt.Errorf("%w: %s %s: %w", ErrBadResponse, method, path, err)
	}
	return nil
}
