package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/E1207/bank-transaction-ml/internal/adapters/mq/queue"
	"github.com/E1207/bank-transaction-ml/internal/domain/finance"
	"github.com/E1207/bank-transaction-ml/internal/domain/model"
	"github.com/E1207/bank-transaction-ml/pkg/logger"
	"github.com/E1207/bank-transaction-ml/pkg/metrics"
)

const (
	pathModel    = "model"
	pathFallback = "fallback"

	warningFallback = "predictive service unavailable, fallback scoring applied"
	warningPersist  = "simulation could not be saved to history"
)

// AssessmentRequest is one synchronous scoring session.
type AssessmentRequest struct {
	Client   model.ClientProfile
	Answers  model.Answers
	Operator string
}

// Assessment is the outcome of a scoring session.
type Assessment struct {
	RecordID string
	Result   model.ScoreResult
	Warnings []string
}

// SubmitResult acknowledges an async submission.
type SubmitResult struct {
	SubmissionID string
	Duplicate    bool
}

// Assess scores req, persists the record and returns the result. Predictor
// failures degrade to the fallback scorer with a warning; cancellation aborts
// the session without persisting anything.
func (s *Service) Assess(ctx context.Context, req AssessmentRequest) (Assessment, error) {
	return s.assess(ctx, s.newID(), req)
}

func (s *Service) assess(ctx context.Context, id string, req AssessmentRequest) (Assessment, error) {
	start := time.Now()
	out := Assessment{RecordID: id}

	m := finance.Compute(req.Answers)
	vector := s.transformer.Transform(req.Answers)

	path := pathModel
	prediction, err := s.predictor.Predict(ctx, vector)
	switch {
	case err == nil:
		out.Result = s.engine.Assess(req.Answers, m, prediction.Probability, s.threshold)
	case ctx.Err() != nil:
		return Assessment{}, fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
	default:
		path = pathFallback
		s.logger.Warn(ctx, "predictor failed, using fallback scoring",
			logger.String("record_id", id), logger.Error(err))
		metrics.RecordFallback()
		out.Result = s.fallback.Score(req.Answers, m, s.threshold)
		out.Warnings = append(out.Warnings, warningFallback)
	}

	if err := ctx.Err(); err != nil {
		return Assessment{}, fmt.Errorf("%w: %w", ErrCancelled, err)
	}

	rec := model.NewRecord(id, s.now(), req.Client, out.Result, req.Answers, req.Operator)
	if err := s.store.Append(ctx, rec); err != nil {
		s.logger.Error(ctx, "failed to persist simulation",
			logger.String("record_id", id), logger.Error(err))
		metrics.RecordHistoryError("append")
		out.Warnings = append(out.Warnings, warningPersist)
	}

	metrics.RecordAssessment(path, string(out.Result.Decision))
	metrics.RecordScore(float64(out.Result.Score))
	metrics.RecordAssessmentLatency(float64(time.Since(start).Milliseconds()))

	s.logger.Debug(ctx, "assessment completed",
		logger.String("record_id", id),
		logger.String("path", path),
		logger.Int("score", out.Result.Score),
		logger.String("decision", string(out.Result.Decision)),
	)
	return out, nil
}

// Submit queues a submission for asynchronous scoring. A submission id seen
// before is acknowledged as a duplicate and not queued again.
func (s *Service) Submit(ctx context.Context, sub model.Submission) (SubmitResult, error) {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return SubmitResult{}, ErrNotStarted
	}

	if sub.SubmissionID == "" {
		sub.SubmissionID = s.newID()
	}
	if sub.ReceivedAt.IsZero() {
		sub.ReceivedAt = s.now()
	}
	res := SubmitResult{SubmissionID: sub.SubmissionID}

	if s.deduper.SeenAndRecord(ctx, sub.SubmissionID) {
		metrics.RecordSubmissionDuplicate()
		s.logger.Debug(ctx, "duplicate submission ignored", logger.String("submission_id", sub.SubmissionID))
		res.Duplicate = true
		return res, nil
	}

	if err := s.queue.Enqueue(ctx, sub); err != nil {
		s.deduper.Unrecord(ctx, sub.SubmissionID)
		if errors.Is(err, queue.ErrFull) {
			return SubmitResult{}, fmt.Errorf("%w: %w", ErrQueueFull, err)
		}
		return SubmitResult{}, fmt.Errorf("enqueue submission: %w", err)
	}
	return res, nil
}

// Process scores one queued submission; it is the worker pool's processor.
// The stored record uses the submission id.
func (s *Service) Process(ctx context.Context, sub model.Submission) error { //nolint:gocritic // hugeParam: matches worker.Processor
	_, err := s.assess(ctx, sub.SubmissionID, AssessmentRequest{
		Client:   sub.Client,
		Answers:  sub.Answers,
		Operator: sub.Operator,
	})
	return err
}
