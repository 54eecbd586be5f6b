package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/E1207/bank-transaction-ml/internal/domain/history"
	"github.com/E1207/bank-transaction-ml/internal/domain/model"
	"github.com/E1207/bank-transaction-ml/pkg/metrics"
)

// History lists stored records newest first, filtered by query.
func (s *Service) History(ctx context.Context, query string) ([]model.SimulationRecord, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		metrics.RecordHistoryError("list")
		return nil, fmt.Errorf("list history: %w", err)
	}
	metrics.UpdateHistoryRecords(len(records))
	return history.Search(records, query), nil
}

// Record returns one stored record.
func (s *Service) Record(ctx context.Context, id string) (model.SimulationRecord, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return model.SimulationRecord{}, fmt.Errorf("get record %q: %w", id, err)
	}
	return rec, nil
}

// DeleteRecord removes one stored record.
func (s *Service) DeleteRecord(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if !errors.Is(err, history.ErrNotFound) {
			metrics.RecordHistoryError("delete")
		}
		return fmt.Errorf("delete record %q: %w", id, err)
	}
	return nil
}

// ClearHistory removes every stored record.
func (s *Service) ClearHistory(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		metrics.RecordHistoryError("clear")
		return fmt.Errorf("clear history: %w", err)
	}
	metrics.UpdateHistoryRecords(0)
	return nil
}

// HistoryStats summarizes every stored record.
func (s *Service) HistoryStats(ctx context.Context) (history.Stats, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return history.Stats{}, fmt.Errorf("history stats: %w", err)
	}
	return history.Summarize(records), nil
}

// StepResult reports the state of one wizard step.
type StepResult struct {
	Category string   `json:"category"`
	Missing  []string `json:"missing"`
	Progress int      `json:"progress"`
}

// ValidateStep checks that every question of category is answered. Missing
// answers are reported in the result; an unknown category is an error.
func (s *Service) ValidateStep(category string, answers model.Answers) (StepResult, error) {
	missing, err := s.catalog.MissingAnswers(answers, category)
	if err != nil {
		return StepResult{}, err
	}
	res := StepResult{Category: category, Missing: missing}
	for i, c := range s.catalog.Categories() {
		if c == category {
			res.Progress = s.catalog.Progress(i)
			break
		}
	}
	if res.Missing == nil {
		res.Missing = []string{}
	}
	return res, nil
}
