// Package history defines the simulation record store contract and the pure
// aggregations computed over stored records.
package history

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/E1207/bank-transaction-ml/internal/domain/model"
)

// DefaultMaxRecords caps a store; the oldest record is evicted on overflow.
const DefaultMaxRecords = 100

// ErrNotFound is returned when no record has the requested id.
var ErrNotFound = errors.New("record not found")

// Store persists simulation records, newest first.
type Store interface {
	// Append stores rec as the newest record, evicting the oldest on overflow.
	Append(ctx context.Context, rec model.SimulationRecord) error
	// List returns all records, newest first. Malformed entries are skipped.
	List(ctx context.Context) ([]model.SimulationRecord, error)
	// Get returns one record by id or ErrNotFound.
	Get(ctx context.Context, id string) (model.SimulationRecord, error)
	// Delete removes one record by id or returns ErrNotFound.
	Delete(ctx context.Context, id string) error
	// Clear removes every record.
	Clear(ctx context.Context) error
}

// Stats summarizes a set of records.
type Stats struct {
	Total    int `json:"total"`
	Accepted int `json:"accepted"`
	Refused  int `json:"refused"`
	Review   int `json:"review"`
	AvgScore int `json:"avg_score"`
}

// Summarize counts records per decision and averages their scores, rounded
// to the nearest integer. An empty input yields zero values.
func Summarize(records []model.SimulationRecord) Stats {
	var s Stats
	var sum int
	for _, r := range records {
		s.Total++
		sum += r.Result.Score
		switch r.Result.Decision {
		case model.DecisionAccepted:
			s.Accepted++
		case model.DecisionRefused:
			s.Refused++
		case model.DecisionUnderReview:
			s.Review++
		}
	}
	if s.Total > 0 {
		s.AvgScore = int(math.Floor(float64(sum)/float64(s.Total) + 0.5))
	}
	return s
}

// Search keeps records whose client name, first name or email contains query
// case-insensitively, or whose phone contains it verbatim. An empty query
// keeps everything. Order is preserved.
func Search(records []model.SimulationRecord, query string) []model.SimulationRecord {
	q := strings.TrimSpace(query)
	if q == "" {
		return records
	}
	lq := strings.ToLower(q)
	out := make([]model.SimulationRecord, 0, len(records))
	for _, r := range records {
		c := r.Client
		if strings.Contains(strings.ToLower(c.Name), lq) ||
			strings.Contains(strings.ToLower(c.FirstName), lq) ||
			strings.Contains(strings.ToLower(c.Email), lq) ||
			strings.Contains(c.Phone, q) {
			out = append(out, r)
		}
	}
	return out
}
