// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	service "github.com/E1207/bank-transaction-ml/internal/app"
	"github.com/E1207/bank-transaction-ml/internal/domain/catalog"
	"github.com/E1207/bank-transaction-ml/internal/domain/history"
	"github.com/E1207/bank-transaction-ml/internal/domain/model"
)

// maxBodyBytes bounds request payloads.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	StatsProvider

	Catalog() *catalog.Catalog
	Threshold() float64
	ValidateStep(category string, answers model.Answers) (service.StepResult, error)

	Assess(ctx context.Context, req service.AssessmentRequest) (service.Assessment, error)
	Submit(ctx context.Context, sub model.Submission) (service.SubmitResult, error)

	History(ctx context.Context, query string) ([]model.SimulationRecord, error)
	Record(ctx context.Context, id string) (model.SimulationRecord, error)
	DeleteRecord(ctx context.Context, id string) error
	ClearHistory(ctx context.Context) error
	HistoryStats(ctx context.Context) (history.Stats, error)

	Health(ctx context.Context) service.Health
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	catalogHandler    *CatalogHandler
	assessmentHandler *AssessmentHandler
	historyHandler    *HistoryHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:     NewHealthHandler(deps),
		statsHandler:      NewStatsHandler(deps),
		catalogHandler:    NewCatalogHandler(deps),
		assessmentHandler: NewAssessmentHandler(deps),
		historyHandler:    NewHistoryHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("GET /catalog", MetricsMiddleware(s.catalogHandler.HandleGetCatalog, "catalog"))
	mux.HandleFunc("POST /catalog/validate", MetricsMiddleware(s.catalogHandler.HandleValidateStep, "catalog_validate"))

	mux.HandleFunc("POST /assessments", MetricsMiddleware(s.assessmentHandler.HandleAssess, "assessments"))
	mux.HandleFunc("POST /assessments/async", MetricsMiddleware(s.assessmentHandler.HandleSubmit, "assessments_async"))

	mux.HandleFunc("GET /history", MetricsMiddleware(s.historyHandler.HandleList, "history"))
	mux.HandleFunc("DELETE /history", MetricsMiddleware(s.historyHandler.HandleClear, "history"))
	mux.HandleFunc("GET /history/stats", MetricsMiddleware(s.historyHandler.HandleStats, "history_stats"))
	mux.HandleFunc("GET /history/{id}", MetricsMiddleware(s.historyHandler.HandleGet, "history_record"))
	mux.HandleFunc("DELETE /history/{id}", MetricsMiddleware(s.historyHandler.HandleDelete, "history_record"))
}

type errorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decodeJSON reads one JSON object from the request body. Numbers are kept
// as json.Number so answer values survive schema validation untouched.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return nil
}
