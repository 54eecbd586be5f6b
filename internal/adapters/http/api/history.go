package api

import (
	"context"
	"net/http"

	"github.com/E1207/bank-transaction-ml/internal/domain/history"
	"github.com/E1207/bank-transaction-ml/internal/domain/model"
)

// HistoryDependencies defines the stored simulation operations.
type HistoryDependencies interface {
	History(ctx context.Context, query string) ([]model.SimulationRecord, error)
	Record(ctx context.Context, id string) (model.SimulationRecord, error)
	DeleteRecord(ctx context.Context, id string) error
	ClearHistory(ctx context.Context) error
	HistoryStats(ctx context.Context) (history.Stats, error)
}

// HistoryHandler serves the simulation history.
type HistoryHandler struct {
	deps HistoryDependencies
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(deps HistoryDependencies) *HistoryHandler {
	return &HistoryHandler{deps: deps}
}

type historyResponse struct {
	Records []model.SimulationRecord `json:"records"`
	Count   int                      `json:"count"`
}

// HandleList handles GET /history?q= requests.
func (h *HistoryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	records, err := h.deps.History(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	if records == nil {
		records = []model.SimulationRecord{}
	}
	writeJSON(w, http.StatusOK, historyResponse{Records: records, Count: len(records)})
}

// HandleStats handles GET /history/stats requests.
func (h *HistoryHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.deps.HistoryStats(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// HandleGet handles GET /history/{id} requests.
func (h *HistoryHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := h.deps.Record(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// HandleDelete handles DELETE /history/{id} requests.
func (h *HistoryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.DeleteRecord(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleClear handles DELETE /history requests.
func (h *HistoryHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.ClearHistory(r.Context()); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
