package api

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	service "github.com/E1207/bank-transaction-ml/internal/app"
	"github.com/E1207/bank-transaction-ml/pkg/metrics"
)

// HealthDependencies defines what the health endpoint probes.
type HealthDependencies interface {
	Health(ctx context.Context) service.Health
}

// HealthHandler handles health check and metrics requests.
type HealthHandler struct {
	deps    HealthDependencies
	metrics http.Handler
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(deps HealthDependencies) *HealthHandler {
	return &HealthHandler{
		deps:    deps,
		metrics: promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
	}
}

type healthResponse struct {
	Status string         `json:"status"`
	Health service.Health `json:"checks"`
}

// HandleHealth handles GET /healthz requests. The service is reported
// "degraded" while the predictive model is unreachable; it still answers 200
// because scoring continues on the fallback path.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	hs := h.deps.Health(r.Context())
	status := "ok"
	if hs.Degraded() || !hs.StoreReady {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: status, Health: hs})
}

// HandleMetrics serves the Prometheus registry.
func (h *HealthHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	// Use our custom metrics registry to serve metrics
	h.metrics.ServeHTTP(w, r)
}
