package api

import (
	"fmt"
	"net/http"
	"strings"

	service "github.com/E1207/bank-transaction-ml/internal/app"
	"github.com/E1207/bank-transaction-ml/internal/domain/catalog"
	"github.com/E1207/bank-transaction-ml/internal/domain/model"
	"github.com/E1207/bank-transaction-ml/pkg/logger"
)

// CatalogDependencies defines what the catalog endpoints read.
type CatalogDependencies interface {
	Catalog() *catalog.Catalog
	Threshold() float64
	ValidateStep(category string, answers model.Answers) (service.StepResult, error)
}

// CatalogHandler serves the questionnaire and validates wizard steps.
type CatalogHandler struct {
	deps CatalogDependencies
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(deps CatalogDependencies) *CatalogHandler {
	return &CatalogHandler{deps: deps}
}

type categoryResponse struct {
	Name      string             `json:"name"`
	Progress  int                `json:"progress"`
	Questions []catalog.Question `json:"questions"`
}

type catalogResponse struct {
	Categories  []categoryResponse `json:"categories"`
	Defaults    model.Answers      `json:"defaults"`
	Threshold   float64            `json:"threshold"`
	TotalWeight float64            `json:"total_weight"`
}

// HandleGetCatalog handles GET /catalog requests.
func (h *CatalogHandler) HandleGetCatalog(w http.ResponseWriter, _ *http.Request) {
	c := h.deps.Catalog()
	names := c.Categories()
	resp := catalogResponse{
		Categories: make([]categoryResponse, 0, len(names)),
		Defaults:    c.DefaultAnswers(),
		Threshold:   h.deps.Threshold(),
		TotalWeight: c.TotalWeight(),
	}
	for i, name := range names {
		resp.Categories = append(resp.Categories, categoryResponse{
			Name:      name,
			Progress:  c.Progress(i),
			Questions: c.ByCategory(name),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

type stepRequest struct {
	Category string         `json:"category"`
	Answers  map[string]any `json:"answers"`
}

type stepErrorResponse struct {
	errorResponse
	Missing []string `json:"missing"`
}

// HandleValidateStep handles POST /catalog/validate requests. A step with
// unanswered questions is rejected with 422 and the missing ids.
func (h *CatalogHandler) HandleValidateStep(w http.ResponseWriter, r *http.Request) {
	var req stepRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Category) == "" {
		respondError(w, r, fmt.Errorf("%w: missing category", ErrBadRequest))
		return
	}
	answers, err := h.deps.Catalog().ParseAnswers(req.Answers, false)
	if err != nil {
		respondError(w, r, err)
		return
	}

	res, err := h.deps.ValidateStep(req.Category, answers)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if len(res.Missing) > 0 {
		logger.Get().Named("api").Debug(r.Context(), "step incomplete",
			logger.String("category", res.Category), logger.Strings("missing", res.Missing))
		err := fmt.Errorf("%w: %s requires %s", ErrStepMissing, res.Category, strings.Join(res.Missing, ", "))
		status, code := classify(err)
		writeJSON(w, status, stepErrorResponse{
			errorResponse: errorResponse{Code: code, Message: err.Error()},
			Missing:       res.Missing,
		})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// parseAnswers validates a complete answer set for scoring.
func parseAnswers(c *catalog.Catalog, raw map[string]any) (model.Answers, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: missing answers", ErrBadRequest)
	}
	return c.ParseAnswers(raw, true)
}
