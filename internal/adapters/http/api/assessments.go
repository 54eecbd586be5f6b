package api

import (
	"context"
	"net/http"
	"strings"

	service "github.com/E1207/bank-transaction-ml/internal/app"
	"github.com/E1207/bank-transaction-ml/internal/domain/catalog"
	"github.com/E1207/bank-transaction-ml/internal/domain/model"
)

// AssessmentDependencies defines the scoring operations.
type AssessmentDependencies interface {
	Catalog() *catalog.Catalog
	Assess(ctx context.Context, req service.AssessmentRequest) (service.Assessment, error)
	Submit(ctx context.Context, sub model.Submission) (service.SubmitResult, error)
}

// AssessmentHandler handles synchronous and queued scoring.
type AssessmentHandler struct {
	deps AssessmentDependencies
}

// NewAssessmentHandler creates a new assessment handler.
func NewAssessmentHandler(deps AssessmentDependencies) *AssessmentHandler {
	return &AssessmentHandler{deps: deps}
}

// assessmentRequest mirrors the body of POST /assessments and
// POST /assessments/async.
type assessmentRequest struct {
	SubmissionID string              `json:"submission_id,omitempty"`
	Client       model.ClientProfile `json:"client"`
	Answers      map[string]any      `json:"answers"`
	Operator     string              `json:"operator"`
}

type assessmentResponse struct {
	RecordID string            `json:"record_id"`
	Result   model.ScoreResult `json:"result"`
	Warning  string            `json:"warning,omitempty"`
}

type ackResponse struct {
	Status       string `json:"status"`
	SubmissionID string `json:"submission_id"`
	Duplicate    bool   `json:"duplicate"`
}

// HandleAssess handles POST /assessments requests.
func (h *AssessmentHandler) HandleAssess(w http.ResponseWriter, r *http.Request) {
	var req assessmentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	answers, err := parseAnswers(h.deps.Catalog(), req.Answers)
	if err != nil {
		respondError(w, r, err)
		return
	}

	out, err := h.deps.Assess(r.Context(), service.AssessmentRequest{
		Client:   req.Client,
		Answers:  answers,
		Operator: req.Operator,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, assessmentResponse{
		RecordID: out.RecordID,
		Result:   out.Result,
		Warning:  strings.Join(out.Warnings, "; "),
	})
}

// HandleSubmit handles POST /assessments/async requests. Replays of a known
// submission id are acknowledged without being queued again.
func (h *AssessmentHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req assessmentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	answers, err := parseAnswers(h.deps.Catalog(), req.Answers)
	if err != nil {
		respondError(w, r, err)
		return
	}

	res, err := h.deps.Submit(r.Context(), model.Submission{
		SubmissionID: strings.TrimSpace(req.SubmissionID),
		Client:       req.Client,
		Answers:      answers,
		Operator:     req.Operator,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	if res.Duplicate {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", SubmissionID: res.SubmissionID, Duplicate: true})
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", SubmissionID: res.SubmissionID})
}
