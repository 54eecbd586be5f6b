package api

import (
	"errors"
	"net/http"

	service "github.com/E1207/bank-transaction-ml/internal/app"
	"github.com/E1207/bank-transaction-ml/internal/domain/catalog"
	"github.com/E1207/bank-transaction-ml/internal/domain/history"
	"github.com/E1207/bank-transaction-ml/pkg/logger"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrStepMissing  = errors.New("step incomplete")
	ErrBackpressure = errors.New("backpressure")
)

// respondError maps err onto a status code and error code and writes it.
// Schema violations carry their individual messages as details.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		logger.Get().Named("api").Error(r.Context(), "request failed",
			logger.String("path", r.URL.Path), logger.String("code", code), logger.Error(err))
	}
	resp := errorResponse{Code: code, Message: err.Error()}
	var verr *catalog.ValidationError
	if errors.As(err, &verr) {
		resp.Message = catalog.ErrInvalidAnswers.Error()
		resp.Details = verr.Details
	}
	if status >= http.StatusInternalServerError && code == "internal_error" {
		resp.Message = http.StatusText(status)
	}
	writeJSON(w, status, resp)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, catalog.ErrInvalidAnswers), errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, catalog.ErrUnknownCategory):
		return http.StatusBadRequest, "unknown_category"
	case errors.Is(err, ErrStepMissing):
		return http.StatusUnprocessableEntity, "step_incomplete"
	case errors.Is(err, history.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrQueueFull), errors.Is(err, ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "not_started"
	case errors.Is(err, service.ErrCancelled):
		return http.StatusServiceUnavailable, "cancelled"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
