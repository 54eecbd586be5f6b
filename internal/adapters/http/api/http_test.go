package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/E1207/bank-transaction-ml/internal/adapters/http/api"
	"github.com/E1207/bank-transaction-ml/internal/adapters/predictor"
	"github.com/E1207/bank-transaction-ml/internal/adapters/repository"
	service "github.com/E1207/bank-transaction-ml/internal/app"
	"github.com/E1207/bank-transaction-ml/internal/domain/catalog"
	"github.com/E1207/bank-transaction-ml/internal/domain/features"
	"github.com/E1207/bank-transaction-ml/internal/domain/history"
	"github.com/E1207/bank-transaction-ml/internal/domain/model"
	"github.com/E1207/bank-transaction-ml/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type brokenStore struct{}

var errStoreDown = errors.New("store down")

func (brokenStore) Append(context.Context, model.SimulationRecord) error { return errStoreDown }
func (brokenStore) List(context.Context) ([]model.SimulationRecord, error) {
	return nil, errStoreDown
}
func (brokenStore) Get(context.Context, string) (model.SimulationRecord, error) {
	return model.SimulationRecord{}, errStoreDown
}
func (brokenStore) Delete(context.Context, string) error { return errStoreDown }
func (brokenStore) Clear(context.Context) error          { return errStoreDown }

type downPredictor struct{}

func (downPredictor) Predict(context.Context, features.Vector) (predictor.Prediction, error) {
	return predictor.Prediction{}, predictor.ErrPredictorUnavailable
}

func (downPredictor) Health(context.Context) (predictor.Health, error) {
	return predictor.Health{}, predictor.ErrPredictorUnavailable
}

func (downPredictor) ModelInfo(context.Context) (predictor.ModelInfo, error) {
	return predictor.ModelInfo{}, predictor.ErrPredictorUnavailable
}

func newMux(opts ...service.Option) (*http.ServeMux, *service.Service) {
	base := []service.Option{
		service.WithPredictor(predictor.NewSimulated(predictor.WithLatencyRange(0, time.Millisecond))),
		service.WithStore(repository.NewMemoryStore()),
		service.WithWorkerCount(2),
	}
	svc, err := service.New(append(base, opts...)...)
	if err != nil {
		panic(err)
	}
	mux := http.NewServeMux()
	api.NewServer(svc).Register(mux)
	return mux, svc
}

func do(mux http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func completeAnswers() map[string]any {
	a := catalog.Builtin().DefaultAnswers()
	a[catalog.MonthlyIncome] = 5000
	a[catalog.HousingPayment] = 800
	a[catalog.RequestedAmount] = 12000
	a[catalog.DurationMonths] = 48
	out := make(map[string]any, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

func decode[T any](w *httptest.ResponseRecorder) T {
	var v T
	So(json.Unmarshal(w.Body.Bytes(), &v), ShouldBeNil)
	return v
}

type assessResp struct {
	RecordID string            `json:"record_id"`
	Result   model.ScoreResult `json:"result"`
	Warning  string            `json:"warning"`
}

type errResp struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details"`
	Missing []string `json:"missing"`
}

func TestOperationalRoutes(t *testing.T) {
	Convey("Given the API server", t, func() {
		mux, _ := newMux()

		Convey("When probing /healthz", func() {
			w := do(mux, http.MethodGet, "/healthz", nil)

			Convey("Then it reports ok with a request id", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("X-Request-ID"), ShouldNotBeEmpty)
				body := decode[map[string]any](w)
				So(body["status"], ShouldEqual, "ok")
			})
		})

		Convey("When scraping /metrics", func() {
			do(mux, http.MethodGet, "/healthz", nil)
			w := do(mux, http.MethodGet, "/metrics", nil)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "credit_scoring_http_requests_total")
		})

		Convey("When reading /stats", func() {
			w := do(mux, http.MethodGet, "/stats", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			body := decode[map[string]any](w)
			So(body["threshold"], ShouldEqual, 75.0)
		})

		Convey("When using the wrong method", func() {
			w := do(mux, http.MethodPut, "/stats", nil)
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})

	Convey("Given a server whose predictor is down", t, func() {
		mux, _ := newMux(service.WithPredictor(downPredictor{}))

		w := do(mux, http.MethodGet, "/healthz", nil)
		So(w.Code, ShouldEqual, http.StatusOK)
		So(decode[map[string]any](w)["status"], ShouldEqual, "degraded")
	})
}

func TestCatalogRoutes(t *testing.T) {
	Convey("Given the API server", t, func() {
		mux, svc := newMux()
		categories := svc.Catalog().Categories()

		Convey("When fetching the catalog", func() {
			w := do(mux, http.MethodGet, "/catalog", nil)

			Convey("Then every category is listed in order with its questions", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var body struct {
					Categories []struct {
						Name      string             `json:"name"`
						Progress  int                `json:"progress"`
						Questions []catalog.Question `json:"questions"`
					} `json:"categories"`
					Defaults    map[string]float64 `json:"defaults"`
					Threshold   float64            `json:"threshold"`
					TotalWeight float64            `json:"total_weight"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body.Categories, ShouldHaveLength, len(categories))
				So(body.Categories[0].Name, ShouldEqual, categories[0])
				So(body.Categories[len(categories)-1].Progress, ShouldEqual, 100)
				So(body.Defaults, ShouldHaveLength, len(svc.Catalog().Questions()))
				So(body.Threshold, ShouldEqual, 75.0)
				So(body.TotalWeight, ShouldEqual, 100.0)
			})
		})

		Convey("When validating an empty step", func() {
			w := do(mux, http.MethodPost, "/catalog/validate", map[string]any{"category": categories[0], "answers": map[string]any{}})

			Convey("Then it is rejected with the missing ids", func() {
				So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
				body := decode[errResp](w)
				So(body.Code, ShouldEqual, "step_incomplete")
				So(body.Missing, ShouldNotBeEmpty)
			})
		})

		Convey("When validating a complete step", func() {
			w := do(mux, http.MethodPost, "/catalog/validate", map[string]any{"category": categories[0], "answers": completeAnswers()})
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("When the category is unknown", func() {
			w := do(mux, http.MethodPost, "/catalog/validate", map[string]any{"category": "nope"})
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decode[errResp](w).Code, ShouldEqual, "unknown_category")
		})

		Convey("When the category is missing", func() {
			w := do(mux, http.MethodPost, "/catalog/validate", map[string]any{})
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestAssessmentRoutes(t *testing.T) {
	Convey("Given the API server", t, func() {
		mux, svc := newMux()

		Convey("When scoring a complete answer set", func() {
			w := do(mux, http.MethodPost, "/assessments", map[string]any{
				"client":   map[string]any{"name": "Martin", "first_name": "Claire"},
				"answers":  completeAnswers(),
				"operator": "agent-7",
			})

			Convey("Then the result is returned and stored", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := decode[assessResp](w)
				So(body.RecordID, ShouldNotBeEmpty)
				So(body.Result.Score, ShouldBeBetweenOrEqual, 0, 100)
				So(body.Result.MLProbability, ShouldNotBeNil)
				So(body.Warning, ShouldBeEmpty)

				rec := do(mux, http.MethodGet, "/history/"+body.RecordID, nil)
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(decode[model.SimulationRecord](rec).Operator, ShouldEqual, "agent-7")
			})
		})

		Convey("When answers are incomplete", func() {
			w := do(mux, http.MethodPost, "/assessments", map[string]any{
				"answers": map[string]any{catalog.MonthlyIncome: 5000},
			})

			Convey("Then the schema violations are listed", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				body := decode[errResp](w)
				So(body.Code, ShouldEqual, "bad_request")
				So(body.Details, ShouldNotBeEmpty)
			})
		})

		Convey("When an answer id is unknown", func() {
			a := completeAnswers()
			a["shoe_size"] = 42
			w := do(mux, http.MethodPost, "/assessments", map[string]any{"answers": a})
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the body is not JSON", func() {
			w := do(mux, http.MethodPost, "/assessments", "{not json")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When submitting asynchronously", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
			body := map[string]any{"submission_id": "sub-1", "answers": completeAnswers()}

			first := do(mux, http.MethodPost, "/assessments/async", body)
			second := do(mux, http.MethodPost, "/assessments/async", body)
			So(svc.Stop(context.Background()), ShouldBeNil)

			Convey("Then the first is accepted and the replay is a duplicate", func() {
				So(first.Code, ShouldEqual, http.StatusAccepted)
				So(second.Code, ShouldEqual, http.StatusOK)
				So(decode[map[string]any](second)["duplicate"], ShouldEqual, true)

				rec := do(mux, http.MethodGet, "/history/sub-1", nil)
				So(rec.Code, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When submitting before the service started", func() {
			w := do(mux, http.MethodPost, "/assessments/async", map[string]any{"answers": completeAnswers()})
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
		})
	})

	Convey("Given a server whose predictor is down", t, func() {
		mux, _ := newMux(service.WithPredictor(downPredictor{}))

		w := do(mux, http.MethodPost, "/assessments", map[string]any{"answers": completeAnswers()})

		So(w.Code, ShouldEqual, http.StatusOK)
		body := decode[assessResp](w)
		So(body.Result.Degraded, ShouldBeTrue)
		So(body.Warning, ShouldNotBeEmpty)
	})
}

func TestHistoryRoutes(t *testing.T) {
	Convey("Given two stored simulations", t, func() {
		mux, _ := newMux()
		for _, name := range []string{"Dupont", "Martin"} {
			w := do(mux, http.MethodPost, "/assessments", map[string]any{
				"client":  map[string]any{"name": name},
				"answers": completeAnswers(),
			})
			So(w.Code, ShouldEqual, http.StatusOK)
		}

		Convey("When listing", func() {
			w := do(mux, http.MethodGet, "/history", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			body := decode[struct {
				Records []model.SimulationRecord `json:"records"`
				Count   int                      `json:"count"`
			}](w)
			So(body.Count, ShouldEqual, 2)
			So(body.Records[0].Client.Name, ShouldEqual, "Martin")
		})

		Convey("When searching", func() {
			w := do(mux, http.MethodGet, "/history?q=dup", nil)
			So(decode[map[string]any](w)["count"], ShouldEqual, 1.0)
		})

		Convey("When reading the stats", func() {
			w := do(mux, http.MethodGet, "/history/stats", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode[history.Stats](w).Total, ShouldEqual, 2)
		})

		Convey("When deleting an unknown record", func() {
			w := do(mux, http.MethodDelete, "/history/missing", nil)
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(decode[errResp](w).Code, ShouldEqual, "not_found")
		})

		Convey("When clearing", func() {
			w := do(mux, http.MethodDelete, "/history", nil)
			So(w.Code, ShouldEqual, http.StatusNoContent)
			w = do(mux, http.MethodGet, "/history", nil)
			So(decode[map[string]any](w)["count"], ShouldEqual, 0.0)
		})
	})

	Convey("Given a broken store", t, func() {
		mux, _ := newMux(service.WithStore(brokenStore{}))

		Convey("Then listing fails with a generic 500", func() {
			w := do(mux, http.MethodGet, "/history", nil)
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			body := decode[errResp](w)
			So(body.Code, ShouldEqual, "internal_error")
			So(strings.Contains(body.Message, "store down"), ShouldBeFalse)
		})

		Convey("Then scoring still answers with a warning", func() {
			w := do(mux, http.MethodPost, "/assessments", map[string]any{"answers": completeAnswers()})
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode[assessResp](w).Warning, ShouldNotBeEmpty)
		})
	})
}
