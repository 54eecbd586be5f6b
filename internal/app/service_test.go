package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

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

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type stubPredictor struct {
	probability float64
	err         error
	release     chan struct{}
	healthErr   error
}

func (p *stubPredictor) Predict(ctx context.Context, _ features.Vector) (predictor.Prediction, error) {
	if p.release != nil {
		select {
		case <-p.release:
		case <-ctx.Done():
			return predictor.Prediction{}, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return predictor.Prediction{}, err
	}
	if p.err != nil {
		return predictor.Prediction{}, p.err
	}
	return predictor.Prediction{Probability: p.probability, Class: 1}, nil
}

func (p *stubPredictor) Health(context.Context) (predictor.Health, error) {
	if p.healthErr != nil {
		return predictor.Health{}, p.healthErr
	}
	return predictor.Health{Status: "healthy", ModelStatus: "loaded", ScalerStatus: "loaded"}, nil
}

func (p *stubPredictor) ModelInfo(context.Context) (predictor.ModelInfo, error) {
	return predictor.ModelInfo{NFeatures: features.Size}, nil
}

type failingStore struct {
	*repository.MemoryStore
}

func (failingStore) Append(context.Context, model.SimulationRecord) error {
	return errors.New("disk full")
}

func scenarioAnswers() model.Answers {
	return model.Answers{
		catalog.MonthlyIncome:   5000,
		catalog.HousingPayment:  800,
		catalog.ExistingCredits: 0,
		catalog.OtherCharges:    0,
		catalog.Dependents:      0,
		catalog.RequestedAmount: 12000,
		catalog.DurationMonths:  48,
	}
}

var fixedNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func newService(p predictor.Predictor, store history.Store, opts ...service.Option) *service.Service {
	ids := 0
	base := []service.Option{
		service.WithPredictor(p),
		service.WithStore(store),
		service.WithClock(func() time.Time { return fixedNow }),
		service.WithIDGenerator(func() string {
			ids++
			return "sim-" + string(rune('a'+ids-1))
		}),
	}
	svc, err := service.New(append(base, opts...)...)
	if err != nil {
		panic(err)
	}
	return svc
}

func TestAssess(t *testing.T) {
	Convey("Given a service with a healthy predictor", t, func() {
		store := repository.NewMemoryStore()
		svc := newService(&stubPredictor{probability: 70}, store)
		ctx := context.Background()
		client := model.ClientProfile{Name: "Martin", FirstName: "Claire", Email: "claire@example.com"}

		Convey("When assessing the reference applicant", func() {
			out, err := svc.Assess(ctx, service.AssessmentRequest{Client: client, Answers: scenarioAnswers(), Operator: "agent-7"})

			Convey("Then the blended result is accepted and persisted", func() {
				So(err, ShouldBeNil)
				So(out.Result.Score, ShouldEqual, 96)
				So(out.Result.Decision, ShouldEqual, model.DecisionAccepted)
				So(out.Result.Degraded, ShouldBeFalse)
				So(out.Warnings, ShouldBeEmpty)
				So(out.RecordID, ShouldEqual, "sim-a")

				rec, err := store.Get(ctx, out.RecordID)
				So(err, ShouldBeNil)
				So(rec.CreatedAt, ShouldEqual, fixedNow)
				So(rec.Operator, ShouldEqual, "agent-7")
				So(rec.Client, ShouldResemble, client)
				So(rec.Result.Score, ShouldEqual, 96)
				So(*rec.Result.MLProbability, ShouldEqual, 70)
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := svc.Assess(cctx, service.AssessmentRequest{Answers: scenarioAnswers()})

			Convey("Then the session aborts and nothing is stored", func() {
				So(errors.Is(err, service.ErrCancelled), ShouldBeTrue)
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
				records, _ := store.List(ctx)
				So(records, ShouldBeEmpty)
			})
		})

		Convey("When the applicant declares no income", func() {
			a := scenarioAnswers()
			a[catalog.MonthlyIncome] = 0
			out, err := svc.Assess(ctx, service.AssessmentRequest{Answers: a})

			So(err, ShouldBeNil)
			So(out.Result.Score, ShouldEqual, 0)
			So(out.Result.Decision, ShouldEqual, model.DecisionRefused)
		})
	})

	Convey("Given a service whose predictor is down", t, func() {
		store := repository.NewMemoryStore()
		svc := newService(&stubPredictor{err: predictor.ErrPredictorUnavailable}, store)
		ctx := context.Background()

		Convey("When assessing", func() {
			out, err := svc.Assess(ctx, service.AssessmentRequest{Answers: scenarioAnswers()})

			Convey("Then the fallback result is returned with a warning and still stored", func() {
				So(err, ShouldBeNil)
				So(out.Result.Degraded, ShouldBeTrue)
				So(out.Result.MLProbability, ShouldBeNil)
				So(out.Result.Decision, ShouldEqual, model.DecisionAccepted)
				So(out.Warnings, ShouldHaveLength, 1)

				records, err := store.List(ctx)
				So(err, ShouldBeNil)
				So(records, ShouldHaveLength, 1)
				So(records[0].Result.MLProbability, ShouldBeNil)
			})
		})
	})

	Convey("Given a store that rejects writes", t, func() {
		svc := newService(&stubPredictor{probability: 70}, failingStore{repository.NewMemoryStore()})

		Convey("Then the result is still returned with a warning", func() {
			out, err := svc.Assess(context.Background(), service.AssessmentRequest{Answers: scenarioAnswers()})
			So(err, ShouldBeNil)
			So(out.Result.Score, ShouldEqual, 96)
			So(out.Warnings, ShouldHaveLength, 1)
		})
	})

	Convey("Given a custom threshold", t, func() {
		svc := newService(&stubPredictor{probability: 70}, repository.NewMemoryStore(), service.WithThreshold(99))

		Convey("Then a score of 96 goes to review", func() {
			out, err := svc.Assess(context.Background(), service.AssessmentRequest{Answers: scenarioAnswers()})
			So(err, ShouldBeNil)
			So(svc.Threshold(), ShouldEqual, 99)
			So(out.Result.Decision, ShouldEqual, model.DecisionUnderReview)
		})
	})
}

func TestHistoryOperations(t *testing.T) {
	Convey("Given a service with three stored simulations", t, func() {
		store := repository.NewMemoryStore()
		svc := newService(&stubPredictor{probability: 70}, store)
		ctx := context.Background()

		for _, c := range []model.ClientProfile{
			{Name: "Dupont", FirstName: "Jean", Phone: "0601020304"},
			{Name: "Martin", FirstName: "Claire", Email: "claire@example.com"},
			{Name: "Durand", FirstName: "Paul"},
		} {
			_, err := svc.Assess(ctx, service.AssessmentRequest{Client: c, Answers: scenarioAnswers()})
			So(err, ShouldBeNil)
		}

		Convey("When listing without a query", func() {
			records, err := svc.History(ctx, "")
			So(err, ShouldBeNil)
			So(records, ShouldHaveLength, 3)
			So(records[0].Client.Name, ShouldEqual, "Durand")
		})

		Convey("When searching", func() {
			records, err := svc.History(ctx, "CLAIRE")
			So(err, ShouldBeNil)
			So(records, ShouldHaveLength, 1)
			So(records[0].Client.Name, ShouldEqual, "Martin")
		})

		Convey("When reading the stats", func() {
			stats, err := svc.HistoryStats(ctx)
			So(err, ShouldBeNil)
			So(stats, ShouldResemble, history.Stats{Total: 3, Accepted: 3, AvgScore: 96})
		})

		Convey("When deleting a record", func() {
			So(svc.DeleteRecord(ctx, "sim-b"), ShouldBeNil)
			_, err := svc.Record(ctx, "sim-b")
			So(errors.Is(err, history.ErrNotFound), ShouldBeTrue)
			So(errors.Is(svc.DeleteRecord(ctx, "sim-b"), history.ErrNotFound), ShouldBeTrue)
		})

		Convey("When clearing", func() {
			So(svc.ClearHistory(ctx), ShouldBeNil)
			stats, err := svc.HistoryStats(ctx)
			So(err, ShouldBeNil)
			So(stats.Total, ShouldEqual, 0)
		})
	})
}

func TestValidateStep(t *testing.T) {
	Convey("Given the built-in catalog", t, func() {
		svc := newService(&stubPredictor{probability: 70}, repository.NewMemoryStore())
		categories := svc.Catalog().Categories()
		first := categories[0]

		Convey("When nothing is answered", func() {
			res, err := svc.ValidateStep(first, model.Answers{})
			So(err, ShouldBeNil)
			So(res.Missing, ShouldResemble, idsOf(svc.Catalog().ByCategory(first)))
			So(res.Progress, ShouldEqual, svc.Catalog().Progress(0))
		})

		Convey("When the step is complete", func() {
			res, err := svc.ValidateStep(first, svc.Catalog().DefaultAnswers())
			So(err, ShouldBeNil)
			So(res.Missing, ShouldBeEmpty)
		})

		Convey("When the category is unknown", func() {
			_, err := svc.ValidateStep("nope", model.Answers{})
			So(errors.Is(err, catalog.ErrUnknownCategory), ShouldBeTrue)
		})
	})
}

func TestHealth(t *testing.T) {
	Convey("Given a healthy predictor", t, func() {
		svc := newService(&stubPredictor{}, repository.NewMemoryStore())
		h := svc.Health(context.Background())
		So(h.PredictorReady, ShouldBeTrue)
		So(h.StoreReady, ShouldBeTrue)
		So(h.Degraded(), ShouldBeFalse)
	})

	Convey("Given an unreachable predictor", t, func() {
		svc := newService(&stubPredictor{healthErr: predictor.ErrPredictorUnavailable}, repository.NewMemoryStore())
		h := svc.Health(context.Background())
		So(h.PredictorReady, ShouldBeFalse)
		So(h.Degraded(), ShouldBeTrue)
	})
}

func idsOf(qs []catalog.Question) []string {
	out := make([]string, 0, len(qs))
	for _, q := range qs {
		out = append(out, q.ID)
	}
	return out
}
