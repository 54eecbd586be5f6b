package simulate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/E1207/bank-transaction-ml/internal/adapters/http/api"
	"github.com/E1207/bank-transaction-ml/internal/adapters/predictor"
	"github.com/E1207/bank-transaction-ml/internal/adapters/repository"
	service "github.com/E1207/bank-transaction-ml/internal/app"
	"github.com/E1207/bank-transaction-ml/internal/domain/catalog"
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

func TestGenerator(t *testing.T) {
	Convey("Given a generator over the built-in catalog", t, func() {
		c := catalog.Builtin()

		Convey("When generating applicants", func() {
			applicants := NewGenerator(c.Questions(), 7).Generate(50)

			Convey("Then every answer set passes complete validation", func() {
				So(applicants, ShouldHaveLength, 50)
				for _, a := range applicants {
					raw := make(map[string]any, len(a.Answers))
					for k, v := range a.Answers {
						raw[k] = v
					}
					_, err := c.ParseAnswers(raw, true)
					So(err, ShouldBeNil)
					So(a.SubmissionID, ShouldNotBeEmpty)
				}
			})

			Convey("And numeric answers stay within bounds", func() {
				for _, a := range applicants {
					for _, q := range c.Questions() {
						if q.Type == catalog.TypeNumeric && q.Max > q.Min {
							So(a.Answers[q.ID], ShouldBeBetweenOrEqual, q.Min, q.Max)
						}
					}
				}
			})
		})

		Convey("When two generators share a seed", func() {
			first := NewGenerator(c.Questions(), 11).Generate(5)
			second := NewGenerator(c.Questions(), 11).Generate(5)

			Convey("Then answers and clients repeat but submission ids do not", func() {
				for i := range first {
					So(second[i].Answers, ShouldResemble, first[i].Answers)
					So(second[i].Client, ShouldResemble, first[i].Client)
					So(second[i].SubmissionID, ShouldNotEqual, first[i].SubmissionID)
				}
			})
		})
	})
}

func TestCheckRecord(t *testing.T) {
	Convey("Given an applicant and its stored record", t, func() {
		a := Applicant{
			SubmissionID: "s-1",
			Client:       model.ClientProfile{Name: "Martin"},
			Answers:      model.Answers{catalog.MonthlyIncome: 5000},
		}
		rec := model.SimulationRecord{
			ID:     "s-1",
			Client: a.Client,
			Result: model.RecordResult{Score: 80, Decision: model.DecisionAccepted},
		}

		Convey("When the record follows the policy", func() {
			So(checkRecord(rec, a, 75), ShouldBeEmpty)
		})

		Convey("When the decision contradicts the threshold", func() {
			rec.Result.Decision = model.DecisionRefused
			So(checkRecord(rec, a, 75), ShouldHaveLength, 1)
		})

		Convey("When an applicant without income is scored", func() {
			a.Answers[catalog.MonthlyIncome] = 0
			So(checkRecord(rec, a, 75), ShouldHaveLength, 1)
		})

		Convey("When the stored client differs", func() {
			rec.Client.Name = "Durand"
			So(checkRecord(rec, a, 75), ShouldHaveLength, 1)
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a running scoring service", t, func() {
		svc, err := service.New(
			service.WithPredictor(predictor.NewSimulated(predictor.WithLatencyRange(0, time.Millisecond))),
			service.WithStore(repository.NewMemoryStore()),
			service.WithWorkerCount(4),
		)
		So(err, ShouldBeNil)
		So(svc.Start(context.Background()), ShouldBeNil)

		mux := http.NewServeMux()
		api.NewServer(svc).Register(mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		output := filepath.Join(t.TempDir(), "out", "applicants.json")
		cfg := &Config{
			BaseURL:      srv.URL,
			Applicants:   30,
			Workers:      4,
			Replays:      5,
			Timeout:      5 * time.Second,
			DrainTimeout: 10 * time.Second,
			PollInterval: 20 * time.Millisecond,
			Seed:         42,
			Reset:        true,
			OutputFile:   output,
		}

		Convey("When the simulation runs", func() {
			stats, err := Run(context.Background(), cfg)
			So(svc.Stop(context.Background()), ShouldBeNil)

			Convey("Then every submission is stored and consistent", func() {
				So(err, ShouldBeNil)
				So(stats.Generated, ShouldEqual, 30)
				So(stats.Accepted, ShouldEqual, 30)
				So(stats.Failed, ShouldEqual, 0)
				So(stats.Replayed, ShouldEqual, 5)
				So(stats.Verified, ShouldEqual, 30)
				So(stats.Violations, ShouldEqual, 0)

				info, err := os.Stat(output)
				So(err, ShouldBeNil)
				So(info.Size(), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When the service is unreachable", func() {
			srv.Close()
			_, err := Run(context.Background(), cfg)
			So(svc.Stop(context.Background()), ShouldBeNil)
			So(err, ShouldNotBeNil)
		})
	})
}
