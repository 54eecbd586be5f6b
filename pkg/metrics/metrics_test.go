package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then collectors use the default namespace", func() {
				So(manager, ShouldNotBeNil)
				manager.fallbacks.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := []string{}
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "credit_scoring_fallbacks_total")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("bank"),
				WithSubsystem("risk"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the names follow the options", func() {
				manager.predictorRetries.Inc()
				So(testutil.ToFloat64(manager.predictorRetries), ShouldEqual, 1)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if strings.HasPrefix(f.GetName(), "bank_risk_") {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When empty options are given", func() {
			manager := NewManager(WithNamespace(""), WithSubsystem(""), WithHistogramBuckets(nil), WithPrometheusRegistry(prometheus.NewRegistry()))

			Convey("Then the defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "credit")
				So(manager.subsystem, ShouldEqual, "scoring")
				So(manager.histogramBuckets, ShouldNotBeEmpty)
			})
		})
	})
}

func TestRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording assessments", func() {
			before := testutil.ToFloat64(globalManager.assessments.WithLabelValues("model", "accepted"))
			RecordAssessment("model", "accepted")
			RecordScore(96)
			RecordAssessmentLatency(12.5)

			Convey("Then the labelled counter moves by one", func() {
				So(testutil.ToFloat64(globalManager.assessments.WithLabelValues("model", "accepted")), ShouldEqual, before+1)
			})
		})

		Convey("When recording fallbacks and predictor failures", func() {
			fallbacks := testutil.ToFloat64(globalManager.fallbacks)
			transport := testutil.ToFloat64(globalManager.predictorErrors.WithLabelValues("transport"))
			RecordFallback()
			RecordPredictorError("transport")
			RecordPredictorRetry()
			RecordPredictorLatency(30)

			So(testutil.ToFloat64(globalManager.fallbacks), ShouldEqual, fallbacks+1)
			So(testutil.ToFloat64(globalManager.predictorErrors.WithLabelValues("transport")), ShouldEqual, transport+1)
		})

		Convey("When recording history activity", func() {
			UpdateHistoryRecords(42)
			skipped := testutil.ToFloat64(globalManager.historySkipped.WithLabelValues("redis"))
			RecordHistorySkipped("redis")

			So(testutil.ToFloat64(globalManager.historyRecords), ShouldEqual, 42)
			So(testutil.ToFloat64(globalManager.historySkipped.WithLabelValues("redis")), ShouldEqual, skipped+1)
			So(func() {
				RecordHistoryWriteLatency(1)
				RecordHistoryReadLatency(1)
				RecordHistoryError("append")
			}, ShouldNotPanic)
		})

		Convey("When recording submissions", func() {
			dup := testutil.ToFloat64(globalManager.submissionsDuplicate)
			RecordSubmissionDuplicate()
			RecordSubmissionProcessed()
			So(testutil.ToFloat64(globalManager.submissionsDuplicate), ShouldEqual, dup+1)
		})

		Convey("When recording operational metrics", func() {
			So(func() {
				RecordHTTPRequest("/assessments", "POST", "200")
				RecordHTTPRequestDuration("/assessments", "POST", "200", 4)
				UpdateQueueSize(3)
				UpdateQueueCapacity(10)
				UpdateQueueUtilization(0.3)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				RecordQueueProcessingLatency(0.2)
				UpdateWorkerActiveCount(4)
				UpdateWorkerMessagesPerSecond(2.5)
				RecordWorkerProcessingLatency(8)
				RecordWorkerError()
				RecordErrorByComponent("api", "validation")
				RecordErrorByType("validation", "low")
				RecordErrorByEndpoint("/assessments", "POST", "validation")
				RecordErrorLatency("api", "validation", 1)
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.4)
			}, ShouldNotPanic)
			So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 10)
			So(testutil.ToFloat64(globalManager.workerActiveCount), ShouldEqual, 4)
		})

		Convey("When gathering the custom registry", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(families, ShouldNotBeEmpty)
		})
	})
}
