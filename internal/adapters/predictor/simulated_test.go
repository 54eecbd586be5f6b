package predictor_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/E1207/bank-transaction-ml/internal/adapters/predictor"
	"github.com/E1207/bank-transaction-ml/internal/domain/features"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSimulated(t *testing.T) {
	Convey("Given a simulated predictor without latency", t, func() {
		sim := predictor.NewSimulated(predictor.WithLatencyRange(0, time.Millisecond))
		ctx := context.Background()

		Convey("When predicting the default vector twice", func() {
			a, errA := sim.Predict(ctx, features.Defaults())
			b, errB := sim.Predict(ctx, features.Defaults())

			Convey("Then the answers are identical and bounded", func() {
				So(errA, ShouldBeNil)
				So(errB, ShouldBeNil)
				So(a.Probability, ShouldEqual, b.Probability)
				So(a.Probability, ShouldBeBetweenOrEqual, 0, 100)
			})
		})

		Convey("When features move above their means", func() {
			base, _ := sim.Predict(ctx, features.Defaults())
			v := features.Defaults()
			for i := range v {
				v[i] += 5
			}
			up, _ := sim.Predict(ctx, v)

			Convey("Then the probability rises", func() {
				So(up.Probability, ShouldBeGreaterThan, base.Probability)
				So(up.Class, ShouldEqual, 1)
			})
		})

		Convey("When the context is already cancelled", func() {
			slow := predictor.NewSimulated(predictor.WithLatencyRange(time.Second, 2*time.Second))
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := slow.Predict(cctx, features.Defaults())
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})

		Convey("When asked for health and model info", func() {
			h, err := sim.Health(ctx)
			So(err, ShouldBeNil)
			So(h.Healthy(), ShouldBeTrue)
			info, _ := sim.ModelInfo(ctx)
			So(info.NFeatures, ShouldEqual, features.Size)
		})
	})
}
