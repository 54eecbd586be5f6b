package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	queue "github.com/E1207/bank-transaction-ml/internal/adapters/mq/queue"
	worker "github.com/E1207/bank-transaction-ml/internal/adapters/mq/worker"
	model "github.com/E1207/bank-transaction-ml/internal/domain/model"
	logging "github.com/E1207/bank-transaction-ml/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockQueue struct {
	jobs chan worker.Job
}

func newMockQueue() *mockQueue {
	return &mockQueue{jobs: make(chan worker.Job, 10)}
}

func (mq *mockQueue) Dequeue(context.Context) <-chan worker.Job { return mq.jobs }

func (mq *mockQueue) Close() error {
	close(mq.jobs)
	return nil
}

type mockProcessor struct {
	mu     sync.Mutex
	seen   []string
	errors map[string]error
}

func newMockProcessor() *mockProcessor {
	return &mockProcessor{errors: make(map[string]error)}
}

func (mp *mockProcessor) Process(_ context.Context, j worker.Job) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	if err, ok := mp.errors[j.SubmissionID]; ok {
		return err
	}
	mp.seen = append(mp.seen, j.SubmissionID)
	return nil
}

func (mp *mockProcessor) setError(id string, err error) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.errors[id] = err
}

func (mp *mockProcessor) processed() []string {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return append([]string(nil), mp.seen...)
}

func submission(id string) worker.Job {
	return model.Submission{SubmissionID: id, Answers: model.Answers{"monthly_income": 4000}, ReceivedAt: time.Now()}
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a new InMemoryWorker", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		proc := newMockProcessor()

		convey.Convey("When creating a worker with custom options", func() {
			w := worker.NewInMemoryWorker(q, proc, worker.WithName("test-worker"), worker.WithLogger(logging.Get()))

			convey.Convey("Then it should be created successfully", func() {
				convey.So(w, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When running a worker", func() {
			calls := 0
			var mu sync.Mutex
			w := worker.NewInMemoryWorker(q, proc, worker.WithOnProcessed(func() {
				mu.Lock()
				calls++
				mu.Unlock()
			}))
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go w.Run(ctx)

			convey.Convey("And a submission arrives", func() {
				q.jobs <- submission("sub-1")

				convey.Convey("Then it is processed and counted", func() {
					convey.So(waitFor(func() bool { return len(proc.processed()) == 1 }), convey.ShouldBeTrue)
					convey.So(proc.processed()[0], convey.ShouldEqual, "sub-1")
					convey.So(waitFor(func() bool { mu.Lock(); defer mu.Unlock(); return calls == 1 }), convey.ShouldBeTrue)
				})
			})

			convey.Convey("And processing fails", func() {
				proc.setError("bad", errors.New("store down"))
				q.jobs <- submission("bad")
				q.jobs <- submission("good")

				convey.Convey("Then the worker keeps going", func() {
					convey.So(waitFor(func() bool { return len(proc.processed()) == 1 }), convey.ShouldBeTrue)
					convey.So(proc.processed(), convey.ShouldResemble, []string{"good"})
				})
			})

			convey.Convey("And it is shut down", func() {
				sctx, scancel := context.WithTimeout(context.Background(), time.Second)
				defer scancel()
				convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
			})
		})
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a pool over a real queue", t, func() {
		_ = logging.Init()

		q := queue.NewInMemoryQueue(queue.WithCapacity(64))
		proc := newMockProcessor()
		pool := worker.NewPool(4, q, proc)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(ctx)

		convey.So(pool.Size(), convey.ShouldEqual, 4)

		convey.Convey("When submissions are enqueued and the pool shuts down", func() {
			for i := 0; i < 40; i++ {
				convey.So(q.Enqueue(ctx, submission(fmt.Sprintf("sub-%02d", i))), convey.ShouldBeNil)
			}
			err := pool.Shutdown(context.Background())

			convey.Convey("Then every pending submission is drained exactly once", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(proc.processed()), convey.ShouldEqual, 40)
				convey.So(pool.Processed(), convey.ShouldEqual, 40)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given a non-positive worker count", t, func() {
		_ = logging.Init()
		pool := worker.NewPool(0, newMockQueue(), newMockProcessor())

		convey.Convey("Then a CPU-derived default is used", func() {
			convey.So(pool.Size(), convey.ShouldBeGreaterThan, 0)
		})
	})
}
