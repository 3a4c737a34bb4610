package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	queue "github.com/pixel-phantoms/hud/internal/adapters/mq/queue"
	worker "github.com/pixel-phantoms/hud/internal/adapters/mq/worker"
	logging "github.com/pixel-phantoms/hud/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type recordingHandler struct {
	mu      sync.Mutex
	reasons []string
	fail    map[string]error
	handled chan struct{}
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{fail: map[string]error{}, handled: make(chan struct{}, 16)}
}

func (h *recordingHandler) Handle(_ context.Context, job queue.Job) error {
	h.mu.Lock()
	h.reasons = append(h.reasons, job.Reason)
	err := h.fail[job.Reason]
	h.mu.Unlock()
	h.handled <- struct{}{}
	return err
}

func (h *recordingHandler) seen() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.reasons...)
}

func waitHandled(h *recordingHandler, n int) bool {
	for i := 0; i < n; i++ {
		select {
		case <-h.handled:
		case <-time.After(2 * time.Second):
			return false
		}
	}
	return true
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker on a queue", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		q := queue.NewInMemoryQueue(queue.WithCapacity(4))
		h := newRecordingHandler()
		h.fail["broken"] = errors.New("upstream down")
		w := worker.NewInMemoryWorker(q, h, worker.WithName("refresh"), worker.WithLogger(logging.Discard()))
		go w.Run(ctx)

		convey.Convey("When jobs are queued", func() {
			q.Enqueue(ctx, queue.NewJob("startup"))
			q.Enqueue(ctx, queue.NewJob("broken"))
			q.Enqueue(ctx, queue.NewJob("manual"))

			convey.Convey("Then they run in order and a failure does not stop the loop", func() {
				convey.So(waitHandled(h, 3), convey.ShouldBeTrue)
				convey.So(h.seen(), convey.ShouldResemble, []string{"startup", "broken", "manual"})
			})
		})

		convey.Convey("When the worker is shut down", func() {
			err := w.Shutdown(context.Background())

			convey.Convey("Then it stops cleanly and a second call is safe", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(w.Shutdown(context.Background()), convey.ShouldBeNil)
			})
		})
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a pool of two workers", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		q := queue.NewInMemoryQueue(queue.WithCapacity(8))
		h := newRecordingHandler()
		pool := worker.NewPool(2, q, worker.HandlerFunc(h.Handle))
		pool.Start(ctx)

		convey.So(pool.Size(), convey.ShouldEqual, 2)

		convey.Convey("When jobs arrive", func() {
			for i := 0; i < 5; i++ {
				q.Enqueue(ctx, queue.NewJob("schedule"))
			}

			convey.Convey("Then every job is handled once", func() {
				convey.So(waitHandled(h, 5), convey.ShouldBeTrue)
				convey.So(h.seen(), convey.ShouldHaveLength, 5)
			})
		})

		convey.Convey("When the pool shuts down", func() {
			err := pool.Shutdown(context.Background())

			convey.Convey("Then the queue is closed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given a pool whose only worker is busy", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		q := queue.NewInMemoryQueue(queue.WithCapacity(1))
		started := make(chan struct{}, 4)
		release := make(chan struct{})
		pool := worker.NewPool(1, q, worker.HandlerFunc(func(ctx context.Context, _ queue.Job) error {
			started <- struct{}{}
			select {
			case <-release:
			case <-ctx.Done():
			}
			return nil
		}))
		pool.Start(ctx)

		convey.So(q.Enqueue(ctx, queue.NewJob("first")), convey.ShouldBeTrue)
		<-started

		convey.Convey("When the queue fills behind it", func() {
			queued := q.Enqueue(ctx, queue.NewJob("second"))
			time.Sleep(20 * time.Millisecond)
			overflow := q.Enqueue(ctx, queue.NewJob("third"))

			convey.Convey("Then the waiting job is counted and capacity is exact", func() {
				convey.So(queued, convey.ShouldBeTrue)
				convey.So(q.Len(ctx), convey.ShouldEqual, 1)
				convey.So(overflow, convey.ShouldBeFalse)
			})

			convey.Convey("Then shutdown completes once the job in flight returns", func() {
				close(release)
				done := make(chan error, 1)
				go func() { done <- pool.Shutdown(context.Background()) }()
				select {
				case err := <-done:
					convey.So(err, convey.ShouldBeNil)
				case <-time.After(2 * time.Second):
					t.Fatal("pool shutdown blocked")
				}
			})
		})
	})

	convey.Convey("Given a non-positive worker count", t, func() {
		pool := worker.NewPool(0, queue.NewInMemoryQueue(), worker.HandlerFunc(func(context.Context, queue.Job) error { return nil }))
		convey.So(pool.Size(), convey.ShouldEqual, 1)
	})
}
