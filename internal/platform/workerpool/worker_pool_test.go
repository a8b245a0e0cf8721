package workerpool

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"webnmap/internal/testutil"
)

func TestNew(t *testing.T) {
	testutil.AssertEqual(t, New(Config{}).BatchSize(), DefaultBatchSize, "default batch size")
	testutil.AssertEqual(t, New(Config{BatchSize: 3}).BatchSize(), 3, "explicit batch size")
}

func TestRun_PreservesOrder(t *testing.T) {
	pool := New(Config{BatchSize: 4})
	items := []int{5, 4, 3, 2, 1, 0, 9, 8}

	out := Run(context.Background(), pool, items, func(_ context.Context, n int) int {
		time.Sleep(time.Duration(n) * time.Millisecond)
		return n * 10
	}, nil)

	want := []int{50, 40, 30, 20, 10, 0, 90, 80}
	testutil.AssertEqual(t, out, want, "results follow input order")
	testutil.AssertEqual(t, pool.Stats(), Stats{Batches: 2, Tasks: 8}, "stats")
}

func TestRun_BoundedInflight(t *testing.T) {
	pool := New(Config{BatchSize: 5})
	items := make([]int, 12)

	var mu sync.Mutex
	inflight, peak := 0, 0
	var batches []int

	Run(context.Background(), pool, items, func(context.Context, int) struct{} {
		mu.Lock()
		inflight++
		if inflight > peak {
			peak = inflight
		}
		mu.Unlock()

		time.Sleep(10 * time.Millisecond)

		mu.Lock()
		inflight--
		mu.Unlock()
		return struct{}{}
	}, func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		testutil.AssertEqual(t, inflight, 0, "a batch completes fully before the next")
		testutil.AssertEqual(t, total, 12, "total is the item count")
		batches = append(batches, done)
	})

	testutil.AssertTrue(t, peak <= 5, "never more than five in flight")
	testutil.AssertEqual(t, batches, []int{5, 10, 12}, "progress after each batch")
}

func TestRun_StopsOnCancel(t *testing.T) {
	pool := New(Config{BatchSize: 2})
	ctx, cancel := context.WithCancel(context.Background())

	var calls atomic.Int32
	out := Run(ctx, pool, []string{"a", "b", "c", "d", "e"}, func(context.Context, string) string {
		calls.Add(1)
		return "done"
	}, func(done, total int) {
		if done == 2 {
			cancel()
		}
	})

	testutil.AssertEqual(t, calls.Load(), int32(2), "later batches are not started")
	testutil.AssertEqual(t, out, []string{"done", "done", "", "", ""}, "unstarted items stay zero")
}

func TestRun_Empty(t *testing.T) {
	called := false
	out := Run(context.Background(), New(Config{}), []int(nil), func(context.Context, int) int { return 1 }, func(int, int) { called = true })
	testutil.AssertLen(t, out, 0, "no results")
	testutil.AssertFalse(t, called, "no batches, no progress")
}
