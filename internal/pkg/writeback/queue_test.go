package writeback

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestQueue(t *testing.T) *Queue {
	t.Helper()
	q, err := New(&Config{Workers: 4, TaskTimeout: time.Second}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(q.Shutdown)
	return q
}

func TestEnqueueRunsTask(t *testing.T) {
	q := newTestQueue(t)

	done := make(chan struct{})
	err := q.Enqueue("test.task", func(ctx context.Context) error {
		close(done)
		return nil
	})
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task did not run")
	}

	q.Wait()
	stats := q.Stats()
	assert.Equal(t, int64(1), stats.Submitted)
	assert.Equal(t, int64(1), stats.Completed)
	assert.Equal(t, int64(0), stats.Failed)
}

func TestFailureIsCountedNotPropagated(t *testing.T) {
	q := newTestQueue(t)

	err := q.Enqueue("test.fail", func(ctx context.Context) error {
		return errors.New("boom")
	})
	require.NoError(t, err) // enqueue succeeds regardless of task outcome

	q.Wait()
	stats := q.Stats()
	assert.Equal(t, int64(1), stats.Submitted)
	assert.Equal(t, int64(0), stats.Completed)
	assert.Equal(t, int64(1), stats.Failed)
}

func TestObserverSeesEverySettle(t *testing.T) {
	q := newTestQueue(t)

	var mu sync.Mutex
	var settled []string
	var errs []error
	q.SetObserver(func(name string, err error) {
		mu.Lock()
		settled = append(settled, name)
		errs = append(errs, err)
		mu.Unlock()
	})

	boom := errors.New("boom")
	require.NoError(t, q.Enqueue("ok", func(ctx context.Context) error { return nil }))
	require.NoError(t, q.Enqueue("bad", func(ctx context.Context) error { return boom }))

	q.Wait()
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, settled, 2)
	assert.ElementsMatch(t, []string{"ok", "bad"}, settled)

	failures := 0
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, boom)
			failures++
		}
	}
	assert.Equal(t, 1, failures)
}

func TestTaskTimeout(t *testing.T) {
	q, err := New(&Config{Workers: 1, TaskTimeout: 20 * time.Millisecond}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(q.Shutdown)

	require.NoError(t, q.Enqueue("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))

	q.Wait()
	assert.Equal(t, int64(1), q.Stats().Failed)
}

func TestKeyedTasksRunInSubmissionOrder(t *testing.T) {
	q := newTestQueue(t)

	var mu sync.Mutex
	var order []int
	for i := 0; i < 8; i++ {
		i := i
		require.NoError(t, q.EnqueueKeyed("keyed", "topic-1", func(ctx context.Context) error {
			if i < 4 {
				// early tasks dawdle; later ones must still wait their turn
				time.Sleep(10 * time.Millisecond)
			}
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return nil
		}))
	}

	q.Wait()
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, order)
	assert.Equal(t, int64(8), q.Stats().Completed)
}

func TestKeyedTasksWithDistinctKeysAllRun(t *testing.T) {
	q := newTestQueue(t)

	var mu sync.Mutex
	ran := map[string]bool{}
	for _, key := range []string{"a", "b", "c"} {
		key := key
		require.NoError(t, q.EnqueueKeyed("keyed", key, func(ctx context.Context) error {
			mu.Lock()
			ran[key] = true
			mu.Unlock()
			return nil
		}))
	}

	q.Wait()
	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, ran, 3)
}

func TestEnqueueAfterShutdown(t *testing.T) {
	q, err := New(&Config{Workers: 1, TaskTimeout: time.Second}, zap.NewNop())
	require.NoError(t, err)

	q.Shutdown()

	err = q.Enqueue("late", func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrQueueClosed)

	err = q.EnqueueKeyed("late", "k", func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestShutdownDrainsPendingTasks(t *testing.T) {
	q, err := New(&Config{Workers: 2, TaskTimeout: time.Second}, zap.NewNop())
	require.NoError(t, err)

	var mu sync.Mutex
	ran := 0
	for i := 0; i < 10; i++ {
		require.NoError(t, q.Enqueue("work", func(ctx context.Context) error {
			time.Sleep(5 * time.Millisecond)
			mu.Lock()
			ran++
			mu.Unlock()
			return nil
		}))
	}

	q.Shutdown()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 10, ran)
}

func TestNilConfigUsesDefaults(t *testing.T) {
	q, err := New(nil, zap.NewNop())
	require.NoError(t, err)
	defer q.Shutdown()

	require.NoError(t, q.Enqueue("defaulted", func(ctx context.Context) error { return nil }))
	q.Wait()
	assert.Equal(t, int64(1), q.Stats().Completed)
}
