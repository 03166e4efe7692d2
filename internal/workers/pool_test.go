package workers_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ortelius/forkpoint-cves/internal/workers"
	"github.com/ortelius/forkpoint-cves/model"
)

func makeItems(n int) []model.WorkItem {
	items := make([]model.WorkItem, n)
	for i := range items {
		items[i] = model.WorkItem{Component: fmt.Sprintf("pkg:npm/pkg-%d", i), ForkPoint: "1.0.0"}
	}
	return items
}

func TestNew_RejectsZeroLanes(t *testing.T) {
	_, err := workers.New(0, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lanes must be >= 1")
}

func TestRun_EveryItemExactlyOnce(t *testing.T) {
	for _, lanes := range []int{1, 2, 7, 64} {
		for _, n := range []int{0, 1, 10, 250} {
			t.Run(fmt.Sprintf("lanes=%d/items=%d", lanes, n), func(t *testing.T) {
				pool, err := workers.New(lanes, false)
				require.NoError(t, err)

				var mu sync.Mutex
				seen := make(map[string]int)
				err = pool.Run(context.Background(), makeItems(n), func(_ context.Context, item model.WorkItem) {
					mu.Lock()
					seen[item.Component]++
					mu.Unlock()
				})
				require.NoError(t, err)

				assert.Len(t, seen, n)
				for component, count := range seen {
					assert.Equal(t, 1, count, component)
				}
			})
		}
	}
}

func TestRun_UsesConcurrentLanes(t *testing.T) {
	pool, err := workers.New(4, false)
	require.NoError(t, err)

	var active, peak int32
	err = pool.Run(context.Background(), makeItems(16), func(context.Context, model.WorkItem) {
		cur := atomic.AddInt32(&active, 1)
		for {
			old := atomic.LoadInt32(&peak)
			if cur <= old || atomic.CompareAndSwapInt32(&peak, old, cur) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&active, -1)
	})
	require.NoError(t, err)

	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(4))
	assert.Greater(t, atomic.LoadInt32(&peak), int32(1))
}

func TestRun_SingleLaneIsFIFO(t *testing.T) {
	pool, err := workers.New(1, false)
	require.NoError(t, err)

	items := makeItems(5)
	var order []string
	require.NoError(t, pool.Run(context.Background(), items, func(_ context.Context, item model.WorkItem) {
		order = append(order, item.Component)
	}))

	want := make([]string, len(items))
	for i, item := range items {
		want[i] = item.Component
	}
	assert.Equal(t, want, order)
}

func TestRun_Canceled(t *testing.T) {
	pool, err := workers.New(1, false)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	var processed int32
	err = pool.Run(ctx, makeItems(10), func(context.Context, model.WorkItem) {
		if atomic.AddInt32(&processed, 1) == 3 {
			cancel()
		}
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(3), atomic.LoadInt32(&processed))
}
