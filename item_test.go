package workpool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var errDomain = errors.New("sensor offline")

func square(_ context.Context, x int) (int, error) { return x * x, nil }

func TestItem_ResultMatchesDirectCall(t *testing.T) {
	for _, in := range []int{-3, 0, 1, 7, 1000} {
		it := NewItem(Job[int, int](square), in)
		it.Run(context.Background())

		want, wantErr := square(context.Background(), in)
		got, err := it.Result()
		require.Equal(t, wantErr, err)
		require.Equal(t, want, got)
	}
}

func TestItem_CapturesError(t *testing.T) {
	it := NewItem(func(context.Context, string) (int, error) { return 0, errDomain }, "plc-1")

	require.NotPanics(t, func() { it.Run(context.Background()) })

	_, err := it.Result()
	require.ErrorIs(t, err, errDomain)
	require.ErrorIs(t, it.Err(), errDomain)
}

func TestItem_CapturesPanic(t *testing.T) {
	it := NewItem(func(context.Context, int) (int, error) { panic("boom") }, 1)

	require.NotPanics(t, func() { it.Run(context.Background()) })

	v, err := it.Result()
	require.ErrorIs(t, err, ErrJobPanicked)
	require.Contains(t, err.Error(), "boom")
	require.Zero(t, v)
}

func TestItem_ResultBlocksUntilRun(t *testing.T) {
	it := NewItem(Job[int, int](square), 4)

	got := make(chan int, 1)
	go func() {
		v, _ := it.Result()
		got <- v
	}()

	select {
	case <-got:
		t.Fatalf("Result returned before Run")
	case <-time.After(50 * time.Millisecond):
	}
	require.NoError(t, it.Err(), "Err must be nil before Run")

	it.Run(context.Background())

	select {
	case v := <-got:
		require.Equal(t, 16, v)
	case <-time.After(time.Second):
		t.Fatalf("Result did not return after Run")
	}
}

func TestItem_RunOnceAndIdempotentReads(t *testing.T) {
	var calls atomic.Int32
	it := NewItem(func(_ context.Context, x int) (int, error) {
		return int(calls.Add(1)) * x, nil
	}, 10, WithID("once"))

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() { defer wg.Done(); it.Run(context.Background()) }()
	}
	wg.Wait()

	require.Equal(t, int32(1), calls.Load())
	for range 3 {
		v, err := it.Result()
		require.NoError(t, err)
		require.Equal(t, 10, v)
	}
	require.Equal(t, "once", it.ID())
	require.Equal(t, 10, it.Input())
}

func TestItem_ResultContextTimesOut(t *testing.T) {
	it := NewItem(Job[int, int](square), 2)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := it.ResultContext(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	select {
	case <-it.Done():
		t.Fatalf("Done closed for an item that never ran")
	default:
	}
}

func TestItem_JobReceivesContextValues(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "line-3")

	it := NewItem(func(ctx context.Context, _ struct{}) (string, error) {
		s, _ := ctx.Value(key{}).(string)
		return s, nil
	}, struct{}{})
	it.Run(ctx)

	v, err := it.Result()
	require.NoError(t, err)
	require.Equal(t, "line-3", v)
}
