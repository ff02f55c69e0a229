package tests

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/workpool"
)

func TestMap_ResultsInInputOrder(t *testing.T) {
	p := newStartedPool(t, 3)

	// later inputs finish first
	job := func(_ context.Context, x int) (int, error) {
		time.Sleep(time.Duration(10-x) * time.Millisecond)
		return x * x, nil
	}

	got, err := workpool.Map(context.Background(), p, job, []int{1, 2, 3, 4, 5, 6, 7})
	require.NoError(t, err)
	require.Equal(t, []int{1, 4, 9, 16, 25, 36, 49}, got)
}

func TestMap_JoinsFailuresWithInputIndex(t *testing.T) {
	p := newStartedPool(t, 2)

	job := func(_ context.Context, x int) (int, error) {
		if x%2 == 1 {
			return 0, errMachineFault
		}
		return x, nil
	}

	got, err := workpool.Map(context.Background(), p, job, []int{0, 1, 2, 3})
	require.ErrorIs(t, err, errMachineFault)
	require.Equal(t, []int{0, 0, 2, 0}, got)

	idx, ok := workpool.ExtractInputIndex(err)
	require.True(t, ok)
	require.Equal(t, 1, idx)

	var indexes []int
	for _, e := range err.(interface{ Unwrap() []error }).Unwrap() {
		var ie *workpool.InputError
		require.True(t, errors.As(e, &ie))
		indexes = append(indexes, ie.Index())
	}
	require.Equal(t, []int{1, 3}, indexes)
}

func TestMap_StoppedPool(t *testing.T) {
	p, err := workpool.New(1)
	require.NoError(t, err)
	p.Stop()

	got, err := workpool.Map(context.Background(), p, workpool.Job[int, int](square), []int{1})
	require.ErrorIs(t, err, workpool.ErrPoolStopped)
	require.Nil(t, got)
}

func TestMap_ContextEndsWhilePoolDormant(t *testing.T) {
	p, err := workpool.New(1)
	require.NoError(t, err)
	t.Cleanup(func() { p.Stop() })

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	got, err := workpool.Map(ctx, p, workpool.Job[int, int](square), []int{1, 2})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Len(t, got, 2)
	_, ok := workpool.ExtractInputIndex(err)
	require.False(t, ok)
}

func TestForEach_VisitsEveryInput(t *testing.T) {
	p := newStartedPool(t, 3)

	var mu sync.Mutex
	seen := map[int]bool{}
	err := workpool.ForEach(context.Background(), p, func(_ context.Context, x int) error {
		mu.Lock()
		defer mu.Unlock()
		seen[x] = true
		if x == 4 {
			return errMachineFault
		}
		return nil
	}, []int{1, 2, 3, 4, 5})

	require.ErrorIs(t, err, errMachineFault)
	idx, ok := workpool.ExtractInputIndex(err)
	require.True(t, ok)
	require.Equal(t, 3, idx)
	require.Len(t, seen, 5)
}

func TestForEach_NoInputs(t *testing.T) {
	p, err := workpool.New(1)
	require.NoError(t, err)
	// never started: an empty ForEach must not wait on it
	require.NoError(t, workpool.ForEach(context.Background(), p, func(context.Context, int) error { return nil }, nil))
}
