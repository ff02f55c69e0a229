package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/workpool"
)

var errMachineFault = errors.New("machine 3 reported a fault")

func square(_ context.Context, x int) (int, error) { return x * x, nil }

// newStartedPool creates a pool of the given size, starts it and stops it at test cleanup.
func newStartedPool(t *testing.T, size int, opts ...workpool.Option) *workpool.Pool {
	t.Helper()
	p, err := workpool.New(size, opts...)
	require.NoError(t, err)
	require.NoError(t, p.Start(context.Background()))
	t.Cleanup(func() { p.Stop() })
	return p
}

// resultWithin waits for the item's result, failing the test after d.
func resultWithin[I, O any](t *testing.T, it *workpool.Item[I, O], d time.Duration) (O, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	v, err := it.ResultContext(ctx)
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() != nil {
		t.Fatalf("timed out after %v waiting for item %q", d, it.ID())
	}
	return v, err
}
