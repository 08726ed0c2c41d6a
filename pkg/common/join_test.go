package common

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchAll_PreservesInputOrder(t *testing.T) {
	titles := map[string]string{
		"films/1": "A New Hope",
		"films/2": "The Empire Strikes Back",
	}
	delays := map[string]time.Duration{
		"films/1": 30 * time.Millisecond,
		"films/2": 0,
	}

	result := FetchAll(context.Background(), []string{"films/1", "films/2"}, 2, func(ctx context.Context, ref string) (string, error) {
		time.Sleep(delays[ref])
		return titles[ref], nil
	})

	assert.True(t, result.OK())
	assert.Equal(t, []string{"A New Hope", "The Empire Strikes Back"}, result.Values)
}

func TestFetchAll_PartialSuccess(t *testing.T) {
	boom := errors.New("boom")
	refs := []string{"a", "b", "c"}

	result := FetchAll(context.Background(), refs, 0, func(ctx context.Context, ref string) (string, error) {
		if ref == "b" {
			return "", boom
		}
		return ref + "!", nil
	})

	assert.False(t, result.OK())
	assert.Equal(t, []string{"a!", "c!"}, result.Values)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "b", result.Failures[0].Ref)
	assert.ErrorIs(t, result.Failures[0].Err, boom)
	assert.Equal(t, []string{"b"}, result.FailedRefs())
}

func TestFetchAll_EmptyRefs(t *testing.T) {
	called := false
	result := FetchAll(context.Background(), nil, 3, func(ctx context.Context, ref string) (int, error) {
		called = true
		return 0, nil
	})

	assert.False(t, called)
	assert.NotNil(t, result.Values)
	assert.Empty(t, result.Values)
	assert.True(t, result.OK())
}

func TestFetchAll_RespectsLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	refs := make([]string, 12)
	for i := range refs {
		refs[i] = "ref"
	}

	FetchAll(context.Background(), refs, 3, func(ctx context.Context, ref string) (struct{}, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return struct{}{}, nil
	})

	assert.LessOrEqual(t, peak.Load(), int32(3))
	assert.Greater(t, peak.Load(), int32(0))
}

func TestFetchAll_CanceledContextRecordsFailures(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	result := FetchAll(ctx, []string{"x", "y"}, 1, func(ctx context.Context, ref string) (string, error) {
		calls.Add(1)
		return ref, nil
	})

	assert.Equal(t, int32(0), calls.Load())
	assert.Empty(t, result.Values)
	require.Len(t, result.Failures, 2)
	for _, f := range result.Failures {
		assert.ErrorIs(t, f.Err, context.Canceled)
	}
}

func TestTimeoutManager_ReportsViewTimeout(t *testing.T) {
	tm := NewTimeoutManager(10 * time.Millisecond)

	err := tm.Run(context.Background(), "detail", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	assert.ErrorIs(t, err, ErrViewTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTimeoutManager_PassesThroughOtherErrors(t *testing.T) {
	tm := NewTimeoutManager(time.Second)
	boom := errors.New("boom")

	err := tm.Run(context.Background(), "detail", func(ctx context.Context) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrViewTimeout)
}

func TestTimeoutManager_ZeroTimeoutIsUnbounded(t *testing.T) {
	tm := NewTimeoutManager(0)

	err := tm.Run(context.Background(), "detail", func(ctx context.Context) error {
		_, hasDeadline := ctx.Deadline()
		assert.False(t, hasDeadline)
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, time.Duration(0), tm.Timeout())
}
