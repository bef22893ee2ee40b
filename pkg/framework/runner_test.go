package framework

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func waitCtx(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestRunnerStopsOthersOnFailure(t *testing.T) {
	failure := errors.New("bus stuck")
	stopped := make(chan struct{})
	r := NewRunner().Go(
		NamedRun("engine", RunFunc(func(ctx context.Context) error {
			return failure
		})),
		NamedRun("transport", RunFunc(func(ctx context.Context) error {
			err := waitCtx(ctx)
			close(stopped)
			return err
		})),
	)

	errCh := make(chan error, 1)
	go func() { errCh <- r.Wait() }()
	select {
	case err := <-errCh:
		require.Equal(t, failure, err)
	case <-time.After(time.Second):
		t.Fatal("runner did not stop")
	}
	select {
	case <-stopped:
	default:
		t.Fatal("transport not stopped")
	}
}

func TestRunnerStop(t *testing.T) {
	r := NewRunner().Go(RunFunc(waitCtx), RunFunc(waitCtx))
	r.Stop()
	require.NoError(t, r.Wait())
}

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Add(nil, nil).Aggregate())

	e1 := errors.New("e1")
	require.Equal(t, e1, errs.Add(e1).Aggregate())

	e2 := errors.New("e2")
	err := errs.Add(e2).Aggregate()
	require.Equal(t, "Multiple errors:\ne1\ne2", err.Error())
	require.True(t, errors.Is(err, e1))
	require.True(t, errors.Is(err, e2))
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestRunWithContextCloser(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	unblock := make(chan struct{})
	closes := 0
	closer := closerFunc(func() error {
		closes++
		close(unblock)
		return nil
	})
	cancel()
	err := RunWithContextCloser(ctx, closer, func() error {
		<-unblock
		return nil
	})
	require.Equal(t, context.Canceled, err)
	require.Equal(t, 1, closes)
}
