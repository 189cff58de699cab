package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingJobs struct {
	expiries   atomic.Int32
	dispatches atomic.Int32
	fail       bool
}

func (c *countingJobs) ExpireOverdue(context.Context) (int, error) {
	c.expiries.Add(1)
	if c.fail {
		return 0, errors.New("db down")
	}
	return 1, nil
}

func (c *countingJobs) DispatchPending(_ context.Context, limit int) (int, error) {
	c.dispatches.Add(1)
	if limit != dispatchBatchSize {
		return 0, errors.New("unexpected batch size")
	}
	return 0, nil
}

func TestScheduler_RunsJobsAndStops(t *testing.T) {
	jobs := &countingJobs{}
	s := NewScheduler(jobs, jobs, "@every 1s", "@every 1s", zap.NewNop())
	require.NoError(t, s.Start(context.Background()))

	require.Eventually(t, func() bool {
		return jobs.expiries.Load() > 0 && jobs.dispatches.Load() > 0
	}, 5*time.Second, 50*time.Millisecond)

	s.Stop()
}

// blockingJobs runs until its context is cancelled
type blockingJobs struct {
	started chan struct{}
	once    atomic.Bool
}

func (b *blockingJobs) ExpireOverdue(ctx context.Context) (int, error) {
	if b.once.CompareAndSwap(false, true) {
		close(b.started)
	}
	<-ctx.Done()
	return 0, ctx.Err()
}

func (b *blockingJobs) DispatchPending(context.Context, int) (int, error) {
	return 0, nil
}

func TestScheduler_StopCancelsRunningJob(t *testing.T) {
	jobs := &blockingJobs{started: make(chan struct{})}
	s := NewScheduler(jobs, jobs, "@every 1s", "@daily", zap.NewNop())
	// the parent context stays live, as when another component fails first
	require.NoError(t, s.Start(context.Background()))

	select {
	case <-jobs.started:
	case <-time.After(5 * time.Second):
		t.Fatal("expiry job did not start")
	}

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop waited on a job instead of cancelling it")
	}
}

func TestScheduler_InvalidSpec(t *testing.T) {
	jobs := &countingJobs{}
	s := NewScheduler(jobs, jobs, "not a spec", "@every 1s", zap.NewNop())
	assert.ErrorContains(t, s.Start(context.Background()), "dbs expiry")
}

func TestScheduler_JobErrorsAreLogged(t *testing.T) {
	jobs := &countingJobs{fail: true}
	s := NewScheduler(jobs, jobs, "@daily", "@daily", zap.NewNop())
	s.baseCtx = context.Background()

	assert.NotPanics(t, s.runExpiry)
	assert.NotPanics(t, s.runDispatch)
	assert.Equal(t, int32(1), jobs.expiries.Load())
	assert.Equal(t, int32(1), jobs.dispatches.Load())
}
