package cron

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

type fakeLock struct {
	acquired bool
	err      error
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.acquired {
		return false, nil
	}
	f.acquired = true
	return true, nil
}

func (f *fakeLock) Release(context.Context) error { f.acquired = false; return nil }

type testJob struct {
	name string
	err  error
	runs int
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(context.Context) error {
	t.runs++
	return t.err
}

func mustRegistry(t *testing.T, jobs ...Job) *Registry {
	t.Helper()
	registry, err := NewRegistry(jobs...)
	require.NoError(t, err)
	return registry
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test", Output: io.Discard})
}

func TestNewServiceRequiresLoggerAndLock(t *testing.T) {
	_, err := NewService(ServiceParams{Lock: &fakeLock{}})
	require.Error(t, err)
	_, err = NewService(ServiceParams{Logger: testLogger()})
	require.Error(t, err)
}

func TestServiceRunCycleRunsAllJobsEvenOnFailure(t *testing.T) {
	success := &testJob{name: "success"}
	failure := &testJob{name: "fail", err: errors.New("boom")}
	lock := &fakeLock{}
	service, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: mustRegistry(t, success, failure),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.NewRegistry()),
	})
	require.NoError(t, err)

	err = service.RunOnce(context.Background())
	require.ErrorContains(t, err, "fail: boom")
	require.Len(t, multierr.Errors(err), 1)
	require.Equal(t, 1, success.runs)
	require.Equal(t, 1, failure.runs)
	require.False(t, lock.acquired, "lock should be released after the cycle")
}

func TestServiceRunCycleSkipsWhenLockHeld(t *testing.T) {
	job := &testJob{name: "job"}
	service, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: mustRegistry(t, job),
		Lock:     &fakeLock{acquired: true},
	})
	require.NoError(t, err)

	require.NoError(t, service.RunOnce(context.Background()))
	require.Zero(t, job.runs)
}

func TestServiceRunCycleLockError(t *testing.T) {
	service, err := NewService(ServiceParams{
		Logger: testLogger(),
		Lock:   &fakeLock{err: errors.New("redis down")},
	})
	require.NoError(t, err)
	require.Error(t, service.RunOnce(context.Background()))
}

func TestServiceRunStopsOnCancel(t *testing.T) {
	job := &testJob{name: "job"}
	service, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: mustRegistry(t, job),
		Lock:     &fakeLock{},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = service.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, job.runs, "the first cycle runs before the ticker")
}

func TestServiceRunJobRunsOnlyTheNamedJob(t *testing.T) {
	sweep := &testJob{name: "subscription-sweep"}
	other := &testJob{name: "other"}
	lock := &fakeLock{}
	service, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: mustRegistry(t, sweep, other),
		Lock:     lock,
	})
	require.NoError(t, err)

	require.NoError(t, service.RunJob(context.Background(), "subscription-sweep"))
	require.Equal(t, 1, sweep.runs)
	require.Zero(t, other.runs)
	require.False(t, lock.acquired)

	require.ErrorContains(t, service.RunJob(context.Background(), "nope"), "unknown cron job")
}

type lostLeaseLock struct{ fakeLock }

func (l *lostLeaseLock) Release(context.Context) error { return ErrLeaseLost }

func TestServiceRunOnceToleratesLostLease(t *testing.T) {
	job := &testJob{name: "job"}
	service, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: mustRegistry(t, job),
		Lock:     &lostLeaseLock{},
	})
	require.NoError(t, err)

	require.NoError(t, service.RunOnce(context.Background()))
	require.Equal(t, 1, job.runs)
}
