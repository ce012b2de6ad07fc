package cron

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/angelmondragon/tableside-backend/pkg/logger"
)

type fakeLock struct {
	acquired   bool
	releaseErr error
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	if f.acquired {
		return false, nil
	}
	f.acquired = true
	return true, nil
}

func (f *fakeLock) Release(context.Context) error {
	f.acquired = false
	return f.releaseErr
}

type testJob struct {
	name     string
	affected int64
	err      error
	runs     int
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(context.Context) (int64, error) {
	t.runs++
	return t.affected, t.err
}

type recordingMetrics struct {
	success  map[string]int
	failure  map[string]int
	affected map[string]int64
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{success: map[string]int{}, failure: map[string]int{}, affected: map[string]int64{}}
}

func (r *recordingMetrics) ObserveDuration(string, time.Duration) {}
func (r *recordingMetrics) IncSuccess(job string)                 { r.success[job]++ }
func (r *recordingMetrics) IncFailure(job string)                 { r.failure[job]++ }
func (r *recordingMetrics) AddAffected(job string, n int64)       { r.affected[job] += n }

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test", Output: io.Discard})
}

func TestRunOnceRunsAllJobsEvenOnFailure(t *testing.T) {
	ok := &testJob{name: "success", affected: 3}
	failing := &testJob{name: "fail", err: errors.New("boom")}
	metrics := newRecordingMetrics()
	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(ok, failing),
		Lock:     &fakeLock{},
		Metrics:  metrics,
	})
	require.NoError(t, err)

	err = svc.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fail: boom")
	assert.Len(t, multierr.Errors(err), 1)

	assert.Equal(t, 1, ok.runs)
	assert.Equal(t, 1, failing.runs)
	assert.Equal(t, 1, metrics.success["success"])
	assert.Equal(t, int64(3), metrics.affected["success"])
	assert.Equal(t, 1, metrics.failure["fail"])
}

func TestRunOnceSkipsWhenLockHeld(t *testing.T) {
	job := &testJob{name: "job"}
	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(job),
		Lock:     &fakeLock{acquired: true},
	})
	require.NoError(t, err)

	require.NoError(t, svc.RunOnce(context.Background()))
	assert.Zero(t, job.runs)
}

func TestRunOnceCombinesReleaseError(t *testing.T) {
	failing := &testJob{name: "fail", err: errors.New("boom")}
	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(failing),
		Lock:     &fakeLock{releaseErr: errors.New("redis gone")},
	})
	require.NoError(t, err)

	err = svc.RunOnce(context.Background())
	assert.Len(t, multierr.Errors(err), 2)
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{Lock: &fakeLock{}})
	assert.Error(t, err)
	_, err = NewService(ServiceParams{Logger: testLogger()})
	assert.Error(t, err)
}
