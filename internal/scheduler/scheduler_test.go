package scheduler

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestScheduleSlateRunRejectsBadExpression(t *testing.T) {
	s := NewScheduler(nil, time.Minute, quietLogger())

	err := s.ScheduleSlateRun("not a cron line")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to add job")
}

func TestStartRequiresJobs(t *testing.T) {
	s := NewScheduler(nil, time.Minute, quietLogger())

	err := s.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no jobs scheduled")
}

func TestStartStopLifecycle(t *testing.T) {
	s := NewScheduler(nil, time.Minute, quietLogger())
	require.NoError(t, s.ScheduleSlateRun("0 9 * * *"))

	assert.False(t, s.IsRunning())
	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())

	// Double start is an error; the first run stays active.
	require.Error(t, s.Start())
	assert.True(t, s.IsRunning())

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())

	// Stopping an idle scheduler is a no-op.
	require.NoError(t, s.Stop())
}

func TestScheduleWhileRunningRejected(t *testing.T) {
	s := NewScheduler(nil, time.Minute, quietLogger())
	require.NoError(t, s.ScheduleSlateRun("0 9 * * *"))
	require.NoError(t, s.Start())
	defer func() { _ = s.Stop() }()

	err := s.ScheduleSlateRun("0 12 * * *")
	require.Error(t, err)
}

func TestNextRun(t *testing.T) {
	s := NewScheduler(nil, time.Minute, quietLogger())
	require.NoError(t, s.ScheduleSlateRun("0 9 * * *"))

	// Not running yet: no next run.
	assert.True(t, s.NextRun().IsZero())

	require.NoError(t, s.Start())
	defer func() { _ = s.Stop() }()

	next := s.NextRun()
	require.False(t, next.IsZero())
	assert.True(t, next.After(time.Now().UTC().Add(-time.Minute)))
	assert.Equal(t, 9, next.UTC().Hour())
}
