package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"course-marketplace-be/internal/config"
	"course-marketplace-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	calls atomic.Int32
	last  atomic.Value
}

func (j *countingJob) SweepStale(ctx context.Context, now time.Time) (int, error) {
	j.calls.Add(1)
	j.last.Store(now)
	return 1, nil
}

func (j *countingJob) MatureCredits(ctx context.Context, now time.Time) (int, error) {
	j.calls.Add(1)
	j.last.Store(now)
	return 2, nil
}

func (j *countingJob) SettleApproved(ctx context.Context, now time.Time) (int, error) {
	j.calls.Add(1)
	j.last.Store(now)
	return 3, nil
}

func TestScheduler_RunsJobsOnSchedule(t *testing.T) {
	sweeper, maturer, settler := &countingJob{}, &countingJob{}, &countingJob{}
	s := New(config.ScheduleConfig{StaleSweepSpec: "* * * * * *", MaturationSpec: "* * * * * *", RefundSpec: "* * * * * *"},
		sweeper, maturer, settler, logger.NewNopLogger())

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return sweeper.calls.Load() > 0 && maturer.calls.Load() > 0 && settler.calls.Load() > 0
	}, 3*time.Second, 50*time.Millisecond)
}

func TestScheduler_InvalidSpec(t *testing.T) {
	s := New(config.ScheduleConfig{StaleSweepSpec: "every tuesday", MaturationSpec: "0 0 * * * *", RefundSpec: "0 0 * * * *"},
		&countingJob{}, &countingJob{}, &countingJob{}, logger.NewNopLogger())

	err := s.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stale_payment_sweep")
}

func TestScheduler_ManualRunsUseClock(t *testing.T) {
	sweeper, maturer, settler := &countingJob{}, &countingJob{}, &countingJob{}
	s := New(config.ScheduleConfig{}, sweeper, maturer, settler, logger.NewNopLogger())
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	n, err := s.RunStaleSweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, fixed, sweeper.last.Load())

	n, err = s.RunMaturation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, fixed, maturer.last.Load())

	n, err = s.RunRefundSettlement(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, fixed, settler.last.Load())
}
