// Package scheduler runs the periodic payment jobs.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"course-marketplace-be/internal/config"
	"course-marketplace-be/internal/pkg/logger"

	"github.com/robfig/cron/v3"
)

type StaleSweeper interface {
	SweepStale(ctx context.Context, now time.Time) (int, error)
}

type CreditMaturer interface {
	MatureCredits(ctx context.Context, now time.Time) (int, error)
}

type RefundSettler interface {
	SettleApproved(ctx context.Context, now time.Time) (int, error)
}

type Scheduler struct {
	cron    *cron.Cron
	sweeper StaleSweeper
	maturer CreditMaturer
	settler RefundSettler
	spec    config.ScheduleConfig
	logger  logger.ILogger
	now     func() time.Time
}

func New(spec config.ScheduleConfig, sweeper StaleSweeper, maturer CreditMaturer, settler RefundSettler, log logger.ILogger) *Scheduler {
	return &Scheduler{
		// a slow sweep must not overlap with the next tick
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		sweeper: sweeper,
		maturer: maturer,
		settler: settler,
		spec:    spec,
		logger:  log,
		now:     time.Now,
	}
}

// Start registers every job and starts the scheduler. Jobs run with ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	jobs := []struct {
		name string
		spec string
		run  func(context.Context) (int, error)
	}{
		{"stale_payment_sweep", s.spec.StaleSweepSpec, s.RunStaleSweep},
		{"ledger_maturation", s.spec.MaturationSpec, s.RunMaturation},
		{"refund_settlement", s.spec.RefundSpec, s.RunRefundSettlement},
	}

	for _, job := range jobs {
		job := job
		if _, err := s.cron.AddFunc(job.spec, func() { s.runJob(ctx, job.name, job.run) }); err != nil {
			return fmt.Errorf("schedule %s (%q): %w", job.name, job.spec, err)
		}
	}

	s.cron.Start()
	s.logger.Info("SCHEDULER", "Cron jobs started", map[string]interface{}{
		"stale_sweep": s.spec.StaleSweepSpec,
		"maturation":  s.spec.MaturationSpec,
		"refunds":     s.spec.RefundSpec,
	})
	return nil
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("SCHEDULER", "Cron jobs stopped", nil)
}

func (s *Scheduler) RunStaleSweep(ctx context.Context) (int, error) {
	return s.sweeper.SweepStale(ctx, s.now())
}

func (s *Scheduler) RunMaturation(ctx context.Context) (int, error) {
	return s.maturer.MatureCredits(ctx, s.now())
}

func (s *Scheduler) RunRefundSettlement(ctx context.Context) (int, error) {
	return s.settler.SettleApproved(ctx, s.now())
}

func (s *Scheduler) runJob(ctx context.Context, name string, run func(context.Context) (int, error)) {
	start := time.Now()
	n, err := run(ctx)
	if err != nil {
		s.logger.Error("SCHEDULER", "Job failed", map[string]interface{}{
			"job":   name,
			"error": err.Error(),
		})
		return
	}
	s.logger.Info("SCHEDULER", "Job completed", map[string]interface{}{
		"job":         name,
		"processed":   n,
		"duration_ms": time.Since(start).Milliseconds(),
	})
}
