package reconcile

import (
	"context"
	"fmt"
	"time"

	"course-marketplace-be/internal/entity"
	"course-marketplace-be/internal/pkg/logger"
	"course-marketplace-be/internal/repository/specification"
	"course-marketplace-be/internal/repository/unitofwork"
)

// Sweeper re-polls payments left PENDING past the stale threshold, covering lost webhooks
// and poll loops that ran out of budget.
type Sweeper struct {
	uowFactory unitofwork.RepositoryFactory
	engine     *Engine
	staleAfter time.Duration
	batch      int
	logger     logger.ILogger
}

func NewSweeper(uowFactory unitofwork.RepositoryFactory, engine *Engine, staleAfter time.Duration, batch int, log logger.ILogger) *Sweeper {
	return &Sweeper{
		uowFactory: uowFactory,
		engine:     engine,
		staleAfter: staleAfter,
		batch:      batch,
		logger:     log,
	}
}

// SweepStale returns how many stale payments reached a terminal state.
func (s *Sweeper) SweepStale(ctx context.Context, now time.Time) (int, error) {
	stale, err := s.uowFactory.NewUnitOfWork(ctx).PaymentRepository().FindAll(ctx,
		specification.ByStatus{Status: string(entity.PaymentStatusPending)},
		specification.CreatedBefore{Before: now.Add(-s.staleAfter)},
		specification.Pagination{Limit: s.batch},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to load stale payments: %w", err)
	}

	settled := 0
	for _, payment := range stale {
		if ctx.Err() != nil {
			break
		}
		res, err := s.engine.Poll(ctx, payment.Id)
		if err != nil {
			s.logger.Error("SWEEPER", "Failed to poll stale payment", map[string]interface{}{
				"payment_id": payment.Id.String(),
				"error":      err.Error(),
			})
			continue
		}
		if res.Payment.Status.IsTerminal() {
			settled++
		}
	}

	s.logger.Info("SWEEPER", "Stale sweep finished", map[string]interface{}{
		"candidates": len(stale),
		"settled":    settled,
	})
	return settled, nil
}
