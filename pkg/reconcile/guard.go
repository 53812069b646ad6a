package reconcile

import (
	"context"
	"time"

	"course-marketplace-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// PollGuard bounds how often one payment can trigger a live PSP lookup across all instances.
type PollGuard interface {
	Acquire(ctx context.Context, paymentId uuid.UUID) (bool, error)
}

type RedisPollGuard struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger logger.ILogger
}

func NewRedisPollGuard(rdb *redis.Client, ttl time.Duration, log logger.ILogger) *RedisPollGuard {
	return &RedisPollGuard{rdb: rdb, ttl: ttl, logger: log}
}

// Acquire fails open: if Redis is unreachable the lookup proceeds.
func (g *RedisPollGuard) Acquire(ctx context.Context, paymentId uuid.UUID) (bool, error) {
	ok, err := g.rdb.SetNX(ctx, "payment:poll:"+paymentId.String(), 1, g.ttl).Result()
	if err != nil {
		g.logger.Warn("RECONCILE", "Poll guard unavailable, allowing lookup", map[string]interface{}{
			"payment_id": paymentId.String(),
			"error":      err.Error(),
		})
		return true, nil
	}
	return ok, nil
}
