package scheduler

import (
	"context"
	"time"

	authrepo "meetingease_backend/internal/auth/repository"
	"meetingease_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TokenCleanup periodically prunes expired refresh and verification tokens
// so the auth_tokens table does not grow unbounded.
type TokenCleanup struct {
	repo     *authrepo.Repository
	log      *logger.Logger
	interval time.Duration
}

// NewTokenCleanup creates the cleanup loop.
func NewTokenCleanup(pool *pgxpool.Pool, log *logger.Logger, interval time.Duration) *TokenCleanup {
	if interval <= 0 {
		interval = time.Hour
	}
	return &TokenCleanup{
		repo:     authrepo.New(pool),
		log:      log,
		interval: interval,
	}
}

// Run blocks until the context is cancelled, pruning once per interval.
func (c *TokenCleanup) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := c.repo.DeleteExpired(ctx)
			if err != nil {
				c.log.Error("token cleanup failed", "error", err)
				continue
			}
			if deleted > 0 {
				c.log.Info("pruned expired auth tokens", "count", deleted)
			}
		}
	}
}
