package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/michat/michat-api/databases"
)

const jobTimeout = 30 * time.Second

// Scheduler handles periodic background maintenance
type Scheduler struct {
	cron *cron.Cron
	TDB  databases.TokenDatabase
}

// NewScheduler creates a new scheduler instance
func NewScheduler(tdb databases.TokenDatabase) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithLocation(time.UTC)),
		TDB:  tdb,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	if _, err := s.cron.AddFunc("@hourly", s.purgeExpiredTokens); err != nil {
		zap.S().With(err).Error("failed to register token purge job")
		return
	}
	s.cron.Start()
	zap.S().Info("scheduler started")
}

// Stop halts the scheduler, waiting for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("scheduler stopped")
}

// purgeExpiredTokens drops token rows past their expiry. Revocation checks
// treat a missing row as revoked, so expired tokens stay dead either way;
// this just keeps the collection from growing without bound.
func (s *Scheduler) purgeExpiredTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	removed, err := s.TDB.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		zap.S().With(err).Error("failed to purge expired tokens")
		return
	}
	if removed > 0 {
		zap.S().Infow("purged expired tokens", "count", removed)
	}
}
