package main

import (
	"context"
	"log"
	"time"

	"finvoiceBack/internal/repositories"
	"finvoiceBack/internal/services"
)

const proposalSweepTimeout = 1 * time.Minute

// startProposalSweeper expires overdue active proposals on a fixed interval.
// The sweep is a single idempotent UPDATE, so overlapping runs are harmless.
func startProposalSweeper(ctx context.Context, svc *services.ProposalService, intervalMinutes int, infoLog, errorLog *log.Logger) {
	if svc == nil {
		return
	}
	if intervalMinutes <= 0 {
		intervalMinutes = 10
	}

	go func() {
		ticker := time.NewTicker(time.Duration(intervalMinutes) * time.Minute)
		defer ticker.Stop()

		runOnce := func() {
			runCtx, cancel := context.WithTimeout(ctx, proposalSweepTimeout)
			expired, err := svc.SweepExpired(runCtx)
			cancel()
			if err != nil {
				errorLog.Printf("proposal sweeper: failed to expire proposals: %v", err)
			} else if expired > 0 {
				infoLog.Printf("proposal sweeper: expired %d overdue proposals", expired)
			}
		}

		runOnce()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runOnce()
			}
		}
	}()
}

// startSessionCleaner drops expired refresh sessions once a day.
func startSessionCleaner(ctx context.Context, repo *repositories.UserRepository, errorLog *log.Logger) {
	if repo == nil {
		return
	}

	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		runOnce := func() {
			runCtx, cancel := context.WithTimeout(ctx, proposalSweepTimeout)
			if err := repo.DeleteExpiredSessions(runCtx, time.Now().UTC()); err != nil {
				errorLog.Printf("session cleaner: failed to delete expired sessions: %v", err)
			}
			cancel()
		}

		runOnce()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runOnce()
			}
		}
	}()
}
