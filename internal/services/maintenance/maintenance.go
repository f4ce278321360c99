// Package maintenance periodically removes stale records: long-exited
// members, participations that ended in the past and archived one-time
// fees older than the retention window.
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/clubkasse/membership-tally/internal/lib/sl"
)

// archivedFeeRetention is how long archived one-time fees are kept
// after collection before the sweep removes them.
const archivedFeeRetention = 90 * 24 * time.Hour

type Repository interface {
	// DeleteEndedParticipations removes participations whose until
	// date lies before the given time.
	DeleteEndedParticipations(ctx context.Context, before time.Time) (int64, error)
	// DeleteExitedMembers removes members whose exit date lies before
	// the given time. Their participations, relations and fee records
	// go with them.
	DeleteExitedMembers(ctx context.Context, before time.Time) (int64, error)
	// DeleteOldArchivedFees removes archived one-time fees collected
	// before the given time.
	DeleteOldArchivedFees(ctx context.Context, before time.Time) (int64, error)
}

type Service struct {
	repo Repository
	log  *slog.Logger
	now  func() time.Time
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

// Run sweeps immediately and then once per interval until the context
// is cancelled.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	s.Sweep(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one purge pass. Failures of one step are logged and do not
// stop the remaining steps.
func (s *Service) Sweep(ctx context.Context) {
	now := s.now().UTC()

	removed, err := s.repo.DeleteEndedParticipations(ctx, now)
	if err != nil {
		s.log.Error("failed to purge ended participations", sl.Err(err))
	} else if removed > 0 {
		s.log.Info("purged ended participations", slog.Int64("count", removed))
	}

	removed, err = s.repo.DeleteExitedMembers(ctx, now)
	if err != nil {
		s.log.Error("failed to purge exited members", sl.Err(err))
	} else if removed > 0 {
		s.log.Info("purged exited members", slog.Int64("count", removed))
	}

	cutoff := now.Add(-archivedFeeRetention)
	removed, err = s.repo.DeleteOldArchivedFees(ctx, cutoff)
	if err != nil {
		s.log.Error("failed to purge archived fees", sl.Err(err))
	} else if removed > 0 {
		s.log.Info("purged archived one-time fees", slog.Int64("count", removed))
	}
}
