package fees

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/clubkasse/membership-tally/internal/lib/sl"
	"github.com/clubkasse/membership-tally/internal/metrics"
	"github.com/clubkasse/membership-tally/internal/models"
)

// Repository loads the aggregates the fee engine operates on.
type Repository interface {
	// FeeMember loads one member with participations, trainer flag and
	// fee override.
	FeeMember(ctx context.Context, memberID int64) (*FeeMember, error)
	// Relatives loads the fee aggregates of all members related to the
	// given one, excluding the member itself.
	Relatives(ctx context.Context, memberID int64) ([]*FeeMember, error)
	// FixedCost returns the configured amount for a fixed-cost key.
	FixedCost(ctx context.Context, key string) (decimal.Decimal, error)
	// OneTimeFeeTotal sums the member's outstanding one-time fees.
	OneTimeFeeTotal(ctx context.Context, memberID int64) (decimal.Decimal, error)
}

// Cache stores computed fee previews for a short time.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Service orchestrates fee computation: it loads the member family and
// the configured base fees, runs the pure engine, and caches preview
// results. Tally assembly uses the uncached paths so that a batch is
// always computed from fresh data.
type Service struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

// NewService creates a fee service. The cache may be nil, in which case
// previews are computed fresh on every call.
func NewService(repo Repository, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

const previewTTL = 10 * time.Minute

func previewCacheKey(memberID int64, at time.Time) string {
	return fmt.Sprintf("fee:%d:%s", memberID, at.Format("2006-01-02"))
}

// loadCosts fetches the three base-fee amounts. A missing key aborts
// the whole computation; there is nothing sensible to compute without
// the configured base fees.
func (s *Service) loadCosts(ctx context.Context) (FixedCosts, error) {
	const op = "fees.loadCosts"

	var costs FixedCosts
	var err error
	if costs.YouthBase, err = s.repo.FixedCost(ctx, models.BasicFeeYouthsKey); err != nil {
		return FixedCosts{}, fmt.Errorf("%s: %w", op, err)
	}
	if costs.AdultBase, err = s.repo.FixedCost(ctx, models.BasicFeeAdultsKey); err != nil {
		return FixedCosts{}, fmt.Errorf("%s: %w", op, err)
	}
	if costs.TrainerBase, err = s.repo.FixedCost(ctx, models.BasicFeeTrainersKey); err != nil {
		return FixedCosts{}, fmt.Errorf("%s: %w", op, err)
	}
	return costs, nil
}

func (s *Service) monthlyFee(ctx context.Context, memberID int64, at time.Time) (decimal.Decimal, error) {
	const op = "fees.monthlyFee"

	member, err := s.repo.FeeMember(ctx, memberID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", op, err)
	}
	relatives, err := s.repo.Relatives(ctx, memberID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", op, err)
	}
	costs, err := s.loadCosts(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", op, err)
	}

	metrics.FeeComputations.Inc()
	return MonthlyFee(member, relatives, costs, at), nil
}

// MonthlyFee computes the member's monthly due at the given date,
// serving repeated previews for the same member and date from the
// cache.
func (s *Service) MonthlyFee(ctx context.Context, memberID int64, at time.Time) (decimal.Decimal, error) {
	cacheKey := previewCacheKey(memberID, at)

	if s.cache != nil {
		var cached string
		found, err := s.cache.Get(cacheKey, &cached)
		if err != nil {
			s.log.Warn("fee cache lookup failed", slog.String("key", cacheKey), sl.Err(err))
		} else if found {
			fee, err := decimal.NewFromString(cached)
			if err == nil {
				return fee, nil
			}
			s.log.Warn("dropping unreadable cached fee", slog.String("key", cacheKey), sl.Err(err))
		}
	}

	fee, err := s.monthlyFee(ctx, memberID, at)
	if err != nil {
		return decimal.Zero, err
	}

	if s.cache != nil {
		if err := s.cache.Set(cacheKey, fee.String(), previewTTL); err != nil {
			s.log.Warn("failed to cache fee", slog.String("key", cacheKey), sl.Err(err))
		}
	}
	return fee, nil
}

// TotalFee computes the member's monthly fee plus all outstanding
// one-time fees. One-time fees are owed regardless of the monthly
// portion, also by exited or honorary members. This path never reads
// the cache.
func (s *Service) TotalFee(ctx context.Context, memberID int64, at time.Time) (decimal.Decimal, error) {
	const op = "fees.TotalFee"

	monthly, err := s.monthlyFee(ctx, memberID, at)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", op, err)
	}
	oneTime, err := s.repo.OneTimeFeeTotal(ctx, memberID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", op, err)
	}
	return monthly.Add(oneTime), nil
}

// InvalidatePreview drops a cached preview, e.g. after the member's
// sessions or override changed.
func (s *Service) InvalidatePreview(memberID int64, at time.Time) {
	if s.cache == nil {
		return
	}
	cacheKey := previewCacheKey(memberID, at)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate fee cache", slog.String("key", cacheKey), sl.Err(err))
	}
}
