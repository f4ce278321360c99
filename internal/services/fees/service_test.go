package fees

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/clubkasse/membership-tally/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) FeeMember(ctx context.Context, memberID int64) (*FeeMember, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*FeeMember), args.Error(1)
}

func (m *RepoMock) Relatives(ctx context.Context, memberID int64) ([]*FeeMember, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*FeeMember), args.Error(1)
}

func (m *RepoMock) FixedCost(ctx context.Context, key string) (decimal.Decimal, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *RepoMock) OneTimeFeeTotal(ctx context.Context, memberID int64) (decimal.Decimal, error) {
	args := m.Called(ctx, memberID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	if args.Bool(0) {
		*(result.(*string)) = args.String(2)
	}
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	return m.Called(key, value, expiration).Error(0)
}

func (m *CacheMock) Invalidate(key string) error {
	return m.Called(key).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func expectCosts(repo *RepoMock) {
	repo.On("FixedCost", mock.Anything, models.BasicFeeYouthsKey).Return(decimal.NewFromInt(4), nil)
	repo.On("FixedCost", mock.Anything, models.BasicFeeAdultsKey).Return(decimal.NewFromInt(5), nil)
	repo.On("FixedCost", mock.Anything, models.BasicFeeTrainersKey).Return(decimal.NewFromInt(3), nil)
}

func TestService_MonthlyFee(t *testing.T) {
	at := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)

	t.Run("computes and caches a preview", func(t *testing.T) {
		repo := &RepoMock{}
		cache := &CacheMock{}
		expectCosts(repo)
		repo.On("FeeMember", mock.Anything, int64(1)).Return(adultMember(1), nil)
		repo.On("Relatives", mock.Anything, int64(1)).Return([]*FeeMember{}, nil)
		cache.On("Get", "fee:1:2026-06-01", mock.Anything).Return(false, nil, "")
		cache.On("Set", "fee:1:2026-06-01", "5", previewTTL).Return(nil)

		svc := NewService(repo, cache, newNoopLogger())
		fee, err := svc.MonthlyFee(context.Background(), 1, at)
		require.NoError(t, err)
		assert.True(t, fee.Equal(decimal.NewFromInt(5)))
		cache.AssertExpectations(t)
	})

	t.Run("serves a cached preview without touching the repository", func(t *testing.T) {
		repo := &RepoMock{}
		cache := &CacheMock{}
		cache.On("Get", "fee:1:2026-06-01", mock.Anything).Return(true, nil, "17.5")

		svc := NewService(repo, cache, newNoopLogger())
		fee, err := svc.MonthlyFee(context.Background(), 1, at)
		require.NoError(t, err)
		assert.True(t, fee.Equal(decimal.RequireFromString("17.5")))
		repo.AssertNotCalled(t, "FeeMember", mock.Anything, mock.Anything)
	})

	t.Run("missing fixed cost aborts the computation", func(t *testing.T) {
		repo := &RepoMock{}
		repo.On("FeeMember", mock.Anything, int64(1)).Return(adultMember(1), nil)
		repo.On("Relatives", mock.Anything, int64(1)).Return([]*FeeMember{}, nil)
		repo.On("FixedCost", mock.Anything, models.BasicFeeYouthsKey).
			Return(decimal.Zero, fmt.Errorf("fixed cost %q: %w", models.BasicFeeYouthsKey, models.ErrFixedCostNotFound))

		svc := NewService(repo, nil, newNoopLogger())
		_, err := svc.MonthlyFee(context.Background(), 1, at)
		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrFixedCostNotFound)
	})
}

func TestService_TotalFee(t *testing.T) {
	at := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)

	t.Run("adds outstanding one-time fees", func(t *testing.T) {
		repo := &RepoMock{}
		expectCosts(repo)
		repo.On("FeeMember", mock.Anything, int64(1)).Return(adultMember(1), nil)
		repo.On("Relatives", mock.Anything, int64(1)).Return([]*FeeMember{}, nil)
		repo.On("OneTimeFeeTotal", mock.Anything, int64(1)).Return(decimal.RequireFromString("30"), nil)

		svc := NewService(repo, nil, newNoopLogger())
		fee, err := svc.TotalFee(context.Background(), 1, at)
		require.NoError(t, err)
		assert.True(t, fee.Equal(decimal.NewFromInt(35)))
	})

	t.Run("exited member still owes one-time fees", func(t *testing.T) {
		exited := adultMember(1)
		exit := at.AddDate(0, -1, 0)
		exited.ExitDate = &exit

		repo := &RepoMock{}
		expectCosts(repo)
		repo.On("FeeMember", mock.Anything, int64(1)).Return(exited, nil)
		repo.On("Relatives", mock.Anything, int64(1)).Return([]*FeeMember{}, nil)
		repo.On("OneTimeFeeTotal", mock.Anything, int64(1)).Return(decimal.RequireFromString("12.50"), nil)

		svc := NewService(repo, nil, newNoopLogger())
		fee, err := svc.TotalFee(context.Background(), 1, at)
		require.NoError(t, err)
		assert.True(t, fee.Equal(decimal.RequireFromString("12.50")))
	})
}
