package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/clubkasse/membership-tally/internal/lib/jwt"
	"github.com/clubkasse/membership-tally/internal/lib/password"
	"github.com/clubkasse/membership-tally/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateOperator(ctx context.Context, username, passwordHash, role string) (string, error) {
	args := m.Called(ctx, username, passwordHash, role)
	return args.String(0), args.Error(1)
}

func (m *RepoMock) OperatorByUsername(ctx context.Context, username string) (*models.Operator, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Operator), args.Error(1)
}

func TestRegister(t *testing.T) {
	repo := &RepoMock{}
	repo.On("CreateOperator", mock.Anything, "kassenwart", mock.MatchedBy(func(hash string) bool {
		return password.CompareHash(hash, "secret") == nil
	}), "operator").Return("uid-1", nil)

	svc := NewService(repo, jwt.NewMaker("test-secret", time.Hour))
	uid, err := svc.Register(context.Background(), "kassenwart", "secret", "operator")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", uid)
	repo.AssertExpectations(t)
}

func TestLogin(t *testing.T) {
	hash, err := password.GetHash("secret")
	require.NoError(t, err)
	operator := &models.Operator{UID: "uid-1", Username: "kassenwart", PasswordHash: hash, Role: "operator"}

	t.Run("valid credentials yield a parsable token", func(t *testing.T) {
		repo := &RepoMock{}
		repo.On("OperatorByUsername", mock.Anything, "kassenwart").Return(operator, nil)

		svc := NewService(repo, jwt.NewMaker("test-secret", time.Hour))
		token, role, err := svc.Login(context.Background(), "kassenwart", "secret")
		require.NoError(t, err)
		assert.Equal(t, "operator", role)

		claims, err := svc.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "kassenwart", claims.Username)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := &RepoMock{}
		repo.On("OperatorByUsername", mock.Anything, "kassenwart").Return(operator, nil)

		svc := NewService(repo, jwt.NewMaker("test-secret", time.Hour))
		_, _, err := svc.Login(context.Background(), "kassenwart", "wrong")
		require.EqualError(t, err, "invalid credentials")
	})

	t.Run("unknown user yields the same error", func(t *testing.T) {
		repo := &RepoMock{}
		repo.On("OperatorByUsername", mock.Anything, "nobody").Return(nil, models.ErrOperatorNotFound)

		svc := NewService(repo, jwt.NewMaker("test-secret", time.Hour))
		_, _, err := svc.Login(context.Background(), "nobody", "secret")
		require.EqualError(t, err, "invalid credentials")
	})
}
