// Package auth implements operator registration, login and token
// validation.
package auth

import (
	"context"
	"errors"

	"github.com/clubkasse/membership-tally/internal/lib/jwt"
	"github.com/clubkasse/membership-tally/internal/lib/password"
	"github.com/clubkasse/membership-tally/internal/models"
)

// OperatorRepository is the storage contract for operator accounts.
type OperatorRepository interface {
	// CreateOperator stores a new operator and returns its uid.
	CreateOperator(ctx context.Context, username, passwordHash, role string) (string, error)
	// OperatorByUsername returns the operator or an error when absent.
	OperatorByUsername(ctx context.Context, username string) (*models.Operator, error)
}

// Service handles operator registration, login and token validation.
type Service struct {
	operators OperatorRepository
	jwtMaker  jwt.Maker
}

func NewService(operators OperatorRepository, jwtMaker jwt.Maker) *Service {
	return &Service{
		operators: operators,
		jwtMaker:  jwtMaker,
	}
}

// Register creates a new operator with a hashed password.
func (s *Service) Register(ctx context.Context, username, rawPassword, role string) (string, error) {
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", err
	}
	return s.operators.CreateOperator(ctx, username, hashed, role)
}

// Login verifies the operator's password and issues a JWT. The error
// for an unknown username and for a wrong password is identical so the
// endpoint does not leak which accounts exist.
func (s *Service) Login(ctx context.Context, username, rawPassword string) (token, role string, err error) {
	operator, err := s.operators.OperatorByUsername(ctx, username)
	if err != nil {
		return "", "", errors.New("invalid credentials")
	}
	if err := password.CompareHash(operator.PasswordHash, rawPassword); err != nil {
		return "", "", errors.New("invalid credentials")
	}
	token, err = s.jwtMaker.GenerateToken(operator.Username, operator.Role)
	if err != nil {
		return "", "", err
	}
	return token, operator.Role, nil
}

// ValidateToken parses the JWT and returns the operator claims.
func (s *Service) ValidateToken(token string) (*jwt.OperatorClaims, error) {
	return s.jwtMaker.ParseToken(token)
}
