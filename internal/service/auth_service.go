package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"task-tracker/internal/auth"
	"task-tracker/internal/domain"
	"task-tracker/internal/repository"
)

// AuthService describes account registration and login.
type AuthService interface {
	Register(ctx context.Context, username, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, error)
}

// TokenIssuer is the part of auth.TokenIssuer the auth service needs.
type TokenIssuer interface {
	Issue(claim auth.Claim) (string, error)
}

type authService struct {
	users  repository.UserRepository
	hasher auth.PasswordHasher
	tokens TokenIssuer
	logger *logrus.Logger
}

func NewAuthService(users repository.UserRepository, hasher auth.PasswordHasher, tokens TokenIssuer, logger *logrus.Logger) AuthService {
	if logger == nil {
		logger = logrus.New()
	}
	return &authService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
	}
}

func (s *authService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || domain.IsBlank(password) {
		return nil, domain.Invalid("username and password are required")
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, domain.ErrDuplicateUser
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, domain.Invalid("password is too long")
		}
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: hash,
	}
	if _, err := s.users.Create(ctx, user); err != nil {
		// lost a race with a concurrent registration of the same name
		if errors.Is(err, domain.ErrUserExists) {
			return nil, domain.ErrDuplicateUser
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("user registered")
	return sanitizeUser(user), nil
}

func (s *authService) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || domain.IsBlank(password) {
		return "", domain.Invalid("username and password are required")
	}

	logger := s.logger.WithField("username", username)

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logger.Info("login rejected: unknown user")
			return "", domain.ErrUserNotFound
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		logger.WithField("user_id", user.ID).Info("login rejected: password mismatch")
		return "", domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(auth.Claim{UserID: user.ID, Username: user.Username})
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:        user.ID,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
