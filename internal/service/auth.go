package service

import (
	"context"
	"strings"

	"orggov-backend/internal/domain"
	"orggov-backend/internal/logger"
	"orggov-backend/internal/repository"
	"orggov-backend/internal/security"
)

var ErrInvalidCredentials = domain.UnauthorizedError("invalid username or password")

type authService struct {
	store        repository.Store
	tokenManager security.TokenManager
}

func NewAuthService(store repository.Store, tokenManager security.TokenManager) AuthService {
	return &authService{
		store:        store,
		tokenManager: tokenManager,
	}
}

func (s *authService) Login(ctx context.Context, username, password string) (string, *domain.Account, error) {
	account, err := s.store.Repos().Accounts.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !security.CheckPassword(account.PasswordHash, password) {
		logger.Warn("Login failed", "username", account.Username)
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokenManager.GenerateAccessToken(account)
	if err != nil {
		return "", nil, err
	}
	logger.Info("Login succeeded", "accountID", account.ID, "role", account.Role)
	return token, account, nil
}

func (s *authService) GetAccount(ctx context.Context, id int32) (*domain.Account, error) {
	return s.store.Repos().Accounts.GetByID(ctx, id)
}
