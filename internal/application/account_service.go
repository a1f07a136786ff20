package application

import (
	"context"
	"fmt"
	"time"

	"archie-core-auth-gateway/internal/domain"
	"archie-core-auth-gateway/internal/ports"

	"github.com/rs/zerolog"
)

// AccountService resolves the environment a request key belongs to
type AccountService struct {
	environments ports.EnvironmentRepository
	logger       zerolog.Logger
	stageTimeout time.Duration
}

// NewAccountService creates a new account service
func NewAccountService(
	environments ports.EnvironmentRepository,
	logger zerolog.Logger,
	stageTimeout time.Duration,
) *AccountService {
	if stageTimeout <= 0 {
		stageTimeout = defaultStageTimeout
	}
	return &AccountService{
		environments: environments,
		logger:       logger,
		stageTimeout: stageTimeout,
	}
}

// AuthenticateSecretKey returns the environment owning a secret key.
// Unknown keys fail with unknown_account.
func (s *AccountService) AuthenticateSecretKey(ctx context.Context, secretKey string) (*domain.Environment, error) {
	if secretKey == "" {
		return nil, domain.NewAuthError(domain.CodeUnknownAccount, nil)
	}
	lookupCtx, cancel := context.WithTimeout(ctx, s.stageTimeout)
	defer cancel()
	env, err := s.environments.GetBySecretKey(lookupCtx, secretKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get environment by secret key: %w", err)
	}
	if env == nil {
		s.logger.Debug().Msg("Rejected unknown secret key")
		return nil, domain.NewAuthError(domain.CodeUnknownAccount, nil)
	}
	return env, nil
}

// AuthenticatePublicKey returns the environment owning a public key
func (s *AccountService) AuthenticatePublicKey(ctx context.Context, publicKey string) (*domain.Environment, error) {
	if publicKey == "" {
		return nil, domain.NewAuthError(domain.CodeUnknownAccount, nil)
	}
	lookupCtx, cancel := context.WithTimeout(ctx, s.stageTimeout)
	defer cancel()
	env, err := s.environments.GetByPublicKey(lookupCtx, publicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get environment by public key: %w", err)
	}
	if env == nil {
		s.logger.Debug().Str("publicKey", publicKey).Msg("Rejected unknown public key")
		return nil, domain.NewAuthError(domain.CodeUnknownAccount, nil)
	}
	return env, nil
}
