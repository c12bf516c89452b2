package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/accounts-service/internal/auth"
	"github.com/spec-kit/accounts-service/internal/config"
	"github.com/spec-kit/accounts-service/internal/domain"
	"github.com/spec-kit/accounts-service/internal/events"
	"github.com/spec-kit/accounts-service/internal/repository"
	apperrors "github.com/spec-kit/accounts-service/pkg/util"
)

const invalidCredentials = "incorrect email or password"

// AuthService coordinates login, token refresh and logout flows.
type AuthService struct {
	users      repository.UserRepository
	hasher     *auth.PasswordHasher
	tokens     *auth.TokenManager
	denylist   auth.DenyList
	dispatcher events.Dispatcher
	logger     *zap.Logger
	accessTTL  time.Duration
	refreshTTL time.Duration

	dummyOnce sync.Once
	dummyHash string
}

// AuthDependencies encapsulates collaborators of the auth service.
// DenyList and Dispatcher are optional.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Hasher     *auth.PasswordHasher
	Tokens     *auth.TokenManager
	DenyList   auth.DenyList
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.SecurityConfig, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		hasher:     deps.Hasher,
		tokens:     deps.Tokens,
		denylist:   deps.DenyList,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		accessTTL:  cfg.AccessTokenTTL(),
		refreshTTL: cfg.RefreshTokenTTL(),
	}
}

// Login checks credentials and issues an access/refresh token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, *domain.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// keep response timing close to the known-email path
			s.hasher.Verify(password, s.dummyDigest())
			return nil, nil, apperrors.NewUnauthorized(invalidCredentials)
		}
		return nil, nil, storeUnavailable(err)
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, nil, apperrors.NewUnauthorized(invalidCredentials)
	}

	pair, err := s.issuePair(user.ID)
	if err != nil {
		return nil, nil, err
	}
	s.publish(ctx, events.Event{Type: events.EventUserLoggedIn, UserID: user.ID, ActorID: user.ID})
	return user, pair, nil
}

// Refresh exchanges a valid refresh token for a new pair. With a deny-list configured
// the presented refresh token is claimed before the new pair is issued, so of several
// concurrent exchanges of one token exactly one succeeds.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.User, *domain.TokenPair, error) {
	claims, err := s.tokens.Verify(refreshToken)
	if err != nil {
		s.logger.Debug("refresh token rejected", zap.Error(err))
		return nil, nil, apperrors.NewUnauthorized("invalid refresh token")
	}
	if claims.TokenType != domain.TokenTypeRefresh {
		return nil, nil, apperrors.NewUnauthorized("invalid refresh token")
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, apperrors.NewUnauthorized("user account no longer exists")
		}
		return nil, nil, storeUnavailable(err)
	}

	first, err := s.revoke(ctx, claims)
	if err != nil {
		return nil, nil, err
	}
	if !first {
		s.logger.Info("refresh token replayed", zap.String("user_id", user.ID), zap.String("jti", claims.ID))
		return nil, nil, apperrors.NewUnauthorized("invalid refresh token")
	}

	pair, err := s.issuePair(user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Logout revokes the presented access token. Without a deny-list tokens stay valid
// until they expire and this is a no-op.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil {
		return nil
	}
	_, err := s.revoke(ctx, claims)
	return err
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

// revoke reports false only when the token had already been revoked. Without a deny-list
// every call reports true.
func (s *AuthService) revoke(ctx context.Context, claims *auth.Claims) (bool, error) {
	if s.denylist == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return true, nil
	}
	first, err := s.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
	if err != nil {
		return false, apperrors.NewUnavailable("token store unavailable", err)
	}
	return first, nil
}

func (s *AuthService) issuePair(userID string) (*domain.TokenPair, error) {
	access, accessExp, err := s.tokens.GenerateToken(userID, domain.TokenTypeAccess, s.accessTTL)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	refresh, refreshExp, err := s.tokens.GenerateToken(userID, domain.TokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &domain.TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (s *AuthService) dummyDigest() string {
	s.dummyOnce.Do(func() {
		digest, err := s.hasher.Hash("not-a-real-password")
		if err != nil {
			s.logger.Warn("dummy digest generation failed", zap.Error(err))
			return
		}
		s.dummyHash = digest
	})
	return s.dummyHash
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	publish(ctx, s.dispatcher, s.logger, event)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func storeUnavailable(err error) error {
	return apperrors.NewUnavailable("account store unavailable", err)
}
