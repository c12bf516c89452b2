package auth

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/accounts-service/internal/domain"
	"github.com/spec-kit/accounts-service/internal/repository"
)

// AccountFinder is the slice of the account store the gate depends on.
// GetByID returns repository.ErrNotFound when the account does not exist.
type AccountFinder interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// Gate turns bearer tokens into authenticated principals.
type Gate struct {
	tokens   *TokenManager
	accounts AccountFinder
	denylist DenyList
	logger   *zap.Logger
}

// GateOption customizes a Gate.
type GateOption func(*Gate)

// WithDenyList makes the gate reject tokens whose id has been revoked.
func WithDenyList(d DenyList) GateOption {
	return func(g *Gate) { g.denylist = d }
}

// WithLogger sets the logger used for denial diagnostics.
func WithLogger(logger *zap.Logger) GateOption {
	return func(g *Gate) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGate constructs a gate.
func NewGate(tokens *TokenManager, accounts AccountFinder, opts ...GateOption) *Gate {
	g := &Gate{tokens: tokens, accounts: accounts, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Authenticate resolves a bearer token to the account it names.
func (g *Gate) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	user, _, err := g.AuthenticateWithClaims(ctx, token)
	return user, err
}

// AuthenticateWithClaims is Authenticate that also returns the verified claims.
// Token detail never leaves this method: every codec failure becomes ErrUnauthorized.
func (g *Gate) AuthenticateWithClaims(ctx context.Context, token string) (*domain.User, *Claims, error) {
	claims, err := g.tokens.Verify(token)
	if err != nil {
		g.logger.Debug("token rejected", zap.Error(err))
		return nil, nil, ErrUnauthorized
	}
	if claims.TokenType == domain.TokenTypeRefresh {
		g.logger.Debug("refresh token presented as access token", zap.String("sub", claims.Subject))
		return nil, nil, ErrUnauthorized
	}

	if g.denylist != nil && claims.ID != "" {
		revoked, err := g.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		if revoked {
			return nil, nil, ErrUnauthorized
		}
	}

	user, err := g.accounts.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrPrincipalNotFound
		}
		g.logger.Warn("account lookup failed", zap.String("sub", claims.Subject), zap.Error(err))
		return nil, nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if user == nil {
		return nil, nil, ErrPrincipalNotFound
	}
	return user, claims, nil
}

// RequireRole returns the principal when policy admits it, ErrForbidden otherwise.
func RequireRole(principal *domain.User, policy Policy) (*domain.User, error) {
	if !policy.Allows(principal) {
		return nil, ErrForbidden
	}
	return principal, nil
}
