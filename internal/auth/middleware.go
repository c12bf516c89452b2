package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/accounts-service/internal/domain"
	apperrors "github.com/spec-kit/accounts-service/pkg/util"
)

const (
	principalKey = "auth_principal"
	claimsKey    = "auth_claims"
)

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	gate   *Gate
	logger *zap.Logger
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(gate *Gate, logger *zap.Logger) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{gate: gate, logger: logger}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	token, err := BearerToken(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return err
	}

	principal, claims, err := m.gate.AuthenticateWithClaims(c.UserContext(), token)
	if err != nil {
		m.logger.Info("authentication denied",
			zap.String("path", c.Path()),
			zap.String("reason", err.Error()))
		return ToHTTPError(err)
	}

	c.Locals(principalKey, principal)
	c.Locals(claimsKey, claims)
	return c.Next()
}

// RequirePolicy ensures the authenticated principal is admitted by policy.
func RequirePolicy(policy Policy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if _, err := RequireRole(principal, policy); err != nil {
			return ToHTTPError(err)
		}
		return c.Next()
	}
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", apperrors.NewUnauthorized("missing authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", apperrors.NewUnauthorized("invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}

// ToHTTPError maps gate errors onto 401/403/503 responses.
func ToHTTPError(err error) error {
	switch {
	case errors.Is(err, ErrUnavailable):
		return apperrors.NewUnavailable("account store unavailable", err)
	case errors.Is(err, ErrForbidden):
		return apperrors.NewForbidden("insufficient privileges")
	case errors.Is(err, ErrPrincipalNotFound):
		return apperrors.NewUnauthorized("user account no longer exists")
	case errors.Is(err, ErrUnauthorized):
		return apperrors.NewUnauthorized("could not validate credentials")
	default:
		return apperrors.NewInternalError(err)
	}
}

// PrincipalFromContext retrieves the authenticated account.
func PrincipalFromContext(c *fiber.Ctx) (*domain.User, bool) {
	principal, ok := c.Locals(principalKey).(*domain.User)
	return principal, ok && principal != nil
}

// ClaimsFromContext retrieves the verified claims of the current request's token.
func ClaimsFromContext(c *fiber.Ctx) (*Claims, bool) {
	claims, ok := c.Locals(claimsKey).(*Claims)
	return claims, ok && claims != nil
}
