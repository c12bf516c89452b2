package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/accounts-service/internal/auth"
	"github.com/spec-kit/accounts-service/internal/domain"
	apperrors "github.com/spec-kit/accounts-service/pkg/util"
)

// bind parses the request body into dst and validates it.
func bind(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	return apperrors.ValidateStruct(dst)
}

func principal(c *fiber.Ctx) (*domain.User, error) {
	user, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return user, nil
}
