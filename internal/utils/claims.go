package utils

import (
	"errors"

	"estudio/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetStudioClaims extracts the studio claims stored by the auth middleware.
// It returns an error if the claims are missing or of an invalid type.
func GetStudioClaims(c *fiber.Ctx) (*models.StudioClaims, error) {
	v := c.Locals("claims")
	if v == nil {
		return nil, errors.New("claims not found in context")
	}

	claims, ok := v.(*models.StudioClaims)
	if !ok {
		return nil, errors.New("invalid claims type")
	}
	return claims, nil
}
