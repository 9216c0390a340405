package models

import (
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

// StudioClaims are the JWT claims issued to a studio member. TenantSchema
// names the Postgres schema holding the studio's clients.
type StudioClaims struct {
	jwt.RegisteredClaims
	UserID       uint     `json:"user_id"`
	StudioID     uint     `json:"studio_id"`
	TenantSchema string   `json:"tenant_schema"`
	Email        string   `json:"email"`
	Role         string   `json:"role"`
	Permissions  []string `json:"permissions"`
}

// HasPermission checks if the claims include a specific permission
func (c *StudioClaims) HasPermission(permission string) bool {
	if slices.Contains(c.Permissions, permission) {
		return true
	}
	return slices.Contains(GetDefaultPermissions(c.Role), permission)
}

// IsAdmin reports whether the member administers shared period tables.
func (c *StudioClaims) IsAdmin() bool {
	return c.Role == RoleAdmin
}
