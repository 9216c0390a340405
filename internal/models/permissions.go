package models

// Roles
const (
	RoleAdmin      = "admin"
	RoleAccountant = "accountant"
	RoleViewer     = "viewer"
)

// Permission constants
const (
	// Recategorization permissions
	PermissionRecategorizationRead = "recategorization:read"
	PermissionRecategorizationRun  = "recategorization:run"

	// Period table permissions
	PermissionPeriodRead  = "period:read"
	PermissionPeriodWrite = "period:write"

	// Admin permissions
	PermissionReadAdmin  = "admin:read"
	PermissionWriteAdmin = "admin:write"
)

// GetDefaultPermissions returns default permissions based on role
func GetDefaultPermissions(role string) []string {
	switch role {
	case RoleAdmin:
		return []string{
			PermissionRecategorizationRead,
			PermissionRecategorizationRun,
			PermissionPeriodRead,
			PermissionPeriodWrite,
			PermissionReadAdmin,
			PermissionWriteAdmin,
		}
	case RoleAccountant:
		return []string{
			PermissionRecategorizationRead,
			PermissionRecategorizationRun,
			PermissionPeriodRead,
		}
	case RoleViewer:
		return []string{
			PermissionRecategorizationRead,
			PermissionPeriodRead,
		}
	default:
		return []string{}
	}
}
