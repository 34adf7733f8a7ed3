package service

import (
	"github.com/shoplite/auth-service/internal/domain/models"
)

// Can decides whether the user is authorized for the capability. It is pure
// and synchronous so protected-action entry points can call it inline with
// the role/permission snapshot they already hold; no caching, no I/O.
//
// Resolution order: nil user is always denied; a non-empty explicit
// permission set is authoritative; with no explicit set, administrators are
// default-allowed and everyone else denied.
func Can(user *models.User, permission models.Permission) bool {
	if user == nil {
		return false
	}
	if len(user.Permissions) > 0 {
		for _, p := range user.Permissions {
			if p == permission {
				return true
			}
		}
		return false
	}
	return user.Role == models.RoleAdmin
}

// DefaultPermissionsForRole returns the permission set seeded onto a new
// account at provisioning time. It is not a runtime fallback: existing
// accounts with an explicit set are evaluated against that set only.
func DefaultPermissionsForRole(role models.Role) []models.Permission {
	switch role {
	case models.RoleAdmin:
		return []models.Permission{
			models.PermissionReadProducts,
			models.PermissionWriteProducts,
			models.PermissionManageUsers,
			models.PermissionViewOrders,
			models.PermissionManageOrders,
			models.PermissionManageInventory,
		}
	case models.RoleUser:
		return []models.Permission{
			models.PermissionReadProducts,
			models.PermissionViewOrders,
		}
	default:
		return nil
	}
}
