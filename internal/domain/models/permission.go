package models

// Permission is one capability token. Accounts carry an explicit set; the set
// is seeded from the role defaults at provisioning time but may be adjusted
// per account afterwards.
type Permission string

const (
	PermissionReadProducts    Permission = "READ_PRODUCTS"
	PermissionWriteProducts   Permission = "WRITE_PRODUCTS"
	PermissionManageUsers     Permission = "MANAGE_USERS"
	PermissionViewOrders      Permission = "VIEW_ORDERS"
	PermissionManageOrders    Permission = "MANAGE_ORDERS"
	PermissionManageInventory Permission = "MANAGE_INVENTORY"
)

// ParsePermission validates a wire-level permission string.
func ParsePermission(s string) (Permission, bool) {
	switch Permission(s) {
	case PermissionReadProducts, PermissionWriteProducts, PermissionManageUsers,
		PermissionViewOrders, PermissionManageOrders, PermissionManageInventory:
		return Permission(s), true
	}
	return "", false
}
