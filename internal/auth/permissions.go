package auth

import "errors"

// Роли платформы
const (
	RoleTenant   = "tenant"
	RoleLandlord = "landlord"
	RoleRegie    = "regie"
)

// Permissions список разрешений
var Permissions = map[string][]string{
	RoleTenant: {
		"documents:write:self",
		"candidates:apply",
		"visits:book",
		"payments:checkout",
		"ai:use",
	},
	RoleLandlord: {
		"properties:write",
		"candidates:decide",
		"tasks:write",
		"visits:write",
		"ai:use",
	},
	RoleRegie: {
		"properties:write",
		"candidates:decide",
		"tasks:write",
		"visits:write",
		"ai:use",
	},
}

// HasPermission проверяет есть ли у роли указанное разрешение
func HasPermission(role, permission string) bool {
	for _, p := range Permissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}

// CanPerformAction проверяет может ли пользователь выполнить действие
func CanPerformAction(claims *Claims, permission string) bool {
	return claims != nil && HasPermission(claims.Role, permission)
}

// ValidateRole проверяет валидность роли
func ValidateRole(role string) error {
	switch role {
	case RoleTenant, RoleLandlord, RoleRegie:
		return nil
	default:
		return errors.New("invalid role")
	}
}
