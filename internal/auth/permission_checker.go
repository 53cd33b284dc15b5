package auth

import (
	"fmt"
	"strings"

	"github.com/frahmantamala/hospital-management/internal"
)

// AuthorizeByRole allows the caller when their role is one of allowed. A user
// whose role reference no longer resolves is treated as having no role.
func AuthorizeByRole(u *User, allowed ...string) *internal.AppError {
	if u == nil {
		return internal.ErrMissingToken
	}
	if u.Role == nil || u.Role.Name == "" {
		return internal.NewForbiddenError("User has no role assigned", internal.ErrCodeNoRoleAssigned)
	}
	if u.HasRole(allowed...) {
		return nil
	}
	return internal.NewForbiddenError(
		fmt.Sprintf("Access denied. Required roles: %s. Your role: %s", strings.Join(allowed, ", "), u.Role.Name),
		internal.ErrCodeRoleNotPermitted,
	)
}

// AuthorizeByPermission allows the caller when their role grants any of required.
func AuthorizeByPermission(u *User, required ...string) *internal.AppError {
	if u == nil {
		return internal.ErrMissingToken
	}
	if u.Role == nil || len(u.Role.Permissions) == 0 {
		return internal.NewForbiddenError("User has no permissions assigned", internal.ErrCodeNoPermissionsAssigned)
	}
	if u.HasAnyPermission(required) {
		return nil
	}
	return internal.NewForbiddenError(
		fmt.Sprintf("Access denied. Required permissions: %s", strings.Join(required, ", ")),
		internal.ErrCodeInsufficientPermissions,
	)
}
