package auth

import (
	"context"

	"github.com/frahmantamala/hospital-management/internal"
)

type ctxKey string

const ContextUserKey ctxKey = "user"

func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(ContextUserKey).(*User)
	return u, ok && u != nil
}

func ContextWithUser(ctx context.Context, u *User) context.Context {
	ctx = context.WithValue(ctx, ContextUserKey, u)
	return internal.ContextWithUserID(ctx, u.ID)
}

// AuthorizeSelfOrElevated allows a caller acting on their own record, or any
// caller holding the elevated role.
func AuthorizeSelfOrElevated(u *User, targetUserID int64, elevatedRole string) *internal.AppError {
	if u == nil {
		return internal.ErrMissingToken
	}
	if u.RoleName() == elevatedRole || u.ID == targetUserID {
		return nil
	}
	return internal.NewForbiddenError("Access denied. You can only access your own resources.", internal.ErrCodeNotOwner)
}
