package user

import (
	"github.com/frahmantamala/hospital-management/internal/auth"
	userDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/user"
)

type RoleRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Account is a user as served to clients, never with the password hash.
type Account struct {
	auth.AccountSummary
	Role *RoleRef `json:"role"`
}

// ToAccount resolves the role through roleNames, keyed by role id. A
// dangling role id yields a nil role.
func ToAccount(u *userDatamodel.User, roleNames map[int64]string) *Account {
	a := &Account{AccountSummary: auth.ToAccountSummary(u)}
	if u.RoleID != nil {
		if name, ok := roleNames[*u.RoleID]; ok {
			a.Role = &RoleRef{ID: *u.RoleID, Name: name}
		}
	}
	return a
}
