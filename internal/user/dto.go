package user

import (
	"strings"

	"github.com/frahmantamala/hospital-management/internal"
	"github.com/frahmantamala/hospital-management/internal/auth"
	"github.com/frahmantamala/hospital-management/internal/core/common/validation"
)

// UpdateAccountDTO changes the caller's own account. Password is the current
// password and is always required; nil fields are left untouched.
type UpdateAccountDTO struct {
	Name        *string `json:"name"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
	Gender      *string `json:"gender"`
	Password    string  `json:"password"`
	NewPassword *string `json:"newPassword"`
}

func (d *UpdateAccountDTO) Normalize() {
	d.Name = trimmed(d.Name)
	d.Phone = trimmed(d.Phone)
	d.NewPassword = trimmed(d.NewPassword)
	if d.Email = trimmed(d.Email); d.Email != nil {
		e := auth.NormalizeEmail(*d.Email)
		d.Email = &e
	}
	if d.Gender = trimmed(d.Gender); d.Gender != nil {
		g := strings.ToLower(*d.Gender)
		d.Gender = &g
	}
}

func (d UpdateAccountDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("password", d.Password).Required()
	v.Field("name", d.Name).MaxLength(100)
	v.Field("email", d.Email).Email()
	v.Field("gender", d.Gender).OneOf(auth.Genders...)
	v.Field("newPassword", d.NewPassword).MinLength(6).MaxLength(72)
	return v.Validate()
}

// trimmed drops blank optional fields.
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

type UpdateRoleDTO struct {
	RoleID int64 `json:"roleId"`
}

func (d UpdateRoleDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("roleId", d.RoleID).Required()
	return v.Validate()
}

type AccountResponse struct {
	Message string   `json:"message,omitempty"`
	User    *Account `json:"user"`
}

type UsersResponse struct {
	Count int        `json:"count"`
	Users []*Account `json:"users"`
}
