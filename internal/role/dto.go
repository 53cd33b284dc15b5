package role

import (
	"strings"

	"github.com/frahmantamala/hospital-management/internal"
	"github.com/frahmantamala/hospital-management/internal/core/common/validation"
	"github.com/frahmantamala/hospital-management/internal/permission"
	"github.com/frahmantamala/hospital-management/internal/profile"
)

type CreateRoleDTO struct {
	Name         string          `json:"name"`
	ProfileModel *string         `json:"profileModel"`
	Permissions  permission.Refs `json:"permissions"`
}

func (d *CreateRoleDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	if d.ProfileModel != nil {
		pm := strings.TrimSpace(*d.ProfileModel)
		d.ProfileModel = &pm
	}
}

func (d CreateRoleDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(50)
	v.Field("profileModel", d.ProfileModel).OneOf(profile.KindNames()...)
	return v.Validate()
}

// UpdateRoleDTO is a partial update. A non-nil Permissions replaces the
// role's whole permission set, an empty list clears it.
type UpdateRoleDTO struct {
	Name         *string          `json:"name"`
	ProfileModel *string          `json:"profileModel"`
	Permissions  *permission.Refs `json:"permissions"`
}

func (d *UpdateRoleDTO) Normalize() {
	if d.Name != nil {
		n := strings.TrimSpace(*d.Name)
		d.Name = &n
	}
	if d.ProfileModel != nil {
		pm := strings.TrimSpace(*d.ProfileModel)
		d.ProfileModel = &pm
	}
}

func (d UpdateRoleDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	if d.Name != nil {
		v.Field("name", d.Name).Required().MaxLength(50)
	}
	v.Field("profileModel", d.ProfileModel).OneOf(profile.KindNames()...)
	return v.Validate()
}

type RolesResponse struct {
	Roles []*Role `json:"roles"`
}

// DefaultProfileModel is the tag a new role gets when none is supplied.
func DefaultProfileModel(name string) string {
	if k, ok := profile.KindForRole(name); ok {
		return k.String()
	}
	return ""
}
