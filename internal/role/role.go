package role

import (
	"time"

	roleDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/role"
	"github.com/frahmantamala/hospital-management/internal/permission"
)

type Role struct {
	ID           int64                    `json:"id"`
	Name         string                   `json:"name"`
	ProfileModel string                   `json:"profileModel"`
	Permissions  []*permission.Permission `json:"permissions"`
	CreatedAt    time.Time                `json:"createdAt"`
	UpdatedAt    time.Time                `json:"updatedAt"`
}

func (r *Role) PermissionNames() []string {
	return permission.Names(r.Permissions)
}

func FromDataModel(r *roleDatamodel.Role) *Role {
	return &Role{
		ID:           r.ID,
		Name:         r.Name,
		ProfileModel: r.ProfileModel,
		Permissions:  permission.FromDataModels(r.Permissions),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func FromDataModels(rows []roleDatamodel.Role) []*Role {
	out := make([]*Role, 0, len(rows))
	for i := range rows {
		out = append(out, FromDataModel(&rows[i]))
	}
	return out
}
