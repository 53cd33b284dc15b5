package permission

import (
	"time"

	permissionDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/permission"
)

type Permission struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Group     string    `json:"group"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewPermission(name, group string) *Permission {
	return &Permission{
		Name:  name,
		Group: group,
	}
}

func ToDataModel(p *Permission) *permissionDatamodel.Permission {
	return &permissionDatamodel.Permission{
		ID:        p.ID,
		Name:      p.Name,
		Group:     p.Group,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func FromDataModel(p *permissionDatamodel.Permission) *Permission {
	return &Permission{
		ID:        p.ID,
		Name:      p.Name,
		Group:     p.Group,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func FromDataModels(rows []permissionDatamodel.Permission) []*Permission {
	out := make([]*Permission, 0, len(rows))
	for i := range rows {
		out = append(out, FromDataModel(&rows[i]))
	}
	return out
}

// Names flattens a permission list to its names, in order.
func Names(perms []*Permission) []string {
	names := make([]string, 0, len(perms))
	for _, p := range perms {
		names = append(names, p.Name)
	}
	return names
}
