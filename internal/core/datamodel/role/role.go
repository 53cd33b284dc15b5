package role

import (
	"time"

	permissionDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/permission"
)

type Role struct {
	ID           int64                            `gorm:"primaryKey"`
	Name         string                           `gorm:"column:name;uniqueIndex;not null"`
	ProfileModel string                           `gorm:"column:profile_model"`
	Permissions  []permissionDatamodel.Permission `gorm:"many2many:role_permissions;"`
	CreatedAt    time.Time                        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time                        `gorm:"column:updated_at;autoUpdateTime"`
}

func (Role) TableName() string {
	return "roles"
}

// RolePermission is the join row between roles and permissions.
type RolePermission struct {
	RoleID       int64 `gorm:"column:role_id;primaryKey"`
	PermissionID int64 `gorm:"column:permission_id;primaryKey"`
}

func (RolePermission) TableName() string {
	return "role_permissions"
}
