package postgres

import (
	"context"
	"errors"
	"strconv"

	permissionDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/permission"
	roleDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/role"
	"github.com/frahmantamala/hospital-management/internal/permission"
	"gorm.io/gorm"
)

type PermissionRepository struct {
	db *gorm.DB
}

func NewPermissionRepository(db *gorm.DB) *PermissionRepository {
	return &PermissionRepository{db: db}
}

var _ permission.RepositoryAPI = (*PermissionRepository)(nil)

func (r *PermissionRepository) List(ctx context.Context) ([]permissionDatamodel.Permission, error) {
	var perms []permissionDatamodel.Permission
	err := r.db.WithContext(ctx).Order("group_name ASC, name ASC").Find(&perms).Error
	return perms, err
}

func (r *PermissionRepository) GetByID(ctx context.Context, id int64) (*permissionDatamodel.Permission, error) {
	var p permissionDatamodel.Permission
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *PermissionRepository) GetByName(ctx context.Context, name string) (*permissionDatamodel.Permission, error) {
	var p permissionDatamodel.Permission
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *PermissionRepository) Create(ctx context.Context, p *permissionDatamodel.Permission) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PermissionRepository) Update(ctx context.Context, p *permissionDatamodel.Permission) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// Delete removes the permission and its role grants.
func (r *PermissionRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("permission_id = ?", id).Delete(&roleDatamodel.RolePermission{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&permissionDatamodel.Permission{}).Error
	})
}

// ResolveRefs returns the union of the id matches and the name matches, each
// permission once, ordered by id.
func (r *PermissionRepository) ResolveRefs(ctx context.Context, refs []string) ([]permissionDatamodel.Permission, error) {
	perms := []permissionDatamodel.Permission{}
	if len(refs) == 0 {
		return perms, nil
	}

	var ids []int64
	for _, ref := range refs {
		if id, err := strconv.ParseInt(ref, 10, 64); err == nil && id > 0 {
			ids = append(ids, id)
		}
	}

	query := r.db.WithContext(ctx).Where("name IN ?", refs)
	if len(ids) > 0 {
		query = query.Or("id IN ?", ids)
	}

	err := query.Order("id ASC").Find(&perms).Error
	return perms, err
}
