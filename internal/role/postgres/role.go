package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/hospital-management/internal"
	roleDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/role"
	"github.com/frahmantamala/hospital-management/internal/role"
	"gorm.io/gorm"
)

type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

var _ role.RepositoryAPI = (*RoleRepository)(nil)

func (r *RoleRepository) List(ctx context.Context) ([]roleDatamodel.Role, error) {
	var roles []roleDatamodel.Role
	err := r.db.WithContext(ctx).Preload("Permissions").Order("id ASC").Find(&roles).Error
	return roles, err
}

func (r *RoleRepository) GetByID(ctx context.Context, id int64) (*roleDatamodel.Role, error) {
	var found roleDatamodel.Role
	err := r.db.WithContext(ctx).Preload("Permissions").Where("id = ?", id).First(&found).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &found, nil
}

func (r *RoleRepository) GetByName(ctx context.Context, name string) (*roleDatamodel.Role, error) {
	var found roleDatamodel.Role
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&found).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &found, nil
}

// Create inserts the role and its join rows. The permissions themselves are
// never written.
func (r *RoleRepository) Create(ctx context.Context, rl *roleDatamodel.Role) error {
	return translate(r.db.WithContext(ctx).Omit("Permissions.*").Create(rl).Error)
}

// translate reports a lost race on the unique role name as ErrRoleExists.
func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.ErrRoleExists.WithCause(err)
	}
	return err
}

func (r *RoleRepository) Update(ctx context.Context, rl *roleDatamodel.Role, replacePermissions bool) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&roleDatamodel.Role{}).Where("id = ?", rl.ID).Updates(map[string]interface{}{
			"name":          rl.Name,
			"profile_model": rl.ProfileModel,
		}).Error
		if err != nil {
			return err
		}

		if !replacePermissions {
			return nil
		}
		if err := tx.Where("role_id = ?", rl.ID).Delete(&roleDatamodel.RolePermission{}).Error; err != nil {
			return err
		}
		if len(rl.Permissions) == 0 {
			return nil
		}

		links := make([]roleDatamodel.RolePermission, 0, len(rl.Permissions))
		for _, p := range rl.Permissions {
			links = append(links, roleDatamodel.RolePermission{RoleID: rl.ID, PermissionID: p.ID})
		}
		return tx.Create(&links).Error
	}))
}

// Delete removes the role and its grants. users.role_id is left untouched.
func (r *RoleRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", id).Delete(&roleDatamodel.RolePermission{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&roleDatamodel.Role{}).Error
	})
}
