package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/hospital-management/internal/auth"
	roleDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/role"
	userDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repository) Create(ctx context.Context, u *userDatamodel.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *Repository) MarkVerified(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ?", id).
		Update("is_verified", true).Error
}

func (r *Repository) GetRoleByName(ctx context.Context, name string) (*roleDatamodel.Role, error) {
	var role roleDatamodel.Role
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

// LoadPrincipal returns nil, nil when the user does not exist. A role_id that
// no longer resolves leaves Role nil.
func (r *Repository) LoadPrincipal(ctx context.Context, id int64) (*auth.User, error) {
	u, err := r.GetByID(ctx, id)
	if err != nil || u == nil {
		return nil, err
	}

	principal := &auth.User{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Verified:     u.IsVerified,
		ProfileID:    u.ProfileID,
		ProfileModel: u.ProfileModel,
	}

	if u.RoleID == nil {
		return principal, nil
	}

	var role roleDatamodel.Role
	err = r.db.WithContext(ctx).Preload("Permissions").Where("id = ?", *u.RoleID).First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return principal, nil
		}
		return nil, err
	}

	names := make([]string, 0, len(role.Permissions))
	for _, p := range role.Permissions {
		names = append(names, p.Name)
	}
	principal.Role = &auth.Role{
		ID:           role.ID,
		Name:         role.Name,
		ProfileModel: role.ProfileModel,
		Permissions:  names,
	}

	return principal, nil
}
