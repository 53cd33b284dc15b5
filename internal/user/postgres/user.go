package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/hospital-management/internal"
	profileDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/profile"
	roleDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/role"
	userDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/user"
	"github.com/frahmantamala/hospital-management/internal/profile"
	"github.com/frahmantamala/hospital-management/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

var _ user.RepositoryAPI = (*UserRepository)(nil)

func first[T any](query *gorm.DB) (*T, error) {
	var row T
	if err := query.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*userDatamodel.User, error) {
	return first[userDatamodel.User](r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error) {
	return first[userDatamodel.User](r.db.WithContext(ctx).Where("email = ?", email))
}

func (r *UserRepository) List(ctx context.Context, roleID *int64) ([]userDatamodel.User, error) {
	query := r.db.WithContext(ctx).Order("id ASC")
	if roleID != nil {
		query = query.Where("role_id = ?", *roleID)
	}

	users := []userDatamodel.User{}
	err := query.Find(&users).Error
	return users, err
}

func (r *UserRepository) UpdateColumns(ctx context.Context, id int64, columns map[string]interface{}) error {
	err := r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ?", id).
		Updates(columns).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.ErrEmailTaken.WithCause(err)
	}
	return err
}

func (r *UserRepository) SetRole(ctx context.Context, userID, roleID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ?", userID).
		Update("role_id", roleID)
	return res.RowsAffected > 0, res.Error
}

var profileTables = map[profile.Kind]interface{}{
	profile.KindDoctor:       &profileDatamodel.DoctorProfile{},
	profile.KindPatient:      &profileDatamodel.PatientProfile{},
	profile.KindNurse:        &profileDatamodel.NurseProfile{},
	profile.KindReceptionist: &profileDatamodel.ReceptionistProfile{},
}

func (r *UserRepository) Delete(ctx context.Context, id int64) (bool, error) {
	found := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := first[userDatamodel.User](tx.Where("id = ?", id))
		if err != nil || u == nil {
			return err
		}
		found = true

		if u.HasProfile() {
			if model, ok := profileTables[profile.Kind(*u.ProfileModel)]; ok {
				if err := tx.Where("id = ?", *u.ProfileID).Delete(model).Error; err != nil {
					return err
				}
			}
		}
		return tx.Delete(&userDatamodel.User{}, id).Error
	})
	return found, err
}

func (r *UserRepository) GetRoleByID(ctx context.Context, id int64) (*roleDatamodel.Role, error) {
	return first[roleDatamodel.Role](r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *UserRepository) GetRoleByName(ctx context.Context, name string) (*roleDatamodel.Role, error) {
	return first[roleDatamodel.Role](r.db.WithContext(ctx).Where("name = ?", name))
}

func (r *UserRepository) RoleNames(ctx context.Context) (map[int64]string, error) {
	var roles []roleDatamodel.Role
	if err := r.db.WithContext(ctx).Select("id", "name").Find(&roles).Error; err != nil {
		return nil, err
	}

	out := make(map[int64]string, len(roles))
	for _, role := range roles {
		out[role.ID] = role.Name
	}
	return out, nil
}
