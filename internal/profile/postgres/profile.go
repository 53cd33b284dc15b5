package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/frahmantamala/hospital-management/internal"
	profileDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/profile"
	userDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/user"
	"github.com/frahmantamala/hospital-management/internal/profile"
	"gorm.io/gorm"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

var _ profile.RepositoryAPI = (*ProfileRepository)(nil)

func (r *ProfileRepository) GetUser(ctx context.Context, id int64) (*userDatamodel.User, error) {
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

func (r *ProfileRepository) FindOwner(ctx context.Context, profileID int64, kind profile.Kind) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).
		Where("profile_id = ? AND profile_model = ?", profileID, kind.String()).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func findByID[T any](ctx context.Context, db *gorm.DB, id int64) (*T, error) {
	var row T
	err := db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func listAll[T any](ctx context.Context, db *gorm.DB) ([]T, error) {
	rows := []T{}
	err := db.WithContext(ctx).Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *ProfileRepository) FindDoctor(ctx context.Context, id int64) (*profileDatamodel.DoctorProfile, error) {
	return findByID[profileDatamodel.DoctorProfile](ctx, r.db, id)
}

func (r *ProfileRepository) FindPatient(ctx context.Context, id int64) (*profileDatamodel.PatientProfile, error) {
	return findByID[profileDatamodel.PatientProfile](ctx, r.db, id)
}

func (r *ProfileRepository) FindNurse(ctx context.Context, id int64) (*profileDatamodel.NurseProfile, error) {
	return findByID[profileDatamodel.NurseProfile](ctx, r.db, id)
}

func (r *ProfileRepository) FindReceptionist(ctx context.Context, id int64) (*profileDatamodel.ReceptionistProfile, error) {
	return findByID[profileDatamodel.ReceptionistProfile](ctx, r.db, id)
}

func (r *ProfileRepository) ListDoctors(ctx context.Context) ([]profileDatamodel.DoctorProfile, error) {
	return listAll[profileDatamodel.DoctorProfile](ctx, r.db)
}

func (r *ProfileRepository) ListPatients(ctx context.Context) ([]profileDatamodel.PatientProfile, error) {
	return listAll[profileDatamodel.PatientProfile](ctx, r.db)
}

func (r *ProfileRepository) ListNurses(ctx context.Context) ([]profileDatamodel.NurseProfile, error) {
	return listAll[profileDatamodel.NurseProfile](ctx, r.db)
}

func (r *ProfileRepository) ListReceptionists(ctx context.Context) ([]profileDatamodel.ReceptionistProfile, error) {
	return listAll[profileDatamodel.ReceptionistProfile](ctx, r.db)
}

func (r *ProfileRepository) LicenseInUse(ctx context.Context, license string, excludeID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&profileDatamodel.DoctorProfile{}).
		Where("license_number = ? AND id <> ?", license, excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *ProfileRepository) CreateAndLink(ctx context.Context, userID int64, kind profile.Kind, row profileDatamodel.Row) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			return err
		}

		res := tx.Model(&userDatamodel.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
			"profile_id":    row.GetID(),
			"profile_model": kind.String(),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("link profile: user %d not found", userID)
		}
		return nil
	}))
}

func (r *ProfileRepository) Save(ctx context.Context, row profileDatamodel.Row) error {
	return translate(r.db.WithContext(ctx).Save(row).Error)
}

// translate maps a unique violation to ErrLicenseTaken; the license number is
// the only unique column on the profile tables.
func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.ErrLicenseTaken.WithCause(err)
	}
	return err
}

func modelFor(kind profile.Kind) (profileDatamodel.Row, error) {
	switch kind {
	case profile.KindDoctor:
		return &profileDatamodel.DoctorProfile{}, nil
	case profile.KindPatient:
		return &profileDatamodel.PatientProfile{}, nil
	case profile.KindNurse:
		return &profileDatamodel.NurseProfile{}, nil
	case profile.KindReceptionist:
		return &profileDatamodel.ReceptionistProfile{}, nil
	}
	return nil, fmt.Errorf("unknown profile kind %q", kind)
}

func (r *ProfileRepository) DeleteAndUnlink(ctx context.Context, kind profile.Kind, id int64) (bool, error) {
	model, err := modelFor(kind)
	if err != nil {
		return false, err
	}

	found := false
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(model)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		found = true

		return tx.Model(&userDatamodel.User{}).
			Where("profile_id = ? AND profile_model = ?", id, kind.String()).
			Updates(map[string]interface{}{
				"profile_id":    nil,
				"profile_model": nil,
			}).Error
	})
	return found, err
}
