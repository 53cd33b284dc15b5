package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/hospital-management/internal/appointment"
	appointmentDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/appointment"
	userDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type AppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

var _ appointment.RepositoryAPI = (*AppointmentRepository)(nil)

func (r *AppointmentRepository) Create(ctx context.Context, a *appointmentDatamodel.Appointment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id int64) (*appointmentDatamodel.Appointment, error) {
	var a appointmentDatamodel.Appointment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *AppointmentRepository) List(ctx context.Context, filter appointment.Filter) ([]appointmentDatamodel.Appointment, error) {
	query := r.db.WithContext(ctx).Model(&appointmentDatamodel.Appointment{})
	if filter.DoctorID != 0 {
		query = query.Where("doctor_id = ?", filter.DoctorID)
	}
	if filter.PatientID != 0 {
		query = query.Where("patient_id = ?", filter.PatientID)
	}

	rows := []appointmentDatamodel.Appointment{}
	err := query.Order("date DESC").Order("id DESC").Find(&rows).Error
	return rows, err
}

func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id int64, status string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&appointmentDatamodel.Appointment{}).
		Where("id = ?", id).
		Update("status", status)
	return res.RowsAffected > 0, res.Error
}

func (r *AppointmentRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&appointmentDatamodel.Appointment{})
	return res.RowsAffected > 0, res.Error
}

func (r *AppointmentRepository) UserRoleName(ctx context.Context, userID int64) (string, bool, error) {
	var row struct {
		ID       int64
		RoleName *string
	}
	err := r.db.WithContext(ctx).
		Table("users").
		Select("users.id, roles.name AS role_name").
		Joins("LEFT JOIN roles ON roles.id = users.role_id").
		Where("users.id = ?", userID).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	if row.RoleName == nil {
		return "", true, nil
	}
	return *row.RoleName, true, nil
}

func (r *AppointmentRepository) UsersByID(ctx context.Context, ids []int64) (map[int64]*userDatamodel.User, error) {
	out := make(map[int64]*userDatamodel.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var users []userDatamodel.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for i := range users {
		out[users[i].ID] = &users[i]
	}
	return out, nil
}

func (r *AppointmentRepository) DoctorSpecializations(ctx context.Context, doctorIDs []int64) (map[int64]string, error) {
	out := make(map[int64]string, len(doctorIDs))
	if len(doctorIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		UserID         int64
		Specialization string
	}
	err := r.db.WithContext(ctx).
		Table("users").
		Select("users.id AS user_id, doctor_profiles.specialization").
		Joins("JOIN doctor_profiles ON doctor_profiles.id = users.profile_id AND users.profile_model = ?", "Doctor").
		Where("users.id IN ?", doctorIDs).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.UserID] = row.Specialization
	}
	return out, nil
}
