package appointment

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/hospital-management/internal"
	"github.com/frahmantamala/hospital-management/internal/auth"
	appointmentDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/appointment"
	userDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/user"
)

// Filter narrows List to one side of the appointment. Zero fields are ignored.
type Filter struct {
	DoctorID  int64
	PatientID int64
}

type RepositoryAPI interface {
	Create(ctx context.Context, a *appointmentDatamodel.Appointment) error
	GetByID(ctx context.Context, id int64) (*appointmentDatamodel.Appointment, error)
	// List returns appointments newest first.
	List(ctx context.Context, filter Filter) ([]appointmentDatamodel.Appointment, error)
	UpdateStatus(ctx context.Context, id int64, status string) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)

	// UserRoleName returns "" with found false when no such user exists.
	UserRoleName(ctx context.Context, userID int64) (roleName string, found bool, err error)
	UsersByID(ctx context.Context, ids []int64) (map[int64]*userDatamodel.User, error)
	// DoctorSpecializations maps doctor user ids to the specialization of
	// their doctor profile. Doctors without a profile are absent.
	DoctorSpecializations(ctx context.Context, doctorIDs []int64) (map[int64]string, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Create books an appointment. A patient always books for themselves; any
// other actor names the patient explicitly.
func (s *Service) Create(ctx context.Context, actor *auth.User, dto CreateAppointmentDTO) (*Appointment, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	roleName, found, err := s.repo.UserRoleName(ctx, dto.DoctorID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load doctor", err)
	}
	if !found || roleName != auth.RoleDoctor {
		return nil, internal.ErrDoctorNotFound
	}

	var patientID int64
	if actor.RoleName() == auth.RolePatient {
		patientID = actor.ID
	} else if dto.PatientID != nil {
		patientID = *dto.PatientID
	}
	if patientID == 0 {
		return nil, internal.NewValidationFieldError("patientId", "Patient ID is required", internal.ErrCodeValidationFailed)
	}

	row := &appointmentDatamodel.Appointment{
		PatientID: patientID,
		DoctorID:  dto.DoctorID,
		Date:      dto.ParsedDate(),
		Status:    StatusPending,
		Type:      dto.Type,
		Notes:     dto.Notes,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create appointment", "error", err, "doctor_id", dto.DoctorID, "patient_id", patientID)
		return nil, internal.NewInternalError("failed to create appointment", err)
	}

	s.logger.Info("appointment created", "appointment_id", row.ID, "doctor_id", row.DoctorID, "patient_id", row.PatientID, "by", actor.ID)

	out, err := s.hydrate(ctx, []appointmentDatamodel.Appointment{*row})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (s *Service) ListAll(ctx context.Context) ([]*Appointment, error) {
	return s.list(ctx, Filter{})
}

func (s *Service) ListForDoctor(ctx context.Context, doctorID int64) ([]*Appointment, error) {
	return s.list(ctx, Filter{DoctorID: doctorID})
}

// ListForPatient also attaches the doctor's details to every entry.
func (s *Service) ListForPatient(ctx context.Context, patientID int64) ([]*Appointment, error) {
	out, err := s.list(ctx, Filter{PatientID: patientID})
	if err != nil || len(out) == 0 {
		return out, err
	}

	doctorIDs := make([]int64, 0, len(out))
	for _, a := range out {
		if a.Doctor != nil {
			doctorIDs = append(doctorIDs, a.Doctor.ID)
		}
	}
	specs, err := s.repo.DoctorSpecializations(ctx, doctorIDs)
	if err != nil {
		return nil, internal.NewInternalError("failed to load doctor details", err)
	}

	for _, a := range out {
		if a.Doctor == nil {
			continue
		}
		spec, ok := specs[a.Doctor.ID]
		if !ok || spec == "" {
			spec = defaultSpecialization
		}
		a.DoctorDetails = &DoctorDetails{Name: a.Doctor.Name, Email: a.Doctor.Email, Specialization: spec}
	}
	return out, nil
}

func (s *Service) list(ctx context.Context, filter Filter) ([]*Appointment, error) {
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list appointments", "error", err)
		return nil, internal.NewInternalError("failed to list appointments", err)
	}
	return s.hydrate(ctx, rows)
}

func (s *Service) UpdateStatus(ctx context.Context, id int64, status string) (*Appointment, error) {
	if !isStatus(status) {
		return nil, internal.ErrInvalidStatus
	}

	found, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, internal.NewInternalError("failed to update appointment", err)
	}
	if !found {
		return nil, internal.ErrAppointmentNotFound
	}

	s.logger.Info("appointment status updated", "appointment_id", id, "status", status)
	return s.get(ctx, id)
}

// Cancel marks the appointment cancelled. Patients may only cancel their own.
func (s *Service) Cancel(ctx context.Context, actor *auth.User, id int64) (*Appointment, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load appointment", err)
	}
	if row == nil {
		return nil, internal.ErrAppointmentNotFound
	}

	if actor.RoleName() == auth.RolePatient && row.PatientID != actor.ID {
		return nil, internal.NewForbiddenError("Unauthorized to cancel this appointment", internal.ErrCodeNotOwner)
	}

	if _, err := s.repo.UpdateStatus(ctx, id, StatusCancelled); err != nil {
		return nil, internal.NewInternalError("failed to cancel appointment", err)
	}

	s.logger.Info("appointment cancelled", "appointment_id", id, "by", actor.ID)
	return s.get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return internal.NewInternalError("failed to delete appointment", err)
	}
	if !found {
		return internal.ErrAppointmentNotFound
	}

	s.logger.Info("appointment deleted", "appointment_id", id)
	return nil
}

func (s *Service) get(ctx context.Context, id int64) (*Appointment, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load appointment", err)
	}
	if row == nil {
		return nil, internal.ErrAppointmentNotFound
	}

	out, err := s.hydrate(ctx, []appointmentDatamodel.Appointment{*row})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// hydrate loads both parties of every row in one query.
func (s *Service) hydrate(ctx context.Context, rows []appointmentDatamodel.Appointment) ([]*Appointment, error) {
	out := make([]*Appointment, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}

	seen := make(map[int64]struct{}, len(rows)*2)
	ids := make([]int64, 0, len(rows)*2)
	for _, r := range rows {
		for _, id := range []int64{r.PatientID, r.DoctorID} {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}

	users, err := s.repo.UsersByID(ctx, ids)
	if err != nil {
		return nil, internal.NewInternalError("failed to load appointment parties", err)
	}

	for i := range rows {
		out = append(out, FromDataModel(&rows[i], users))
	}
	return out, nil
}
