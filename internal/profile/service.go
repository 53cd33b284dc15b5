package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/hospital-management/internal"
	"github.com/frahmantamala/hospital-management/internal/auth"
	profileDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/profile"
	userDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/user"
	"gorm.io/datatypes"
)

type RepositoryAPI interface {
	GetUser(ctx context.Context, id int64) (*userDatamodel.User, error)
	// FindOwner looks the user up by its (profile_id, profile_model) pair.
	FindOwner(ctx context.Context, profileID int64, kind Kind) (*userDatamodel.User, error)

	FindDoctor(ctx context.Context, id int64) (*profileDatamodel.DoctorProfile, error)
	FindPatient(ctx context.Context, id int64) (*profileDatamodel.PatientProfile, error)
	FindNurse(ctx context.Context, id int64) (*profileDatamodel.NurseProfile, error)
	FindReceptionist(ctx context.Context, id int64) (*profileDatamodel.ReceptionistProfile, error)

	ListDoctors(ctx context.Context) ([]profileDatamodel.DoctorProfile, error)
	ListPatients(ctx context.Context) ([]profileDatamodel.PatientProfile, error)
	ListNurses(ctx context.Context) ([]profileDatamodel.NurseProfile, error)
	ListReceptionists(ctx context.Context) ([]profileDatamodel.ReceptionistProfile, error)

	LicenseInUse(ctx context.Context, license string, excludeID int64) (bool, error)

	// CreateAndLink inserts row and sets the user's profile pair in one transaction.
	CreateAndLink(ctx context.Context, userID int64, kind Kind, row profileDatamodel.Row) error
	Save(ctx context.Context, row profileDatamodel.Row) error
	// DeleteAndUnlink removes the record and clears its owner's pair in one
	// transaction. It reports false when no record had that id.
	DeleteAndUnlink(ctx context.Context, kind Kind, id int64) (bool, error)
}

type fetchFunc func(ctx context.Context, id int64) (*Record, error)

type listFunc func(ctx context.Context) ([]*Record, error)

// Binder manages the single profile record a user points at through its
// (profile_id, profile_model) pair.
type Binder struct {
	repo   RepositoryAPI
	fetch  map[Kind]fetchFunc
	list   map[Kind]listFunc
	logger *slog.Logger
}

func NewBinder(repo RepositoryAPI, logger *slog.Logger) *Binder {
	b := &Binder{
		repo:   repo,
		logger: logger,
	}

	b.fetch = map[Kind]fetchFunc{
		KindDoctor: func(ctx context.Context, id int64) (*Record, error) {
			row, err := repo.FindDoctor(ctx, id)
			if err != nil || row == nil {
				return nil, err
			}
			return DoctorRecord(row), nil
		},
		KindPatient: func(ctx context.Context, id int64) (*Record, error) {
			row, err := repo.FindPatient(ctx, id)
			if err != nil || row == nil {
				return nil, err
			}
			return PatientRecord(row), nil
		},
		KindNurse: func(ctx context.Context, id int64) (*Record, error) {
			row, err := repo.FindNurse(ctx, id)
			if err != nil || row == nil {
				return nil, err
			}
			return NurseRecord(row), nil
		},
		KindReceptionist: func(ctx context.Context, id int64) (*Record, error) {
			row, err := repo.FindReceptionist(ctx, id)
			if err != nil || row == nil {
				return nil, err
			}
			return ReceptionistRecord(row), nil
		},
	}

	b.list = map[Kind]listFunc{
		KindDoctor: func(ctx context.Context) ([]*Record, error) {
			rows, err := repo.ListDoctors(ctx)
			if err != nil {
				return nil, err
			}
			out := make([]*Record, 0, len(rows))
			for i := range rows {
				out = append(out, DoctorRecord(&rows[i]))
			}
			return out, nil
		},
		KindPatient: func(ctx context.Context) ([]*Record, error) {
			rows, err := repo.ListPatients(ctx)
			if err != nil {
				return nil, err
			}
			out := make([]*Record, 0, len(rows))
			for i := range rows {
				out = append(out, PatientRecord(&rows[i]))
			}
			return out, nil
		},
		KindNurse: func(ctx context.Context) ([]*Record, error) {
			rows, err := repo.ListNurses(ctx)
			if err != nil {
				return nil, err
			}
			out := make([]*Record, 0, len(rows))
			for i := range rows {
				out = append(out, NurseRecord(&rows[i]))
			}
			return out, nil
		},
		KindReceptionist: func(ctx context.Context) ([]*Record, error) {
			rows, err := repo.ListReceptionists(ctx)
			if err != nil {
				return nil, err
			}
			out := make([]*Record, 0, len(rows))
			for i := range rows {
				out = append(out, ReceptionistRecord(&rows[i]))
			}
			return out, nil
		},
	}

	return b
}

// Upsert creates the user's profile of input's kind, or updates it in place
// when it already exists. List-valued fields are replaced, never merged.
func (b *Binder) Upsert(ctx context.Context, userID int64, input Input) (*UpsertResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	u, err := b.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	kind := input.Kind()
	var existingID int64
	if u.HasProfile() {
		if Kind(*u.ProfileModel) != kind {
			b.logger.Warn("profile kind mismatch", "user_id", u.ID, "has", *u.ProfileModel, "wants", kind)
			return nil, internal.ErrProfileKindMismatch
		}
		existingID = *u.ProfileID
	}

	var rec *Record
	var created bool
	switch in := input.(type) {
	case DoctorInput:
		rec, created, err = b.upsertDoctor(ctx, u.ID, existingID, in)
	case PatientInput:
		rec, created, err = b.upsertPatient(ctx, u.ID, existingID, in)
	case NurseInput:
		rec, created, err = b.upsertNurse(ctx, u.ID, existingID, in.StaffInput)
	case ReceptionistInput:
		rec, created, err = b.upsertReceptionist(ctx, u.ID, existingID, in.StaffInput)
	default:
		return nil, internal.NewInternalError("unsupported profile input", fmt.Errorf("kind %q", kind))
	}
	if err != nil {
		return nil, err
	}

	verb := "updated"
	if created {
		verb = "created"
	}
	b.logger.Info("profile "+verb, "user_id", u.ID, "kind", kind, "profile_id", rec.ID())

	return &UpsertResult{
		Message: fmt.Sprintf("%s profile %s successfully", kind.Label(), verb),
		Created: created,
		Profile: rec,
	}, nil
}

func (b *Binder) upsertDoctor(ctx context.Context, userID, existingID int64, in DoctorInput) (*Record, bool, error) {
	var row *profileDatamodel.DoctorProfile
	if existingID != 0 {
		found, err := b.repo.FindDoctor(ctx, existingID)
		if err != nil {
			return nil, false, internal.NewInternalError("failed to load doctor profile", err)
		}
		row = found
	}

	if err := b.checkLicense(ctx, in.LicenseNumber, existingID); err != nil {
		return nil, false, err
	}

	if row == nil {
		row = &profileDatamodel.DoctorProfile{
			Specialization: in.Specialization,
			LicenseNumber:  in.LicenseNumber,
			ShiftDay:       orDefault(in.Day, defaultShiftDay),
			ShiftStartTime: orDefault(in.StartTime, defaultShiftStart),
			ShiftEndTime:   orDefault(in.EndTime, defaultShiftEnd),
		}
		if err := b.create(ctx, userID, KindDoctor, row, existingID); err != nil {
			return nil, false, err
		}
		return DoctorRecord(row), true, nil
	}

	row.Specialization = in.Specialization
	row.LicenseNumber = in.LicenseNumber
	if in.HasShift() {
		row.ShiftDay = in.Day
		row.ShiftStartTime = in.StartTime
		row.ShiftEndTime = in.EndTime
	}
	if err := b.save(ctx, row); err != nil {
		return nil, false, err
	}
	return DoctorRecord(row), false, nil
}

func (b *Binder) upsertPatient(ctx context.Context, userID, existingID int64, in PatientInput) (*Record, bool, error) {
	var row *profileDatamodel.PatientProfile
	if existingID != 0 {
		found, err := b.repo.FindPatient(ctx, existingID)
		if err != nil {
			return nil, false, internal.NewInternalError("failed to load patient profile", err)
		}
		row = found
	}

	isNew := row == nil
	if isNew {
		row = &profileDatamodel.PatientProfile{}
	}
	row.DOB = in.ParsedDOB()
	row.Gender = in.Gender
	row.BloodGroup = in.BloodGroup
	row.MedicalInfo = datatypes.JSONSlice[MedicalInfo](in.MedicalInfo())
	row.EmergencyInfo = datatypes.JSONSlice[EmergencyContact](in.EmergencyInfo())

	if isNew {
		if err := b.create(ctx, userID, KindPatient, row, existingID); err != nil {
			return nil, false, err
		}
		return PatientRecord(row), true, nil
	}
	if err := b.save(ctx, row); err != nil {
		return nil, false, err
	}
	return PatientRecord(row), false, nil
}

func (b *Binder) upsertNurse(ctx context.Context, userID, existingID int64, in StaffInput) (*Record, bool, error) {
	var row *profileDatamodel.NurseProfile
	if existingID != 0 {
		found, err := b.repo.FindNurse(ctx, existingID)
		if err != nil {
			return nil, false, internal.NewInternalError("failed to load nurse profile", err)
		}
		row = found
	}

	isNew := row == nil
	if isNew {
		row = &profileDatamodel.NurseProfile{}
	}
	row.Department = in.Department
	row.Shifts = datatypes.JSONSlice[Shift](in.ShiftList())

	if isNew {
		if err := b.create(ctx, userID, KindNurse, row, existingID); err != nil {
			return nil, false, err
		}
		return NurseRecord(row), true, nil
	}
	if err := b.save(ctx, row); err != nil {
		return nil, false, err
	}
	return NurseRecord(row), false, nil
}

func (b *Binder) upsertReceptionist(ctx context.Context, userID, existingID int64, in StaffInput) (*Record, bool, error) {
	var row *profileDatamodel.ReceptionistProfile
	if existingID != 0 {
		found, err := b.repo.FindReceptionist(ctx, existingID)
		if err != nil {
			return nil, false, internal.NewInternalError("failed to load receptionist profile", err)
		}
		row = found
	}

	isNew := row == nil
	if isNew {
		row = &profileDatamodel.ReceptionistProfile{}
	}
	row.Department = in.Department
	row.Shifts = datatypes.JSONSlice[Shift](in.ShiftList())

	if isNew {
		if err := b.create(ctx, userID, KindReceptionist, row, existingID); err != nil {
			return nil, false, err
		}
		return ReceptionistRecord(row), true, nil
	}
	if err := b.save(ctx, row); err != nil {
		return nil, false, err
	}
	return ReceptionistRecord(row), false, nil
}

// create inserts a new record and links it. A non-zero staleID means the user
// pointed at a record that no longer exists; the link is replaced.
func (b *Binder) create(ctx context.Context, userID int64, kind Kind, row profileDatamodel.Row, staleID int64) error {
	if staleID != 0 {
		b.logger.Warn("user referenced a missing profile record, relinking", "user_id", userID, "kind", kind, "stale_profile_id", staleID)
	}
	if err := b.repo.CreateAndLink(ctx, userID, kind, row); err != nil {
		if errors.Is(err, internal.ErrLicenseTaken) {
			return internal.ErrLicenseTaken
		}
		return internal.NewInternalError("failed to create profile", err)
	}
	return nil
}

func (b *Binder) save(ctx context.Context, row profileDatamodel.Row) error {
	if err := b.repo.Save(ctx, row); err != nil {
		if errors.Is(err, internal.ErrLicenseTaken) {
			return internal.ErrLicenseTaken
		}
		return internal.NewInternalError("failed to update profile", err)
	}
	return nil
}

func (b *Binder) checkLicense(ctx context.Context, license string, ownID int64) error {
	taken, err := b.repo.LicenseInUse(ctx, license, ownID)
	if err != nil {
		return internal.NewInternalError("failed to check license number", err)
	}
	if taken {
		return internal.ErrLicenseTaken
	}
	return nil
}

func (b *Binder) loadUser(ctx context.Context, userID int64) (*userDatamodel.User, error) {
	u, err := b.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if u == nil {
		return nil, internal.ErrUserNotFound
	}
	return u, nil
}

// Resolve follows the user's profile pair. A missing user and a user without
// a profile fail with different codes.
func (b *Binder) Resolve(ctx context.Context, userID int64) (*Record, error) {
	u, err := b.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.HasProfile() {
		return nil, internal.ErrProfileNotCreated
	}

	kind := Kind(*u.ProfileModel)
	fetch, ok := b.fetch[kind]
	if !ok {
		return nil, internal.NewInternalError("unknown profile model", fmt.Errorf("user %d has profile_model %q", u.ID, kind))
	}

	rec, err := fetch(ctx, *u.ProfileID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load profile", err)
	}
	if rec == nil {
		b.logger.Warn("user references a missing profile record", "user_id", u.ID, "kind", kind, "profile_id", *u.ProfileID)
		return nil, internal.ErrProfileNotCreated
	}
	return rec, nil
}

// ResolveOwn is Resolve restricted to one kind.
func (b *Binder) ResolveOwn(ctx context.Context, userID int64, kind Kind) (*Record, error) {
	rec, err := b.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	if rec.Kind != kind {
		return nil, internal.ErrProfileKindMismatch
	}
	return rec, nil
}

// ResolveByID returns a record with its owner, found by reverse lookup on
// the users table. The owner is nil when no user points at the record.
func (b *Binder) ResolveByID(ctx context.Context, kind Kind, profileID int64) (*Detail, error) {
	fetch, ok := b.fetch[kind]
	if !ok {
		return nil, internal.NewInternalError("unknown profile kind", fmt.Errorf("kind %q", kind))
	}

	rec, err := fetch(ctx, profileID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load profile", err)
	}
	if rec == nil {
		return nil, internal.ErrProfileNotFound
	}

	owner, err := b.repo.FindOwner(ctx, profileID, kind)
	if err != nil {
		return nil, internal.NewInternalError("failed to load profile owner", err)
	}

	detail := &Detail{Profile: rec}
	if owner != nil {
		summary := auth.ToAccountSummary(owner)
		detail.User = &summary
	}
	return detail, nil
}

func (b *Binder) List(ctx context.Context, kind Kind) ([]*Record, error) {
	list, ok := b.list[kind]
	if !ok {
		return nil, internal.NewInternalError("unknown profile kind", fmt.Errorf("kind %q", kind))
	}

	recs, err := list(ctx)
	if err != nil {
		b.logger.Error("failed to list profiles", "kind", kind, "error", err)
		return nil, internal.NewInternalError("failed to list profiles", err)
	}
	return recs, nil
}

// Delete removes a record and unsets its owner's pair. The user survives.
func (b *Binder) Delete(ctx context.Context, kind Kind, profileID int64) error {
	if !kind.Valid() {
		return internal.NewInternalError("unknown profile kind", fmt.Errorf("kind %q", kind))
	}

	found, err := b.repo.DeleteAndUnlink(ctx, kind, profileID)
	if err != nil {
		return internal.NewInternalError("failed to delete profile", err)
	}
	if !found {
		return internal.ErrProfileNotFound
	}

	b.logger.Info("profile deleted", "kind", kind, "profile_id", profileID)
	return nil
}

// ownProfileID returns the id of the caller's profile of the given kind.
func (b *Binder) ownProfileID(ctx context.Context, userID int64, kind Kind) (int64, error) {
	u, err := b.loadUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	if !u.HasProfile() {
		return 0, internal.ErrProfileNotCreated
	}
	if Kind(*u.ProfileModel) != kind {
		return 0, internal.ErrProfileKindMismatch
	}
	return *u.ProfileID, nil
}

func (b *Binder) UpdateDoctorShift(ctx context.Context, userID int64, dto ShiftDTO) (*Record, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	id, err := b.ownProfileID(ctx, userID, KindDoctor)
	if err != nil {
		return nil, err
	}
	row, err := b.repo.FindDoctor(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load doctor profile", err)
	}
	if row == nil {
		return nil, internal.ErrProfileNotCreated
	}

	row.ShiftDay = dto.Day
	row.ShiftStartTime = dto.StartTime
	row.ShiftEndTime = dto.EndTime
	if err := b.save(ctx, row); err != nil {
		return nil, err
	}
	return DoctorRecord(row), nil
}

// ReplaceMedicalInfo sets the medical list to exactly one entry.
func (b *Binder) ReplaceMedicalInfo(ctx context.Context, userID int64, dto MedicalInfoDTO) (*Record, error) {
	row, err := b.ownPatient(ctx, userID)
	if err != nil {
		return nil, err
	}

	row.MedicalInfo = datatypes.JSONSlice[MedicalInfo]{newMedicalInfo(dto.Allergies, dto.Medications)}
	if err := b.save(ctx, row); err != nil {
		return nil, err
	}
	return PatientRecord(row), nil
}

// ReplaceEmergencyInfo sets the emergency contact list to exactly one entry.
func (b *Binder) ReplaceEmergencyInfo(ctx context.Context, userID int64, dto EmergencyContactDTO) (*Record, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := b.ownPatient(ctx, userID)
	if err != nil {
		return nil, err
	}

	row.EmergencyInfo = datatypes.JSONSlice[EmergencyContact]{{Contact: dto.Contact, Relation: dto.Relation}}
	if err := b.save(ctx, row); err != nil {
		return nil, err
	}
	return PatientRecord(row), nil
}

func (b *Binder) ownPatient(ctx context.Context, userID int64) (*profileDatamodel.PatientProfile, error) {
	id, err := b.ownProfileID(ctx, userID, KindPatient)
	if err != nil {
		return nil, err
	}
	row, err := b.repo.FindPatient(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load patient profile", err)
	}
	if row == nil {
		return nil, internal.ErrProfileNotCreated
	}
	return row, nil
}

// ReplaceShifts swaps the whole shift list of a nurse or receptionist.
func (b *Binder) ReplaceShifts(ctx context.Context, userID int64, kind Kind, dto ShiftsDTO) (*Record, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	id, err := b.ownProfileID(ctx, userID, kind)
	if err != nil {
		return nil, err
	}
	shifts := datatypes.JSONSlice[Shift](dto.Shifts)

	switch kind {
	case KindNurse:
		row, err := b.repo.FindNurse(ctx, id)
		if err != nil {
			return nil, internal.NewInternalError("failed to load nurse profile", err)
		}
		if row == nil {
			return nil, internal.ErrProfileNotCreated
		}
		row.Shifts = shifts
		if err := b.save(ctx, row); err != nil {
			return nil, err
		}
		return NurseRecord(row), nil
	case KindReceptionist:
		row, err := b.repo.FindReceptionist(ctx, id)
		if err != nil {
			return nil, internal.NewInternalError("failed to load receptionist profile", err)
		}
		if row == nil {
			return nil, internal.ErrProfileNotCreated
		}
		row.Shifts = shifts
		if err := b.save(ctx, row); err != nil {
			return nil, err
		}
		return ReceptionistRecord(row), nil
	}
	return nil, internal.NewInternalError("shifts are not supported for this profile kind", fmt.Errorf("kind %q", kind))
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
