package profile

import (
	"encoding/json"
	"time"

	profileDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/profile"
)

// Sub-document shapes are stored as JSON exactly as they are served.
type (
	Shift            = profileDatamodel.Shift
	MedicalInfo      = profileDatamodel.MedicalInfo
	EmergencyContact = profileDatamodel.EmergencyContact
)

type Doctor struct {
	ID             int64     `json:"id"`
	Specialization string    `json:"specialization"`
	LicenseNumber  string    `json:"licenseNumber"`
	Shift          Shift     `json:"shift"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type PersonalInfo struct {
	DOB        time.Time `json:"DOB"`
	Gender     string    `json:"Gender"`
	BloodGroup *string   `json:"BloodGroup"`
}

type Patient struct {
	ID            int64              `json:"id"`
	PersonalInfo  PersonalInfo       `json:"personalInfo"`
	MedicalInfo   []MedicalInfo      `json:"medicalInfo"`
	EmergencyInfo []EmergencyContact `json:"emergencyInfo"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

// Staff is the shared shape of nurse and receptionist profiles.
type Staff struct {
	ID         int64     `json:"id"`
	Department string    `json:"department"`
	Shifts     []Shift   `json:"shift"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Record holds exactly one profile variant, selected by Kind. Nurse and
// Receptionist records both use Staff.
type Record struct {
	Kind    Kind
	Doctor  *Doctor
	Patient *Patient
	Staff   *Staff
}

func (r *Record) ID() int64 {
	switch {
	case r.Doctor != nil:
		return r.Doctor.ID
	case r.Patient != nil:
		return r.Patient.ID
	case r.Staff != nil:
		return r.Staff.ID
	}
	return 0
}

// MarshalJSON serialises the held variant only.
func (r Record) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case KindDoctor:
		return json.Marshal(r.Doctor)
	case KindPatient:
		return json.Marshal(r.Patient)
	case KindNurse, KindReceptionist:
		return json.Marshal(r.Staff)
	}
	return []byte("null"), nil
}

func DoctorRecord(row *profileDatamodel.DoctorProfile) *Record {
	return &Record{
		Kind: KindDoctor,
		Doctor: &Doctor{
			ID:             row.ID,
			Specialization: row.Specialization,
			LicenseNumber:  row.LicenseNumber,
			Shift: Shift{
				Day:       row.ShiftDay,
				StartTime: row.ShiftStartTime,
				EndTime:   row.ShiftEndTime,
			},
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
		},
	}
}

func PatientRecord(row *profileDatamodel.PatientProfile) *Record {
	medical := make([]MedicalInfo, 0, len(row.MedicalInfo))
	for _, m := range row.MedicalInfo {
		if m.Medications == nil {
			m.Medications = []string{}
		}
		medical = append(medical, m)
	}

	emergency := make([]EmergencyContact, 0, len(row.EmergencyInfo))
	emergency = append(emergency, row.EmergencyInfo...)

	return &Record{
		Kind: KindPatient,
		Patient: &Patient{
			ID: row.ID,
			PersonalInfo: PersonalInfo{
				DOB:        row.DOB.UTC(),
				Gender:     row.Gender,
				BloodGroup: row.BloodGroup,
			},
			MedicalInfo:   medical,
			EmergencyInfo: emergency,
			CreatedAt:     row.CreatedAt,
			UpdatedAt:     row.UpdatedAt,
		},
	}
}

func staffRecord(kind Kind, id int64, department string, shifts []Shift, createdAt, updatedAt time.Time) *Record {
	out := make([]Shift, 0, len(shifts))
	out = append(out, shifts...)

	return &Record{
		Kind: kind,
		Staff: &Staff{
			ID:         id,
			Department: department,
			Shifts:     out,
			CreatedAt:  createdAt,
			UpdatedAt:  updatedAt,
		},
	}
}

func NurseRecord(row *profileDatamodel.NurseProfile) *Record {
	return staffRecord(KindNurse, row.ID, row.Department, row.Shifts, row.CreatedAt, row.UpdatedAt)
}

func ReceptionistRecord(row *profileDatamodel.ReceptionistProfile) *Record {
	return staffRecord(KindReceptionist, row.ID, row.Department, row.Shifts, row.CreatedAt, row.UpdatedAt)
}
