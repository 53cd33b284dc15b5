package appointment

import (
	"time"

	appointmentDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/appointment"
	userDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/user"
)

const (
	StatusPending   = "Pending"
	StatusConfirmed = "Confirmed"
	StatusCompleted = "Completed"
	StatusCancelled = "Cancelled"
)

var Statuses = []string{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled}

const (
	TypeCheckUp      = "Check-up"
	TypeConsultation = "Consultation"
	TypeFollowUp     = "Follow-up"
	TypeEmergency    = "Emergency"
)

var Types = []string{TypeCheckUp, TypeConsultation, TypeFollowUp, TypeEmergency}

const defaultSpecialization = "General"

// Party is the user on either side of an appointment.
type Party struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone *string `json:"phone,omitempty"`
}

type DoctorDetails struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Specialization string `json:"specialization"`
}

type Appointment struct {
	ID            int64          `json:"id"`
	Patient       *Party         `json:"patient"`
	Doctor        *Party         `json:"doctor"`
	Date          time.Time      `json:"date"`
	Status        string         `json:"status"`
	Type          string         `json:"type"`
	Notes         string         `json:"notes"`
	DoctorDetails *DoctorDetails `json:"doctorDetails,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

func partyFrom(u *userDatamodel.User) *Party {
	if u == nil {
		return nil
	}
	return &Party{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone}
}

// FromDataModel fills the parties from users, keyed by id. A party whose
// user no longer exists is left nil.
func FromDataModel(row *appointmentDatamodel.Appointment, users map[int64]*userDatamodel.User) *Appointment {
	return &Appointment{
		ID:        row.ID,
		Patient:   partyFrom(users[row.PatientID]),
		Doctor:    partyFrom(users[row.DoctorID]),
		Date:      row.Date.UTC(),
		Status:    row.Status,
		Type:      row.Type,
		Notes:     row.Notes,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func isStatus(s string) bool {
	for _, st := range Statuses {
		if s == st {
			return true
		}
	}
	return false
}
