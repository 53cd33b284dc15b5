package appointment

import (
	"strings"
	"time"

	"github.com/frahmantamala/hospital-management/internal"
	"github.com/frahmantamala/hospital-management/internal/core/common/validation"
)

type CreateAppointmentDTO struct {
	DoctorID  int64  `json:"doctorId"`
	PatientID *int64 `json:"patientId"`
	Date      string `json:"date"`
	Type      string `json:"type"`
	Notes     string `json:"notes"`
}

func (d *CreateAppointmentDTO) Normalize() {
	d.Date = strings.TrimSpace(d.Date)
	d.Type = strings.TrimSpace(d.Type)
	d.Notes = strings.TrimSpace(d.Notes)
	if d.Type == "" {
		d.Type = TypeConsultation
	}
}

func (d CreateAppointmentDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("doctorId", d.DoctorID).Required()
	v.Field("date", d.Date).Required().Custom(func(value interface{}) *internal.AppError {
		if d.Date == "" {
			return nil
		}
		_, appErr := validation.ParseDate("date", d.Date)
		return appErr
	})
	v.Field("type", d.Type).OneOf(Types...)
	v.Field("notes", d.Notes).MaxLength(1000)
	return v.Validate()
}

// ParsedDate is only meaningful after Validate succeeded.
func (d CreateAppointmentDTO) ParsedDate() time.Time {
	t, _ := validation.ParseDate("date", d.Date)
	return t
}

type UpdateStatusDTO struct {
	Status string `json:"status"`
}

type AppointmentResponse struct {
	Message     string       `json:"message"`
	Appointment *Appointment `json:"appointment"`
}

type AppointmentsResponse struct {
	Appointments []*Appointment `json:"appointments"`
}
