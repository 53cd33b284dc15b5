package profile

import (
	"fmt"
	"strings"
	"time"

	"github.com/frahmantamala/hospital-management/internal"
	"github.com/frahmantamala/hospital-management/internal/auth"
	"github.com/frahmantamala/hospital-management/internal/core/common/validation"
)

var PatientGenders = []string{"Male", "Female", "Others"}

const (
	defaultShiftDay   = "Monday"
	defaultShiftStart = "09:00"
	defaultShiftEnd   = "17:00"
)

// Input is the create-or-update payload of one profile kind. The set of
// implementations is closed.
type Input interface {
	Kind() Kind
	Validate() *internal.AppError
	isInput()
}

type DoctorInput struct {
	Specialization string `json:"specialization"`
	LicenseNumber  string `json:"licenseNumber"`
	Day            string `json:"day"`
	StartTime      string `json:"startTime"`
	EndTime        string `json:"endTime"`
}

func (DoctorInput) Kind() Kind { return KindDoctor }
func (DoctorInput) isInput() {}

func (d *DoctorInput) Normalize() {
	d.Specialization = strings.TrimSpace(d.Specialization)
	d.LicenseNumber = strings.TrimSpace(d.LicenseNumber)
	d.Day = strings.TrimSpace(d.Day)
	d.StartTime = strings.TrimSpace(d.StartTime)
	d.EndTime = strings.TrimSpace(d.EndTime)
}

func (d DoctorInput) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("specialization", d.Specialization).Required().MaxLength(100)
	v.Field("licenseNumber", d.LicenseNumber).Required().MaxLength(50)
	v.Field("day", d.Day).OneOf(validation.Weekdays...)
	v.Field("startTime", d.StartTime).TimeOfDay()
	v.Field("endTime", d.EndTime).TimeOfDay()
	return v.Validate()
}

// HasShift reports whether all three shift fields were sent. Updates only
// touch the shift in that case.
func (d DoctorInput) HasShift() bool {
	return d.Day != "" && d.StartTime != "" && d.EndTime != ""
}

type PatientInput struct {
	DOB               string   `json:"DOB"`
	Gender            string   `json:"Gender"`
	BloodGroup        *string  `json:"BloodGroup"`
	Allergies         *string  `json:"Allergies"`
	Medications       []string `json:"Medications"`
	EmergencyContact  *string  `json:"emergencyContact"`
	EmergencyRelation *string  `json:"emergencyRelation"`
}

func (PatientInput) Kind() Kind { return KindPatient }
func (PatientInput) isInput() {}

func (d PatientInput) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("DOB", d.DOB).Required().Custom(func(value interface{}) *internal.AppError {
		s, _ := value.(string)
		if strings.TrimSpace(s) == "" {
			return nil
		}
		dob, appErr := validation.ParseDate("DOB", s)
		if appErr != nil {
			return appErr
		}
		if dob.After(time.Now()) {
			return internal.NewValidationFieldError("DOB", "DOB cannot be in the future", internal.ErrCodeInvalidDate)
		}
		return nil
	})
	v.Field("Gender", d.Gender).Required().OneOf(PatientGenders...)
	v.Field("BloodGroup", d.BloodGroup).OneOf(validation.BloodGroups...)
	return v.Validate()
}

// ParsedDOB is only meaningful after Validate succeeded.
func (d PatientInput) ParsedDOB() time.Time {
	dob, _ := validation.ParseDate("DOB", d.DOB)
	return dob
}

// MedicalInfo is the replacement list: one entry when allergies or
// medications were sent, empty otherwise.
func (d PatientInput) MedicalInfo() []MedicalInfo {
	hasAllergies := d.Allergies != nil && *d.Allergies != ""
	if !hasAllergies && d.Medications == nil {
		return []MedicalInfo{}
	}
	return []MedicalInfo{newMedicalInfo(d.Allergies, d.Medications)}
}

// EmergencyInfo is the replacement list: one entry when a contact was sent.
func (d PatientInput) EmergencyInfo() []EmergencyContact {
	if d.EmergencyContact == nil || *d.EmergencyContact == "" {
		return []EmergencyContact{}
	}
	relation := ""
	if d.EmergencyRelation != nil {
		relation = *d.EmergencyRelation
	}
	return []EmergencyContact{{Contact: *d.EmergencyContact, Relation: relation}}
}

func newMedicalInfo(allergies *string, medications []string) MedicalInfo {
	if medications == nil {
		medications = []string{}
	}
	return MedicalInfo{Allergies: allergies, Medications: medications}
}

type StaffInput struct {
	Department string  `json:"department"`
	Shifts     []Shift `json:"shifts"`
}

func (d *StaffInput) Normalize() {
	d.Department = strings.TrimSpace(d.Department)
}

func (d StaffInput) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("department", d.Department).Required().MaxLength(100)
	validateShifts(v, d.Shifts)
	return v.Validate()
}

// ShiftList never returns nil.
func (d StaffInput) ShiftList() []Shift {
	if d.Shifts == nil {
		return []Shift{}
	}
	return d.Shifts
}

type NurseInput struct {
	StaffInput
}

func (NurseInput) Kind() Kind { return KindNurse }
func (NurseInput) isInput() {}

type ReceptionistInput struct {
	StaffInput
}

func (ReceptionistInput) Kind() Kind { return KindReceptionist }
func (ReceptionistInput) isInput() {}

func validateShifts(v *validation.ValidationBuilder, shifts []Shift) {
	for i, s := range shifts {
		prefix := fmt.Sprintf("shifts[%d]", i)
		v.Field(prefix+".day", s.Day).Required().OneOf(validation.Weekdays...)
		v.Field(prefix+".startTime", s.StartTime).Required().TimeOfDay()
		v.Field(prefix+".endTime", s.EndTime).Required().TimeOfDay()
	}
}

type ShiftDTO struct {
	Day       string `json:"day"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

func (d ShiftDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("day", d.Day).Required().OneOf(validation.Weekdays...)
	v.Field("startTime", d.StartTime).Required().TimeOfDay()
	v.Field("endTime", d.EndTime).Required().TimeOfDay()
	return v.Validate()
}

type ShiftsDTO struct {
	Shifts []Shift `json:"shifts"`
}

func (d ShiftsDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("shifts", d.Shifts).Custom(func(interface{}) *internal.AppError {
		if d.Shifts == nil {
			return internal.NewValidationFieldError("shifts", "Shifts array is required", internal.ErrCodeValidationFailed)
		}
		return nil
	})
	validateShifts(v, d.Shifts)
	return v.Validate()
}

type MedicalInfoDTO struct {
	Allergies   *string  `json:"Allergies"`
	Medications []string `json:"Medications"`
}

type EmergencyContactDTO struct {
	Contact  string `json:"contact"`
	Relation string `json:"relation"`
}

func (d EmergencyContactDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("contact", d.Contact).Required()
	v.Field("relation", d.Relation).Required()
	return v.Validate()
}

type UpsertResult struct {
	Message string  `json:"message"`
	Created bool    `json:"created"`
	Profile *Record `json:"profile"`
}

type MessageResponse struct {
	Message string  `json:"message"`
	Profile *Record `json:"profile"`
}

// Detail is a profile together with the user that owns it, when any.
type Detail struct {
	Profile *Record              `json:"profile"`
	User    *auth.AccountSummary `json:"user"`
}

type ListResponse struct {
	Count    int       `json:"count"`
	Profiles []*Record `json:"profiles"`
}
