package profile

import (
	"time"

	"gorm.io/datatypes"
)

// Row is implemented by every profile table model.
type Row interface {
	GetID() int64
}

type Shift struct {
	Day       string `json:"day"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type MedicalInfo struct {
	Allergies   *string  `json:"Allergies"`
	Medications []string `json:"Medications"`
}

type EmergencyContact struct {
	Contact  string `json:"contact"`
	Relation string `json:"relation"`
}

type DoctorProfile struct {
	ID             int64     `gorm:"primaryKey"`
	Specialization string    `gorm:"column:specialization;not null"`
	LicenseNumber  string    `gorm:"column:license_number;uniqueIndex;not null"`
	ShiftDay       string    `gorm:"column:shift_day;not null"`
	ShiftStartTime string    `gorm:"column:shift_start_time;not null"`
	ShiftEndTime   string    `gorm:"column:shift_end_time;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *DoctorProfile) GetID() int64 {
	return p.ID
}

func (DoctorProfile) TableName() string {
	return "doctor_profiles"
}

type PatientProfile struct {
	ID            int64                                 `gorm:"primaryKey"`
	DOB           time.Time                             `gorm:"column:dob;not null"`
	Gender        string                                `gorm:"column:gender;not null"`
	BloodGroup    *string                               `gorm:"column:blood_group"`
	MedicalInfo   datatypes.JSONSlice[MedicalInfo]      `gorm:"column:medical_info;not null"`
	EmergencyInfo datatypes.JSONSlice[EmergencyContact] `gorm:"column:emergency_info;not null"`
	CreatedAt     time.Time                             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time                             `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *PatientProfile) GetID() int64 {
	return p.ID
}

func (PatientProfile) TableName() string {
	return "patient_profiles"
}

type NurseProfile struct {
	ID         int64                      `gorm:"primaryKey"`
	Department string                     `gorm:"column:department;not null"`
	Shifts     datatypes.JSONSlice[Shift] `gorm:"column:shifts;not null"`
	CreatedAt  time.Time                  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time                  `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *NurseProfile) GetID() int64 {
	return p.ID
}

func (NurseProfile) TableName() string {
	return "nurse_profiles"
}

type ReceptionistProfile struct {
	ID         int64                      `gorm:"primaryKey"`
	Department string                     `gorm:"column:department;not null"`
	Shifts     datatypes.JSONSlice[Shift] `gorm:"column:shifts;not null"`
	CreatedAt  time.Time                  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time                  `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *ReceptionistProfile) GetID() int64 {
	return p.ID
}

func (ReceptionistProfile) TableName() string {
	return "receptionist_profiles"
}
