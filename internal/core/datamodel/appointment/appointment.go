package appointment

import "time"

type Appointment struct {
	ID        int64     `gorm:"primaryKey"`
	PatientID int64     `gorm:"column:patient_id;not null;index"`
	DoctorID  int64     `gorm:"column:doctor_id;not null;index"`
	Date      time.Time `gorm:"column:date;not null"`
	Status    string    `gorm:"column:status;not null;default:Pending"`
	Type      string    `gorm:"column:type;not null;default:Consultation"`
	Notes     string    `gorm:"column:notes"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Appointment) TableName() string {
	return "appointments"
}
