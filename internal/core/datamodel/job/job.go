package job

import (
	"time"

	"gorm.io/datatypes"
)

type Job struct {
	ID           int64                       `gorm:"primaryKey"`
	Title        string                      `gorm:"column:title;not null"`
	Type         string                      `gorm:"column:type;not null"`
	Location     string                      `gorm:"column:location;not null"`
	Department   string                      `gorm:"column:department"`
	Description  string                      `gorm:"column:description"`
	Requirements datatypes.JSONSlice[string] `gorm:"column:requirements;not null"`
	IsOpen       bool                        `gorm:"column:is_open;not null"`
	PostedAt     time.Time                   `gorm:"column:posted_at;autoCreateTime"`
}

func (Job) TableName() string {
	return "jobs"
}
