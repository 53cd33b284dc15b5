package faq

import (
	"time"

	"gorm.io/datatypes"
)

type FAQ struct {
	ID        int64                       `gorm:"primaryKey"`
	Keywords  datatypes.JSONSlice[string] `gorm:"column:keywords;not null"`
	Response  string                      `gorm:"column:response;not null"`
	Language  string                      `gorm:"column:language;not null;default:en"`
	Category  string                      `gorm:"column:category;not null;default:general;index"`
	IsActive  bool                        `gorm:"column:is_active;not null"`
	Priority  int                         `gorm:"column:priority;not null;default:0"`
	CreatedAt time.Time                   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time                   `gorm:"column:updated_at;autoUpdateTime"`
}

func (FAQ) TableName() string {
	return "faqs"
}
