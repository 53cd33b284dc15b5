package faq

import (
	"time"

	faqDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/faq"
	"gorm.io/datatypes"
)

const (
	CategoryAppointment = "appointment"
	CategoryDepartments = "departments"
	CategoryHours       = "hours"
	CategoryEmergency   = "emergency"
	CategoryLocation    = "location"
	CategoryInsurance   = "insurance"
	CategoryGeneral     = "general"

	DefaultLanguage = "en"
)

var Categories = []string{
	CategoryAppointment,
	CategoryDepartments,
	CategoryHours,
	CategoryEmergency,
	CategoryLocation,
	CategoryInsurance,
	CategoryGeneral,
}

type FAQ struct {
	ID        int64     `json:"id"`
	Keywords  []string  `json:"keywords"`
	Response  string    `json:"response"`
	Language  string    `json:"language"`
	Category  string    `json:"category"`
	IsActive  bool      `json:"isActive"`
	Priority  int       `json:"priority"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func ToDataModel(f *FAQ) *faqDatamodel.FAQ {
	return &faqDatamodel.FAQ{
		ID:        f.ID,
		Keywords:  datatypes.JSONSlice[string](f.Keywords),
		Response:  f.Response,
		Language:  f.Language,
		Category:  f.Category,
		IsActive:  f.IsActive,
		Priority:  f.Priority,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

func FromDataModel(f *faqDatamodel.FAQ) *FAQ {
	keywords := []string(f.Keywords)
	if keywords == nil {
		keywords = []string{}
	}
	return &FAQ{
		ID:        f.ID,
		Keywords:  keywords,
		Response:  f.Response,
		Language:  f.Language,
		Category:  f.Category,
		IsActive:  f.IsActive,
		Priority:  f.Priority,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

func FromDataModels(rows []faqDatamodel.FAQ) []*FAQ {
	out := make([]*FAQ, 0, len(rows))
	for i := range rows {
		out = append(out, FromDataModel(&rows[i]))
	}
	return out
}
