package job

import (
	"time"

	jobDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/job"
)

const (
	TypeFullTime  = "Full-Time"
	TypePartTime  = "Part-Time"
	TypeContract  = "Contract"
	TypeTemporary = "Temporary"
)

var Types = []string{TypeFullTime, TypePartTime, TypeContract, TypeTemporary}

// Job is an open position advertised on the public site.
type Job struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Type         string    `json:"type"`
	Location     string    `json:"location"`
	Department   string    `json:"department"`
	Description  string    `json:"description"`
	Requirements []string  `json:"requirements"`
	IsOpen       bool      `json:"isOpen"`
	PostedAt     time.Time `json:"postedAt"`
}

func FromDataModel(j *jobDatamodel.Job) *Job {
	reqs := []string(j.Requirements)
	if reqs == nil {
		reqs = []string{}
	}
	return &Job{
		ID:           j.ID,
		Title:        j.Title,
		Type:         j.Type,
		Location:     j.Location,
		Department:   j.Department,
		Description:  j.Description,
		Requirements: reqs,
		IsOpen:       j.IsOpen,
		PostedAt:     j.PostedAt,
	}
}

func FromDataModels(rows []jobDatamodel.Job) []*Job {
	out := make([]*Job, 0, len(rows))
	for i := range rows {
		out = append(out, FromDataModel(&rows[i]))
	}
	return out
}
