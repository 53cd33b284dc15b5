package job

import (
	"strings"

	"github.com/frahmantamala/hospital-management/internal"
	"github.com/frahmantamala/hospital-management/internal/core/common/validation"
)

type CreateJobDTO struct {
	Title        string   `json:"title"`
	Type         string   `json:"type"`
	Location     string   `json:"location"`
	Department   string   `json:"department"`
	Description  string   `json:"description"`
	Requirements []string `json:"requirements"`
}

func (d *CreateJobDTO) Normalize() {
	d.Title = strings.TrimSpace(d.Title)
	d.Type = strings.TrimSpace(d.Type)
	d.Location = strings.TrimSpace(d.Location)
	d.Department = strings.TrimSpace(d.Department)

	reqs := make([]string, 0, len(d.Requirements))
	for _, r := range d.Requirements {
		if r = strings.TrimSpace(r); r != "" {
			reqs = append(reqs, r)
		}
	}
	d.Requirements = reqs
}

func (d CreateJobDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("title", d.Title).Required().MaxLength(200)
	v.Field("type", d.Type).Required().OneOf(Types...)
	v.Field("location", d.Location).Required().MaxLength(200)
	v.Field("department", d.Department).MaxLength(200)
	return v.Validate()
}

type JobsResponse struct {
	Success bool   `json:"success"`
	Jobs    []*Job `json:"jobs"`
}

type JobResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Job     *Job   `json:"job"`
}
