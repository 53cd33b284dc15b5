package website

import (
	"strings"

	"github.com/frahmantamala/hospital-management/internal"
	"github.com/frahmantamala/hospital-management/internal/core/common/validation"
)

type ContactMessageDTO struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Message   string `json:"message"`
}

func (d *ContactMessageDTO) Normalize() {
	d.FirstName = strings.TrimSpace(d.FirstName)
	d.LastName = strings.TrimSpace(d.LastName)
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	d.Message = strings.TrimSpace(d.Message)
}

func (d ContactMessageDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("firstName", d.FirstName).Required().MaxLength(100)
	v.Field("lastName", d.LastName).Required().MaxLength(100)
	v.Field("email", d.Email).Required().Email().MaxLength(255)
	v.Field("message", d.Message).Required().MaxLength(5000)
	return v.Validate()
}

type SubscribeDTO struct {
	Email string `json:"email"`
}

func (d *SubscribeDTO) Normalize() {
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
}

func (d SubscribeDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("email", d.Email).Required().Email().MaxLength(255)
	return v.Validate()
}

type ContactResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Data    *Message `json:"data"`
}

type SubscribeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
