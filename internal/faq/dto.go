package faq

import (
	"strings"

	"github.com/frahmantamala/hospital-management/internal"
	"github.com/frahmantamala/hospital-management/internal/core/common/validation"
)

type CreateFAQDTO struct {
	Keywords []string `json:"keywords"`
	Response string   `json:"response"`
	Language string   `json:"language"`
	Category string   `json:"category"`
	IsActive *bool    `json:"isActive"`
	Priority int      `json:"priority"`
}

// Normalize lower-cases keywords and fills the defaults for omitted fields.
func (d *CreateFAQDTO) Normalize() {
	d.Keywords = normalizeKeywords(d.Keywords)
	d.Response = strings.TrimSpace(d.Response)
	d.Language = strings.TrimSpace(d.Language)
	if d.Language == "" {
		d.Language = DefaultLanguage
	}
	d.Category = strings.TrimSpace(d.Category)
	if d.Category == "" {
		d.Category = CategoryGeneral
	}
}

func (d CreateFAQDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("keywords", d.Keywords).Custom(nonEmptyKeywords)
	v.Field("response", d.Response).Required()
	v.Field("language", d.Language).MaxLength(10)
	v.Field("category", d.Category).OneOf(Categories...)
	return v.Validate()
}

// UpdateFAQDTO changes only the fields that are present.
type UpdateFAQDTO struct {
	Keywords *[]string `json:"keywords"`
	Response *string   `json:"response"`
	Language *string   `json:"language"`
	Category *string   `json:"category"`
	IsActive *bool     `json:"isActive"`
	Priority *int      `json:"priority"`
}

func (d *UpdateFAQDTO) Normalize() {
	if d.Keywords != nil {
		k := normalizeKeywords(*d.Keywords)
		d.Keywords = &k
	}
	for _, s := range []*string{d.Response, d.Language, d.Category} {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}
}

func (d UpdateFAQDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	if d.Keywords != nil {
		v.Field("keywords", *d.Keywords).Custom(nonEmptyKeywords)
	}
	if d.Response != nil {
		v.Field("response", d.Response).Required()
	}
	if d.Language != nil {
		v.Field("language", d.Language).Required().MaxLength(10)
	}
	if d.Category != nil {
		v.Field("category", d.Category).Required().OneOf(Categories...)
	}
	return v.Validate()
}

type FAQsResponse struct {
	Count int    `json:"count"`
	FAQs  []*FAQ `json:"faqs"`
}

func normalizeKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	for _, k := range in {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			out = append(out, k)
		}
	}
	return out
}

func nonEmptyKeywords(value interface{}) *internal.AppError {
	if k, _ := value.([]string); len(k) > 0 {
		return nil
	}
	return internal.NewValidationFieldError("keywords", "keywords must contain at least one entry", internal.ErrCodeValidationFailed)
}
