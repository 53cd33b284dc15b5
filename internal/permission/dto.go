package permission

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/frahmantamala/hospital-management/internal"
	"github.com/frahmantamala/hospital-management/internal/core/common/validation"
)

type CreatePermissionDTO struct {
	Name  string `json:"name"`
	Group string `json:"group"`
}

func (d *CreatePermissionDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Group = strings.TrimSpace(d.Group)
}

func (d CreatePermissionDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(100)
	v.Field("group", d.Group).Required().MaxLength(100)
	return v.Validate()
}

type UpdatePermissionDTO struct {
	Name  *string `json:"name"`
	Group *string `json:"group"`
}

func (d UpdatePermissionDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	if d.Name != nil {
		v.Field("name", d.Name).Required().MaxLength(100)
	}
	if d.Group != nil {
		v.Field("group", d.Group).Required().MaxLength(100)
	}
	return v.Validate()
}

type PermissionsResponse struct {
	Permissions []*Permission `json:"permissions"`
}

// Refs is a list of permission references as sent by clients. Each element
// may be a JSON number (an id) or a string (an id or a name).
type Refs []string

func (r *Refs) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("permissions must be an array: %w", err)
	}

	refs := make(Refs, 0, len(raw))
	for _, item := range raw {
		item = bytes.TrimSpace(item)
		if len(item) > 0 && item[0] == '"' {
			var s string
			if err := json.Unmarshal(item, &s); err != nil {
				return err
			}
			refs = append(refs, strings.TrimSpace(s))
			continue
		}

		var n json.Number
		if err := json.Unmarshal(item, &n); err != nil {
			return fmt.Errorf("permission reference must be a number or a string, got %s", item)
		}
		refs = append(refs, n.String())
	}

	*r = refs
	return nil
}
