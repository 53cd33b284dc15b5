package website

import (
	"time"

	websiteDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/website"
)

const (
	MessageStatusNew      = "new"
	MessageStatusRead     = "read"
	MessageStatusArchived = "archived"
)

type Message struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

func FromDataModel(m *websiteDatamodel.Message) *Message {
	return &Message{
		ID:        m.ID,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Email:     m.Email,
		Message:   m.Message,
		Status:    m.Status,
		CreatedAt: m.CreatedAt,
	}
}
