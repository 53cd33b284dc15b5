package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeUserRegistered = "user.registered"
	EventTypeAccountCreated = "user.account_created"
)

// UserRegisteredEvent is raised for self-service sign ups that still need to
// confirm their email address.
type UserRegisteredEvent struct {
	BaseEvent
	UserID      int64  `json:"user_id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	VerifyToken string `json:"-"`
}

func NewUserRegisteredEvent(userID int64, email, name, verifyToken string) *UserRegisteredEvent {
	return &UserRegisteredEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeUserRegistered,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id": userID,
				"email":   email,
			},
		},
		UserID:      userID,
		Email:       email,
		Name:        name,
		VerifyToken: verifyToken,
	}
}

// AccountCreatedEvent is raised when staff open an already verified account on
// someone's behalf.
type AccountCreatedEvent struct {
	BaseEvent
	UserID    int64  `json:"user_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	CreatedBy int64  `json:"created_by"`
}

func NewAccountCreatedEvent(userID int64, email, name string, createdBy int64) *AccountCreatedEvent {
	return &AccountCreatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeAccountCreated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":    userID,
				"email":      email,
				"created_by": createdBy,
			},
		},
		UserID:    userID,
		Email:     email,
		Name:      name,
		CreatedBy: createdBy,
	}
}
