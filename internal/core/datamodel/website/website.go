package website

import "time"

// Message is a contact form submission.
type Message struct {
	ID        int64     `gorm:"primaryKey"`
	FirstName string    `gorm:"column:first_name;not null"`
	LastName  string    `gorm:"column:last_name;not null"`
	Email     string    `gorm:"column:email;not null"`
	Message   string    `gorm:"column:message;not null"`
	Status    string    `gorm:"column:status;not null;default:new"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Message) TableName() string {
	return "contact_messages"
}

type Subscriber struct {
	ID        int64     `gorm:"primaryKey"`
	Email     string    `gorm:"column:email;uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Subscriber) TableName() string {
	return "newsletter_subscribers"
}
