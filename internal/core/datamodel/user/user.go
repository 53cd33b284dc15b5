package user

import "time"

// User is the users row. ProfileID and ProfileModel are written together or not at all.
type User struct {
	ID           int64     `gorm:"primaryKey"`
	Email        string    `gorm:"column:email;uniqueIndex;not null"`
	Name         string    `gorm:"column:name;not null"`
	Phone        *string   `gorm:"column:phone"`
	Gender       string    `gorm:"column:gender;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	IsVerified   bool      `gorm:"column:is_verified;not null;default:false"`
	RoleID       *int64    `gorm:"column:role_id;index"`
	ProfileID    *int64    `gorm:"column:profile_id"`
	ProfileModel *string   `gorm:"column:profile_model"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) HasProfile() bool {
	return u.ProfileID != nil && u.ProfileModel != nil
}
