package models

import (
	"time"

	"github.com/amirphl/mini-crm/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an operator who signed in through Google. GoogleID is the upsert key.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	GoogleID  string    `gorm:"size:255;not null;uniqueIndex:uk_users_google_id" json:"google_id"`
	Email     string    `gorm:"size:255;not null" json:"email"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	AvatarURL *string   `gorm:"type:text" json:"avatar_url"`
	LastLogin time.Time `gorm:"not null" json:"last_login"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	now := utils.UTCNow()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.LastLogin.IsZero() {
		u.LastLogin = now
	}
	return nil
}
