package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User model. Email is the login key; username is display-only.
// Timestamps and the password hash are never serialized: API consumers get the
// reduced view {id, email, username} everywhere a user is nested.
type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt      time.Time `json:"-"`
	UpdatedAt      time.Time `json:"-"`
	Email          string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Username       string    `gorm:"size:255" json:"username"`
	HashedPassword []byte    `gorm:"not null" json:"-"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
