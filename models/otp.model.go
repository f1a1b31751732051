package models

import (
	"time"

	"gorm.io/gorm"
)

// OTP holds a pending signup until the emailed code is verified.
type OTP struct {
	gorm.Model
	Email        string    `gorm:"size:100;uniqueIndex" json:"email"`
	Name         string    `gorm:"not null" json:"name"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Code         string    `gorm:"size:6;not null" json:"-"`
	ExpiresAt    time.Time `gorm:"not null;index" json:"expires_at"`
}

func (o *OTP) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}
