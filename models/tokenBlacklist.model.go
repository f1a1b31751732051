package models

import "time"

// TokenBlacklist stores revoked bearer tokens (as sha256 hex) until they would have expired anyway.
type TokenBlacklist struct {
	ID        uint      `gorm:"primarykey"`
	TokenHash string    `gorm:"size:64;uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time
}
