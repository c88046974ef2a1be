package model

import "time"

// RefreshToken is the long lived opaque credential of a user. The unique
// index on UserID keeps it at one row per user.
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Token     string    `gorm:"uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	UserID    uint      `gorm:"uniqueIndex;not null"`
}

func (t *RefreshToken) Expired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}
