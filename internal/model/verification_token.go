package model

import "time"

const PurposePasswordReset = "password_reset"

type VerificationToken struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	UserID    uint   `gorm:"index"`
	Token     string `gorm:"uniqueIndex"`
	Purpose   string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
	Used      bool
}
