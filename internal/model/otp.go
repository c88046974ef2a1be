package model

import "time"

// OTP is a forgot password passcode. Several may exist per user at once,
// lookups always go through (code, user).
type OTP struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Code      int       `gorm:"index:idx_otp_code_user;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	UserID    uint      `gorm:"index:idx_otp_code_user;not null"`
}

func (OTP) TableName() string {
	return "forgot_passwords"
}

func (o *OTP) Expired(now time.Time) bool {
	return o.ExpiresAt.Before(now)
}
