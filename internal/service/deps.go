// Package service implements the authentication, password reset and movie
// catalog logic on top of the interfaces below.
package service

import (
	"bitwise74/movie-api/internal/model"
	"context"
	"time"
)

type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id uint) (*model.User, error)
	Create(ctx context.Context, u *model.User) error
	UpdatePassword(ctx context.Context, email, hash string) error
}

type RefreshTokenStore interface {
	FindByToken(ctx context.Context, token string) (*model.RefreshToken, error)
	FindByUserID(ctx context.Context, userID uint) (*model.RefreshToken, error)
	CreateIfAbsent(ctx context.Context, t *model.RefreshToken) (*model.RefreshToken, error)
	Replace(ctx context.Context, old, t *model.RefreshToken) (*model.RefreshToken, error)
	Delete(ctx context.Context, t *model.RefreshToken) error
}

type OTPStore interface {
	Create(ctx context.Context, o *model.OTP) error
	FindByCodeAndUser(ctx context.Context, code int, userID uint) (*model.OTP, error)
	DeleteByID(ctx context.Context, id uint) error
}

type VerificationTokenStore interface {
	Create(ctx context.Context, t *model.VerificationToken) error
	Find(ctx context.Context, userID uint, token, purpose string) (*model.VerificationToken, error)
	ConsumeAndSetPassword(ctx context.Context, t *model.VerificationToken, hash string, now time.Time) error
	DeleteStale(ctx context.Context, now time.Time) (int64, error)
}

type MovieStore interface {
	Find(ctx context.Context, id uint) (*model.Movie, error)
	FindAll(ctx context.Context) ([]model.Movie, error)
	Page(ctx context.Context, offset, limit int, order string) ([]model.Movie, int64, error)
	Create(ctx context.Context, m *model.Movie) error
	Save(ctx context.Context, m *model.Movie) error
	Delete(ctx context.Context, id uint) error
}

type PasswordHasher interface {
	GenerateFromPassword(p string) (string, error)
	VerifyPasswd(p, encoded string) (bool, error)
}

// Notifier delivers a plain text message. Failures are reported to the
// caller once, nothing retries them.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Stored timestamps are compared as strings by SQLite, keep them all in UTC
func utcNow() time.Time { return time.Now().UTC() }
