package service

import (
	"bitwise74/movie-api/internal/model"
	"bitwise74/movie-api/internal/store"
	"bitwise74/movie-api/pkg/security"
	"bitwise74/movie-api/pkg/util"
	"bitwise74/movie-api/pkg/validators"
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	otpMailSubject = "OTP for Forgot Password request"
	otpMailBody    = "This is the OTP for your Forgot Password request : %d"
)

type ResetOptions struct {
	OTPTTL    time.Duration // how long a mailed passcode stays valid
	TicketTTL time.Duration // how long the ticket returned by VerifyOTP stays valid

	// RequireTicket makes ChangePassword demand the ticket handed out by
	// VerifyOTP. Without it any caller knowing an email can reset it.
	RequireTicket bool
}

type ChangePasswordInput struct {
	Email          string
	Password       string
	RepeatPassword string
	ResetToken     string
}

// PasswordReset drives the forgot password flow: mail a passcode, verify
// it, then set the new password.
type PasswordReset struct {
	users    UserStore
	otps     OTPStore
	tickets  VerificationTokenStore
	notifier Notifier
	hasher   PasswordHasher
	opts     ResetOptions

	now    func() time.Time
	genOTP func() (int, error)
}

func NewPasswordReset(users UserStore, otps OTPStore, tickets VerificationTokenStore, n Notifier, h PasswordHasher, o ResetOptions) *PasswordReset {
	return &PasswordReset{
		users:    users,
		otps:     otps,
		tickets:  tickets,
		notifier: n,
		hasher:   h,
		opts:     o,
		now:      utcNow,
		genOTP:   util.GenerateOTP,
	}
}

func (r *PasswordReset) findUser(ctx context.Context, email string) (*model.User, error) {
	u, err := r.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, newError(ErrNotFound, "Please provide an valid email!")
		}

		return nil, fmt.Errorf("failed to look up user, %w", err)
	}

	return u, nil
}

// RequestOTP stores a fresh passcode for email and mails it. Older pending
// passcodes stay valid until they expire.
func (r *PasswordReset) RequestOTP(ctx context.Context, email string) error {
	u, err := r.findUser(ctx, email)
	if err != nil {
		return err
	}

	code, err := r.genOTP()
	if err != nil {
		return fmt.Errorf("failed to generate otp, %w", err)
	}

	err = r.otps.Create(ctx, &model.OTP{
		Code:      code,
		ExpiresAt: r.now().Add(r.opts.OTPTTL),
		UserID:    u.ID,
	})
	if err != nil {
		return fmt.Errorf("failed to store otp, %w", err)
	}

	if err := r.notifier.Send(ctx, email, otpMailSubject, fmt.Sprintf(otpMailBody, code)); err != nil {
		return fmt.Errorf("failed to send otp mail, %w", err)
	}

	return nil
}

// VerifyOTP checks code against the passcodes of email. A matching passcode
// is consumed and exchanged for a single use reset ticket. An expired one
// is deleted and reported as ErrExpired.
func (r *PasswordReset) VerifyOTP(ctx context.Context, code int, email string) (string, error) {
	u, err := r.findUser(ctx, email)
	if err != nil {
		return "", err
	}

	o, err := r.otps.FindByCodeAndUser(ctx, code, u.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", newError(ErrNotFound, "Invalid OTP for email: %s", email)
		}

		return "", fmt.Errorf("failed to look up otp, %w", err)
	}

	if err := r.otps.DeleteByID(ctx, o.ID); err != nil {
		return "", fmt.Errorf("failed to delete otp, %w", err)
	}

	now := r.now()
	if o.Expired(now) {
		return "", newError(ErrExpired, "OTP has expired!")
	}

	ticket, err := security.MakeVerificationToken(&security.VerificationTokenOpts{
		UserID:    u.ID,
		Purpose:   model.PurposePasswordReset,
		ExpiresAt: now.Add(r.opts.TicketTTL),
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate reset ticket, %w", err)
	}

	if err := r.tickets.Create(ctx, ticket); err != nil {
		return "", fmt.Errorf("failed to store reset ticket, %w", err)
	}

	return ticket.Token, nil
}

// ChangePassword sets a new password for in.Email. Mismatching passwords
// are rejected before anything else is looked at.
func (r *PasswordReset) ChangePassword(ctx context.Context, in ChangePasswordInput) error {
	if in.Password != in.RepeatPassword {
		return newError(ErrValidation, "Please enter the password again!")
	}

	if err := validators.PasswordValidator(in.Password); err != nil {
		return newError(ErrValidation, "%s", err.Error())
	}

	hash, err := r.hasher.GenerateFromPassword(in.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password, %w", err)
	}

	if !r.opts.RequireTicket {
		if err := r.users.UpdatePassword(ctx, in.Email, hash); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return newError(ErrNotFound, "Please provide an valid email!")
			}

			return fmt.Errorf("failed to update password, %w", err)
		}

		return nil
	}

	if in.ResetToken == "" {
		return newError(ErrValidation, "No reset token provided. Verify the OTP first")
	}

	u, err := r.findUser(ctx, in.Email)
	if err != nil {
		return err
	}

	ticket, err := r.tickets.Find(ctx, u.ID, in.ResetToken, model.PurposePasswordReset)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return newError(ErrNotFound, "Reset token invalid")
		}

		return fmt.Errorf("failed to look up reset ticket, %w", err)
	}

	now := r.now()
	if ticket.Used {
		return newError(ErrExpired, "Reset token was used already")
	}

	if ticket.ExpiresAt.Before(now) {
		return newError(ErrExpired, "Reset token expired")
	}

	if err := r.tickets.ConsumeAndSetPassword(ctx, ticket, hash, now); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return newError(ErrExpired, "Reset token was used already")
		}

		return fmt.Errorf("failed to update password, %w", err)
	}

	zap.L().Info("Password changed through reset flow", zap.Uint("userID", u.ID))
	return nil
}
