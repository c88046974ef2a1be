package service

import (
	"bitwise74/movie-api/internal/model"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordReset_RequestOTP(t *testing.T) {
	e := newEnv(t)
	r := e.reset(true)
	ctx := context.Background()

	u := seedUser(t, e, "alice@example.com")

	require.NoError(t, r.RequestOTP(ctx, "alice@example.com"))
	require.Len(t, e.notifier.sent, 1)

	mail := e.notifier.sent[0]
	assert.Equal(t, "alice@example.com", mail.To)
	assert.Equal(t, "OTP for Forgot Password request", mail.Subject)
	assert.Equal(t, "This is the OTP for your Forgot Password request : 123456", mail.Body)

	o, err := e.otps.FindByCodeAndUser(ctx, 123456, u.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, e.clock.t.Add(70*time.Second), o.ExpiresAt, time.Second)

	err = r.RequestOTP(ctx, "bob@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	t.Run("notifier failure is reported", func(t *testing.T) {
		e.notifier.err = errors.New("smtp down")
		defer func() { e.notifier.err = nil }()

		assert.Error(t, r.RequestOTP(ctx, "alice@example.com"))
	})
}

func TestPasswordReset_VerifyOTP(t *testing.T) {
	ctx := context.Background()

	t.Run("within ttl", func(t *testing.T) {
		e := newEnv(t)
		r := e.reset(true)
		u := seedUser(t, e, "alice@example.com")

		require.NoError(t, r.RequestOTP(ctx, "alice@example.com"))
		e.clock.advance(69 * time.Second)

		ticket, err := r.VerifyOTP(ctx, 123456, "alice@example.com")
		require.NoError(t, err)
		assert.NotEmpty(t, ticket)

		// consumed
		_, err = e.otps.FindByCodeAndUser(ctx, 123456, u.ID)
		assert.Error(t, err)

		_, err = r.VerifyOTP(ctx, 123456, "alice@example.com")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("after ttl", func(t *testing.T) {
		e := newEnv(t)
		r := e.reset(true)
		u := seedUser(t, e, "alice@example.com")

		require.NoError(t, r.RequestOTP(ctx, "alice@example.com"))
		e.clock.advance(71 * time.Second)

		_, err := r.VerifyOTP(ctx, 123456, "alice@example.com")
		assert.ErrorIs(t, err, ErrExpired)
		assert.Equal(t, "OTP has expired!", err.Error())

		_, err = e.otps.FindByCodeAndUser(ctx, 123456, u.ID)
		assert.Error(t, err)
	})

	t.Run("unknown code or email", func(t *testing.T) {
		e := newEnv(t)
		r := e.reset(true)
		seedUser(t, e, "alice@example.com")

		_, err := r.VerifyOTP(ctx, 654321, "alice@example.com")
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = r.VerifyOTP(ctx, 123456, "bob@example.com")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestPasswordReset_ChangePassword(t *testing.T) {
	ctx := context.Background()

	verified := func(t *testing.T, e *testEnv, r *PasswordReset) string {
		t.Helper()

		require.NoError(t, r.RequestOTP(ctx, "alice@example.com"))
		ticket, err := r.VerifyOTP(ctx, 123456, "alice@example.com")
		require.NoError(t, err)

		return ticket
	}

	t.Run("mismatch is checked first", func(t *testing.T) {
		e := newEnv(t)
		r := e.reset(true)

		err := r.ChangePassword(ctx, ChangePasswordInput{Email: "nobody@example.com", Password: "a", RepeatPassword: "b"})
		assert.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, "Please enter the password again!", err.Error())
	})

	t.Run("weak password", func(t *testing.T) {
		e := newEnv(t)
		r := e.reset(true)

		err := r.ChangePassword(ctx, ChangePasswordInput{Email: "alice@example.com", Password: "a", RepeatPassword: "a"})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("with ticket", func(t *testing.T) {
		e := newEnv(t)
		r := e.reset(true)
		seedUser(t, e, "alice@example.com")

		ticket := verified(t, e, r)

		in := ChangePasswordInput{
			Email:          "alice@example.com",
			Password:       "new-password",
			RepeatPassword: "new-password",
			ResetToken:     ticket,
		}
		require.NoError(t, r.ChangePassword(ctx, in))

		u, err := e.users.FindByEmail(ctx, "alice@example.com")
		require.NoError(t, err)

		ok, err := e.hasher.VerifyPasswd("new-password", u.PasswordHash)
		require.NoError(t, err)
		assert.True(t, ok)

		// single use
		err = r.ChangePassword(ctx, in)
		assert.ErrorIs(t, err, ErrExpired)
	})

	t.Run("missing or foreign ticket", func(t *testing.T) {
		e := newEnv(t)
		r := e.reset(true)
		seedUser(t, e, "alice@example.com")
		seedUser(t, e, "bob@example.com")

		ticket := verified(t, e, r)

		err := r.ChangePassword(ctx, ChangePasswordInput{Email: "alice@example.com", Password: "new-password", RepeatPassword: "new-password"})
		assert.ErrorIs(t, err, ErrValidation)

		err = r.ChangePassword(ctx, ChangePasswordInput{
			Email:          "bob@example.com",
			Password:       "new-password",
			RepeatPassword: "new-password",
			ResetToken:     ticket,
		})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("expired ticket", func(t *testing.T) {
		e := newEnv(t)
		r := e.reset(true)
		seedUser(t, e, "alice@example.com")

		ticket := verified(t, e, r)
		e.clock.advance(11 * time.Minute)

		err := r.ChangePassword(ctx, ChangePasswordInput{
			Email:          "alice@example.com",
			Password:       "new-password",
			RepeatPassword: "new-password",
			ResetToken:     ticket,
		})
		assert.ErrorIs(t, err, ErrExpired)
	})

	t.Run("without ticket requirement", func(t *testing.T) {
		e := newEnv(t)
		r := e.reset(false)
		seedUser(t, e, "alice@example.com")

		require.NoError(t, r.ChangePassword(ctx, ChangePasswordInput{
			Email:          "alice@example.com",
			Password:       "new-password",
			RepeatPassword: "new-password",
		}))

		err := r.ChangePassword(ctx, ChangePasswordInput{
			Email:          "bob@example.com",
			Password:       "new-password",
			RepeatPassword: "new-password",
		})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestTokenCleanup_Sweep(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := seedUser(t, e, "alice@example.com")

	now := e.clock.t
	for i, exp := range []time.Time{now.Add(-time.Minute), now.Add(time.Hour)} {
		require.NoError(t, e.tickets.Create(ctx, &model.VerificationToken{
			UserID:    u.ID,
			Token:     []string{"stale", "live"}[i],
			Purpose:   model.PurposePasswordReset,
			ExpiresAt: exp,
		}))
	}

	sweepTokens(ctx, e.tickets, now)

	_, err := e.tickets.Find(ctx, u.ID, "stale", model.PurposePasswordReset)
	assert.Error(t, err)

	_, err = e.tickets.Find(ctx, u.ID, "live", model.PurposePasswordReset)
	assert.NoError(t, err)
}
