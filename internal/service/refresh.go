package service

import (
	"bitwise74/movie-api/internal/model"
	"bitwise74/movie-api/internal/store"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RefreshManager hands out the single refresh token each user owns
type RefreshManager struct {
	users  UserStore
	tokens RefreshTokenStore
	ttl    time.Duration
	now    func() time.Time
}

func NewRefreshManager(users UserStore, tokens RefreshTokenStore, ttl time.Duration) *RefreshManager {
	return &RefreshManager{
		users:  users,
		tokens: tokens,
		ttl:    ttl,
		now:    utcNow,
	}
}

// GetOrCreate returns the user's live refresh token, minting one if the
// user has none. An expired token is replaced instead of being handed out.
func (m *RefreshManager) GetOrCreate(ctx context.Context, email string) (*model.RefreshToken, error) {
	user, err := m.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, newError(ErrNotFound, "User not found with email %s", email)
		}

		return nil, fmt.Errorf("failed to look up user, %w", err)
	}

	existing, err := m.tokens.FindByUserID(ctx, user.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up refresh token, %w", err)
	}

	now := m.now()
	if existing != nil && !existing.Expired(now) {
		return existing, nil
	}

	fresh := &model.RefreshToken{
		Token:     uuid.NewString(),
		ExpiresAt: now.Add(m.ttl),
		UserID:    user.ID,
	}

	var stored *model.RefreshToken
	if existing != nil {
		zap.L().Debug("Replacing expired refresh token", zap.Uint("userID", user.ID))
		stored, err = m.tokens.Replace(ctx, existing, fresh)
	} else {
		stored, err = m.tokens.CreateIfAbsent(ctx, fresh)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to store refresh token, %w", err)
	}

	return stored, nil
}

// Verify looks token up and rejects it when expired. Expired tokens are
// deleted, so presenting one twice gives NotFound the second time.
func (m *RefreshManager) Verify(ctx context.Context, token string) (*model.RefreshToken, error) {
	t, err := m.tokens.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, newError(ErrNotFound, "Refresh token not found")
		}

		return nil, fmt.Errorf("failed to look up refresh token, %w", err)
	}

	if t.Expired(m.now()) {
		if err := m.tokens.Delete(ctx, t); err != nil {
			return nil, fmt.Errorf("failed to delete expired refresh token, %w", err)
		}

		return nil, newError(ErrExpired, "Refresh Token expired")
	}

	return t, nil
}
