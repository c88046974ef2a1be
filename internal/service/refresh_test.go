package service

import (
	"bitwise74/movie-api/internal/model"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, e *testEnv, email string) *model.User {
	t.Helper()

	u := &model.User{Email: email, Name: "Alice", Username: "alice", PasswordHash: "x", Role: model.RoleUser}
	require.NoError(t, e.users.Create(context.Background(), u))

	return u
}

func TestRefreshManager_GetOrCreate(t *testing.T) {
	e := newEnv(t)
	m := e.refreshManager(50 * time.Hour)
	ctx := context.Background()

	seedUser(t, e, "alice@example.com")

	first, err := m.GetOrCreate(ctx, "alice@example.com")
	require.NoError(t, err)

	second, err := m.GetOrCreate(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.Token, second.Token)
	assert.WithinDuration(t, e.clock.t.Add(50*time.Hour), first.ExpiresAt, time.Second)

	_, err = m.GetOrCreate(ctx, "bob@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	t.Run("expired token is replaced", func(t *testing.T) {
		e.clock.advance(51 * time.Hour)

		fresh, err := m.GetOrCreate(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.NotEqual(t, first.Token, fresh.Token)
		assert.True(t, fresh.ExpiresAt.After(e.clock.t))

		_, err = e.tokens.FindByToken(ctx, first.Token)
		assert.Error(t, err)
	})
}

func TestRefreshManager_ConcurrentLogins(t *testing.T) {
	e := newEnv(t)
	m := e.refreshManager(time.Hour)

	seedUser(t, e, "alice@example.com")

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		values = map[string]struct{}{}
	)

	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()

			rt, err := m.GetOrCreate(context.Background(), "alice@example.com")
			if !assert.NoError(t, err) {
				return
			}

			mu.Lock()
			values[rt.Token] = struct{}{}
			mu.Unlock()
		}()
	}

	wg.Wait()
	assert.Len(t, values, 1)
}

func TestRefreshManager_Verify(t *testing.T) {
	e := newEnv(t)
	m := e.refreshManager(time.Hour)
	ctx := context.Background()

	seedUser(t, e, "alice@example.com")

	rt, err := m.GetOrCreate(ctx, "alice@example.com")
	require.NoError(t, err)

	got, err := m.Verify(ctx, rt.Token)
	require.NoError(t, err)
	assert.Equal(t, rt.UserID, got.UserID)

	_, err = m.Verify(ctx, "unknown")
	assert.ErrorIs(t, err, ErrNotFound)

	e.clock.advance(2 * time.Hour)

	_, err = m.Verify(ctx, rt.Token)
	assert.ErrorIs(t, err, ErrExpired)

	_, err = m.Verify(ctx, rt.Token)
	assert.ErrorIs(t, err, ErrNotFound)
}
