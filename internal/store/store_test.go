package store

import (
	"bitwise74/movie-api/internal/model"
	"bitwise74/movie-api/internal/testutil"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()

	u := &model.User{Email: email, Name: "Alice", Username: "alice", PasswordHash: "x", Role: model.RoleUser}
	require.NoError(t, NewUsers(db).Create(context.Background(), u))

	return u
}

func TestUsers_DuplicateEmail(t *testing.T) {
	db := testutil.NewDB(t)
	users := NewUsers(db)
	ctx := context.Background()

	createUser(t, db, "alice@example.com")

	err := users.Create(ctx, &model.User{Email: "alice@example.com", PasswordHash: "y", Role: model.RoleUser})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestUsers_FindAndUpdatePassword(t *testing.T) {
	db := testutil.NewDB(t)
	users := NewUsers(db)
	ctx := context.Background()

	u := createUser(t, db, "alice@example.com")

	found, err := users.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	_, err = users.FindByEmail(ctx, "bob@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, users.UpdatePassword(ctx, "alice@example.com", "new-hash"))
	found, err = users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", found.PasswordHash)

	assert.ErrorIs(t, users.UpdatePassword(ctx, "bob@example.com", "h"), ErrNotFound)
}

func TestRefreshTokens_CreateIfAbsentKeepsFirst(t *testing.T) {
	db := testutil.NewDB(t)
	tokens := NewRefreshTokens(db)
	ctx := context.Background()

	u := createUser(t, db, "alice@example.com")
	exp := time.Now().Add(time.Hour)

	first, err := tokens.CreateIfAbsent(ctx, &model.RefreshToken{Token: uuid.NewString(), ExpiresAt: exp, UserID: u.ID})
	require.NoError(t, err)

	second, err := tokens.CreateIfAbsent(ctx, &model.RefreshToken{Token: uuid.NewString(), ExpiresAt: exp, UserID: u.ID})
	require.NoError(t, err)

	assert.Equal(t, first.Token, second.Token)

	var count int64
	require.NoError(t, db.Model(&model.RefreshToken{}).Where("user_id = ?", u.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRefreshTokens_ConcurrentCreateConverges(t *testing.T) {
	db := testutil.NewDB(t)
	tokens := NewRefreshTokens(db)
	ctx := context.Background()

	u := createUser(t, db, "alice@example.com")

	const n = 8
	got := make([]string, n)

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()

			tok, err := tokens.CreateIfAbsent(ctx, &model.RefreshToken{
				Token:     uuid.NewString(),
				ExpiresAt: time.Now().Add(time.Hour),
				UserID:    u.ID,
			})
			if err == nil {
				got[i] = tok.Token
			}
		}()
	}
	wg.Wait()

	stored, err := tokens.FindByUserID(ctx, u.ID)
	require.NoError(t, err)

	for _, v := range got {
		if v != "" {
			assert.Equal(t, stored.Token, v)
		}
	}
}

func TestRefreshTokens_ReplaceAndDelete(t *testing.T) {
	db := testutil.NewDB(t)
	tokens := NewRefreshTokens(db)
	ctx := context.Background()

	u := createUser(t, db, "alice@example.com")

	old, err := tokens.CreateIfAbsent(ctx, &model.RefreshToken{Token: "old", ExpiresAt: time.Now(), UserID: u.ID})
	require.NoError(t, err)

	fresh, err := tokens.Replace(ctx, old, &model.RefreshToken{Token: "fresh", ExpiresAt: time.Now().Add(time.Hour), UserID: u.ID})
	require.NoError(t, err)
	assert.Equal(t, "fresh", fresh.Token)

	_, err = tokens.FindByToken(ctx, "old")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, tokens.Delete(ctx, fresh))
	_, err = tokens.FindByToken(ctx, "fresh")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOTPs_FindByCodeAndUser(t *testing.T) {
	db := testutil.NewDB(t)
	otps := NewOTPs(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice@example.com")
	bob := createUser(t, db, "bob@example.com")

	o := &model.OTP{Code: 123456, ExpiresAt: time.Now().Add(time.Minute), UserID: alice.ID}
	require.NoError(t, otps.Create(ctx, o))

	found, err := otps.FindByCodeAndUser(ctx, 123456, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, found.ID)

	_, err = otps.FindByCodeAndUser(ctx, 123456, bob.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, otps.DeleteByID(ctx, o.ID))
	_, err = otps.FindByCodeAndUser(ctx, 123456, alice.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestVerificationTokens_ConsumeOnce(t *testing.T) {
	db := testutil.NewDB(t)
	vt := NewVerificationTokens(db)
	ctx := context.Background()

	u := createUser(t, db, "alice@example.com")

	tok := &model.VerificationToken{
		UserID:    u.ID,
		Token:     "abc",
		Purpose:   model.PurposePasswordReset,
		ExpiresAt: time.Now().Add(time.Minute),
	}
	require.NoError(t, vt.Create(ctx, tok))

	found, err := vt.Find(ctx, u.ID, "abc", model.PurposePasswordReset)
	require.NoError(t, err)

	require.NoError(t, vt.ConsumeAndSetPassword(ctx, found, "new-hash", time.Now()))
	assert.ErrorIs(t, vt.ConsumeAndSetPassword(ctx, found, "other-hash", time.Now()), ErrNotFound)

	user, err := NewUsers(db).FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", user.PasswordHash)

	n, err := vt.DeleteStale(ctx, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestMovies_PageOrdering(t *testing.T) {
	db := testutil.NewDB(t)
	movies := NewMovies(db)
	ctx := context.Background()

	for i, year := range []int{2001, 1999, 2010} {
		require.NoError(t, movies.Create(ctx, &model.Movie{
			Title:       "m" + string(rune('a'+i)),
			Director:    "d",
			Studio:      "s",
			MovieCast:   model.StringSlice{"x"},
			ReleaseYear: year,
			Poster:      "p" + string(rune('a'+i)) + ".jpg",
		}))
	}

	page, total, err := movies.Page(ctx, 0, 2, "release_year asc")
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, 1999, page[0].ReleaseYear)
	assert.Equal(t, 2001, page[1].ReleaseYear)

	all, err := movies.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, movies.Delete(ctx, all[0].ID))
	assert.ErrorIs(t, movies.Delete(ctx, all[0].ID), ErrNotFound)

	_, err = movies.Find(ctx, all[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
