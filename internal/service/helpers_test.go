package service

import (
	"bitwise74/movie-api/internal/store"
	"bitwise74/movie-api/internal/testutil"
	"bitwise74/movie-api/pkg/security"
	"context"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"
)

type sentMail struct {
	To, Subject, Body string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeNotifier) Send(_ context.Context, to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}

	f.sent = append(f.sent, sentMail{to, subject, body})
	return nil
}

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

type testEnv struct {
	db       *gorm.DB
	users    *store.Users
	tokens   *store.RefreshTokens
	otps     *store.OTPs
	tickets  *store.VerificationTokens
	movies   *store.Movies
	hasher   *security.ArgonHash
	notifier *fakeNotifier
	clock    *clock
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)

	return &testEnv{
		db:      db,
		users:   store.NewUsers(db),
		tokens:  store.NewRefreshTokens(db),
		otps:    store.NewOTPs(db),
		tickets: store.NewVerificationTokens(db),
		movies:  store.NewMovies(db),
		hasher: &security.ArgonHash{
			Memory:      1024,
			Iterations:  1,
			Parallelism: 1,
			SaltLength:  16,
			KeyLength:   32,
		},
		notifier: &fakeNotifier{},
		clock:    &clock{t: time.Now().UTC().Truncate(time.Second)},
	}
}

func (e *testEnv) refreshManager(ttl time.Duration) *RefreshManager {
	m := NewRefreshManager(e.users, e.tokens, ttl)
	m.now = e.clock.now
	return m
}

func (e *testEnv) auth() *AuthService {
	i := NewTokenIssuer([]byte("test-secret"), time.Hour)
	i.now = e.clock.now

	return NewAuthService(e.users, e.hasher, i, e.refreshManager(50*time.Hour))
}

func (e *testEnv) reset(requireTicket bool) *PasswordReset {
	r := NewPasswordReset(e.users, e.otps, e.tickets, e.notifier, e.hasher, ResetOptions{
		OTPTTL:        70 * time.Second,
		TicketTTL:     10 * time.Minute,
		RequireTicket: requireTicket,
	})
	r.now = e.clock.now
	r.genOTP = func() (int, error) { return 123456, nil }

	return r
}
