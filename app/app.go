package app

import (
	"bitwise74/movie-api/db"
	"bitwise74/movie-api/internal"
	"bitwise74/movie-api/internal/service"
	"bitwise74/movie-api/internal/storage"
	"bitwise74/movie-api/internal/store"
	"bitwise74/movie-api/pkg/security"
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type App struct {
	Router *gin.Engine
	Deps   *internal.Deps

	closers []func()
}

// New builds every dependency from the loaded configuration, seeds the
// admin account and starts the background workers. Cancelling ctx stops
// the workers.
func New(ctx context.Context) (*App, error) {
	a := &App{}

	gdb, err := db.New(db.Options{
		Driver: viper.GetString("db.driver"),
		DSN:    viper.GetString("db.dsn"),
	})
	if err != nil {
		return nil, err
	}

	posters, err := storage.New(ctx, storage.Options{
		Type:      viper.GetString("storage.type"),
		PosterDir: viper.GetString("storage.poster_dir"),
		S3: storage.S3Options{
			AccessKey:       viper.GetString("aws.access_key"),
			SecretAccessKey: viper.GetString("aws.secret_access_key"),
			Region:          viper.GetString("aws.region"),
			Bucket:          viper.GetString("aws.bucket"),
			Endpoint:        viper.GetString("aws.endpoint"),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize poster storage, %w", err)
	}

	notifier, err := a.notifier()
	if err != nil {
		return nil, err
	}

	users := store.NewUsers(gdb)
	tickets := store.NewVerificationTokens(gdb)
	argon := security.New()

	issuer := service.NewTokenIssuer([]byte(viper.GetString("jwt.secret")), viper.GetDuration("jwt.access_ttl"))
	refresh := service.NewRefreshManager(users, store.NewRefreshTokens(gdb), viper.GetDuration("jwt.refresh_ttl"))

	d := &internal.Deps{
		DB:      gdb,
		Posters: posters,
		Tokens:  issuer,
		Auth:    service.NewAuthService(users, argon, issuer, refresh),
		Reset: service.NewPasswordReset(users, store.NewOTPs(gdb), tickets, notifier, argon, service.ResetOptions{
			OTPTTL:        viper.GetDuration("otp.ttl"),
			TicketTTL:     viper.GetDuration("otp.reset_ttl"),
			RequireTicket: viper.GetBool("otp.require_reset_token"),
		}),
		Catalog:       service.NewCatalog(store.NewMovies(gdb), posters, viper.GetString("host.base_url")),
		MaxUploadSize: viper.GetInt64("upload.max_size"),
		RateLimit:     viper.GetInt("security.rate_limit"),
		CORSOrigins:   splitList(viper.GetString("host.cors")),
	}

	if err := d.Auth.SeedAdmin(ctx, viper.GetString("admin.email"), viper.GetString("admin.password")); err != nil {
		return nil, fmt.Errorf("failed to seed admin account, %w", err)
	}

	// Used tickets pile up slowly, a daily sweep is plenty
	service.TokenCleanup(ctx, viper.GetDuration("otp.cleanup_interval"), tickets)

	a.Deps = d
	a.Router = NewRouter(ctx, d)

	return a, nil
}

// notifier picks how forgot password mail is delivered
func (a *App) notifier() (service.Notifier, error) {
	if !viper.GetBool("mail.enabled") {
		zap.L().Warn("Mail is disabled, passcodes will only be logged")
		return service.LogNotifier{}, nil
	}

	smtp := service.NewSMTPNotifier(service.MailOptions{
		Host:     viper.GetString("mail.host"),
		Port:     viper.GetInt("mail.port"),
		Sender:   viper.GetString("mail.sender"),
		Password: viper.GetString("mail.password"),
	})

	if viper.GetString("mail.queue") != "redis" {
		return smtp, nil
	}

	addr := viper.GetString("redis.addr")

	worker := service.NewMailWorker(addr, smtp)
	if err := worker.Start(); err != nil {
		return nil, fmt.Errorf("failed to start mail worker, %w", err)
	}

	q := service.NewQueueNotifier(addr)
	a.closers = append(a.closers, worker.Shutdown, func() { q.Close() })

	return q, nil
}

// Close stops the mail worker and closes the database
func (a *App) Close() {
	for _, c := range a.closers {
		c()
	}

	if a.Deps != nil {
		if sqlDB, err := a.Deps.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}
}

func splitList(s string) []string {
	var out []string

	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}
