// Package db opens the gorm connection used by every store
package db

import (
	"bitwise74/movie-api/internal/model"
	"bitwise74/movie-api/pkg/util"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Options struct {
	Driver string // sqlite or postgres
	DSN    string
}

// New opens the database described by o and migrates every model
func New(o Options) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch o.Driver {
	case "sqlite", "":
		if o.DSN == "" {
			o.DSN = "database.db"
		}

		// If running in a docker container don't allow the sqlite file to be created.
		// The host should instead mount it using volumes
		if util.IsRunningInDocker() && !strings.Contains(o.DSN, "mode=memory") {
			if _, err := os.Stat(o.DSN); errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("SQLite database file not mounted, please use docker volumes to mount it to /app/%s", o.DSN)
			}
		}

		dialector = sqlite.Open(o.DSN)
	case "postgres":
		if o.DSN == "" {
			return nil, errors.New("db.dsn can't be empty when using postgres")
		}

		dialector = postgres.Open(o.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", o.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s database, %w", o.Driver, err)
	}

	err = db.AutoMigrate(
		model.User{},
		model.RefreshToken{},
		model.OTP{},
		model.VerificationToken{},
		model.Movie{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to automigrate tables, %w", err)
	}

	return db, nil
}
