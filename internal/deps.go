// Package internal wires the services shared by every handler
package internal

import (
	"bitwise74/movie-api/internal/service"
	"bitwise74/movie-api/internal/storage"

	"gorm.io/gorm"
)

type Deps struct {
	DB      *gorm.DB
	Posters storage.PosterStore
	Tokens  *service.TokenIssuer
	Auth    *service.AuthService
	Reset   *service.PasswordReset
	Catalog *service.Catalog

	// MaxUploadSize is the poster size limit in bytes
	MaxUploadSize int64
	RateLimit     int
	CORSOrigins   []string
}
