// Package reply turns service errors into JSON error responses
package reply

import (
	"bitwise74/movie-api/internal/service"
	"bitwise74/movie-api/pkg/middleware"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Statuses overrides the default status of an error kind
type Statuses map[error]int

var defaults = []struct {
	kind   error
	status int
}{
	{service.ErrNotFound, http.StatusNotFound},
	{service.ErrExpired, http.StatusUnauthorized},
	{service.ErrConflict, http.StatusConflict},
	{service.ErrValidation, http.StatusBadRequest},
	{service.ErrUnauthorized, http.StatusUnauthorized},
}

// Status picks the HTTP status for err, 500 for anything unknown
func Status(err error, overrides Statuses) int {
	for _, d := range defaults {
		if !errors.Is(err, d.kind) {
			continue
		}

		if s, ok := overrides[d.kind]; ok {
			return s
		}

		return d.status
	}

	return http.StatusInternalServerError
}

// Error writes err as {"error", "requestID"}. Internal errors are logged
// and hidden from the client.
func Error(c *gin.Context, err error, overrides Statuses) {
	requestID := middleware.RequestID(c)
	status := Status(err, overrides)

	msg := err.Error()
	if status == http.StatusInternalServerError {
		zap.L().Error("Request failed", zap.Error(err), zap.String("requestID", requestID))
		msg = "Internal server error"
	}

	c.AbortWithStatusJSON(status, gin.H{
		"error":     msg,
		"requestID": requestID,
	})
}

// Abort writes msg with an explicit status
func Abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":     msg,
		"requestID": middleware.RequestID(c),
	})
}

// BadRequest is a shortcut for malformed input caught before any service
// is called
func BadRequest(c *gin.Context, msg string) {
	Abort(c, http.StatusBadRequest, msg)
}
