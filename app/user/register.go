// Package user contains the account endpoints
package user

import (
	"bitwise74/movie-api/app/reply"
	"bitwise74/movie-api/internal"
	"bitwise74/movie-api/internal/service"
	"bitwise74/movie-api/pkg/middleware"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func UserRegister(c *gin.Context, d *internal.Deps) {
	var data service.RegisterInput
	if err := c.ShouldBindJSON(&data); err != nil {
		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", middleware.RequestID(c)))
		reply.BadRequest(c, "Invalid request body")
		return
	}

	res, err := d.Auth.Register(c.Request.Context(), data)
	if err != nil {
		reply.Error(c, err, nil)
		return
	}

	c.JSON(http.StatusOK, res)
}
