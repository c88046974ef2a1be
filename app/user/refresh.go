package user

import (
	"bitwise74/movie-api/app/reply"
	"bitwise74/movie-api/internal"
	"net/http"

	"github.com/gin-gonic/gin"
)

type refreshBody struct {
	RefreshToken string `json:"refreshToken"`
}

func UserRefresh(c *gin.Context, d *internal.Deps) {
	var data refreshBody
	if err := c.ShouldBindJSON(&data); err != nil || data.RefreshToken == "" {
		reply.BadRequest(c, "No refresh token provided")
		return
	}

	res, err := d.Auth.Refresh(c.Request.Context(), data.RefreshToken)
	if err != nil {
		reply.Error(c, err, nil)
		return
	}

	c.JSON(http.StatusOK, res)
}
