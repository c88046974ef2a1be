package user

import (
	"bitwise74/movie-api/app/reply"
	"bitwise74/movie-api/internal"
	"net/http"

	"github.com/gin-gonic/gin"
)

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func UserLogin(c *gin.Context, d *internal.Deps) {
	var data loginBody
	if err := c.ShouldBindJSON(&data); err != nil {
		reply.BadRequest(c, "Invalid request body")
		return
	}

	if data.Email == "" || data.Password == "" {
		reply.BadRequest(c, "Email and password are required")
		return
	}

	res, err := d.Auth.Login(c.Request.Context(), data.Email, data.Password)
	if err != nil {
		reply.Error(c, err, nil)
		return
	}

	c.JSON(http.StatusOK, res)
}
