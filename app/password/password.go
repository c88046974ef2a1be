// Package password contains the forgot password endpoints
package password

import (
	"bitwise74/movie-api/app/reply"
	"bitwise74/movie-api/internal"
	"bitwise74/movie-api/internal/service"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Rejections in the reset flow are answered with 417
var resetStatuses = reply.Statuses{
	service.ErrExpired:    http.StatusExpectationFailed,
	service.ErrValidation: http.StatusExpectationFailed,
}

// VerifyMail mails a one time passcode to :email
func VerifyMail(c *gin.Context, d *internal.Deps) {
	if err := d.Reset.RequestOTP(c.Request.Context(), c.Param("email")); err != nil {
		reply.Error(c, err, resetStatuses)
		return
	}

	c.JSON(http.StatusOK, "Email sent for verification!")
}

// VerifyOTP checks :otp for :email and hands out a reset token
func VerifyOTP(c *gin.Context, d *internal.Deps) {
	code, err := strconv.Atoi(c.Param("otp"))
	if err != nil {
		reply.BadRequest(c, "OTP must be a number")
		return
	}

	ticket, err := d.Reset.VerifyOTP(c.Request.Context(), code, c.Param("email"))
	if err != nil {
		reply.Error(c, err, resetStatuses)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "OTP verify",
		"resetToken": ticket,
	})
}

type changeBody struct {
	Password       string `json:"password"`
	RepeatPassword string `json:"repeatPassword"`
	ResetToken     string `json:"resetToken"`
}

func ChangePassword(c *gin.Context, d *internal.Deps) {
	var data changeBody
	if err := c.ShouldBindJSON(&data); err != nil {
		reply.BadRequest(c, "Invalid request body")
		return
	}

	err := d.Reset.ChangePassword(c.Request.Context(), service.ChangePasswordInput{
		Email:          c.Param("email"),
		Password:       data.Password,
		RepeatPassword: data.RepeatPassword,
		ResetToken:     data.ResetToken,
	})
	if err != nil {
		reply.Error(c, err, resetStatuses)
		return
	}

	c.JSON(http.StatusOK, "Password has been changed!")
}
