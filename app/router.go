// Package app builds the HTTP router and every dependency behind it
package app

import (
	"bitwise74/movie-api/app/file"
	"bitwise74/movie-api/app/movie"
	"bitwise74/movie-api/app/password"
	"bitwise74/movie-api/app/root"
	"bitwise74/movie-api/app/user"
	"bitwise74/movie-api/internal"
	"bitwise74/movie-api/internal/model"
	"bitwise74/movie-api/pkg/middleware"
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// JSON bodies outside of poster uploads are tiny
const maxJSONBody = 1 << 20

// NewRouter registers every route on a fresh engine. Background sweeps
// started by the middleware stop with ctx.
func NewRouter(ctx context.Context, d *internal.Deps) *gin.Engine {
	router := gin.New()

	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		ginzap.RecoveryWithZap(zap.L(), true),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == http.MethodHead
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := middleware.RequestID(c); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("email"); v != "" {
					fields = append(fields, zap.String("email", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true
	router.MaxMultipartMemory = 5 << 20

	rateLimiter := middleware.RateLimiterMiddleware(ctx, middleware.RateLimiterConfig{
		RequestsPerSecond: d.RateLimit,
		Burst:             d.RateLimit * 2,
	})
	jwt := middleware.NewJWTMiddleware(d.Tokens)
	admin := middleware.RequireRole(model.RoleAdmin)
	jsonBody := middleware.BodySizeLimiter(maxJSONBody)
	uploadBody := middleware.BodySizeLimiter(d.MaxUploadSize + maxJSONBody)

	main := router.Group("/api", rateLimiter)
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		main.HEAD("/heartbeat", func(c *gin.Context) { root.Heartbeat(c, d) })
	}

	auth := main.Group("/v1/auth", jsonBody)
	{
		// POST /api/v1/auth/register	-> Registers a new user and logs them in
		auth.POST("/register", func(c *gin.Context) { user.UserRegister(c, d) })

		// POST /api/v1/auth/login	-> Returns an access and a refresh token
		auth.POST("/login", func(c *gin.Context) { user.UserLogin(c, d) })

		// POST /api/v1/auth/refresh	-> Exchanges a refresh token for a new access token
		auth.POST("/refresh", func(c *gin.Context) { user.UserRefresh(c, d) })
	}

	movies := main.Group("/v1/movies", jwt)
	{
		// GET /api/v1/movies		-> Lists movies, paged when pageNumber or pageSize is set
		movies.GET("", func(c *gin.Context) { movie.MovieFetchAll(c, d) })

		// GET /api/v1/movies/:id	-> Returns a single movie
		movies.GET("/:id", func(c *gin.Context) { movie.MovieFetch(c, d) })

		// POST /api/v1/movies		-> Adds a movie with its poster
		movies.POST("", admin, uploadBody, func(c *gin.Context) { movie.MovieAdd(c, d) })

		// PUT /api/v1/movies/:id	-> Updates a movie, optionally swapping the poster
		movies.PUT("/:id", admin, uploadBody, func(c *gin.Context) { movie.MovieUpdate(c, d) })

		// DELETE /api/v1/movies/:id	-> Deletes a movie and its poster
		movies.DELETE("/:id", admin, func(c *gin.Context) { movie.MovieDelete(c, d) })
	}

	forgot := router.Group("/forgotPassword", rateLimiter, jsonBody)
	{
		// POST /forgotPassword/verifyMail/:email		-> Mails a one time passcode
		forgot.POST("/verifyMail/:email", func(c *gin.Context) { password.VerifyMail(c, d) })

		// POST /forgotPassword/verifyOtp/:otp/:email		-> Checks the passcode
		forgot.POST("/verifyOtp/:otp/:email", func(c *gin.Context) { password.VerifyOTP(c, d) })

		// POST /forgotPassword/changePassword/:email		-> Sets a new password
		forgot.POST("/changePassword/:email", func(c *gin.Context) { password.ChangePassword(c, d) })
	}

	// GET /file/:name	-> Serves a poster
	router.GET("/file/:name", func(c *gin.Context) { file.FileServe(c, d) })

	return router
}
