package movie

import (
	"bitwise74/movie-api/app/reply"
	"bitwise74/movie-api/internal"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func MovieDelete(c *gin.Context, d *internal.Deps) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	msg, err := d.Catalog.Delete(c.Request.Context(), id)
	if err != nil {
		reply.Error(c, err, nil)
		return
	}

	zap.L().Info("Movie deleted", zap.Uint("movieID", id), zap.String("by", c.GetString("email")))
	c.JSON(http.StatusOK, msg)
}
