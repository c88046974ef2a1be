package movie

import (
	"bitwise74/movie-api/app/reply"
	"bitwise74/movie-api/internal"
	"net/http"

	"github.com/gin-gonic/gin"
)

func MovieUpdate(c *gin.Context, d *internal.Deps) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	in, poster, closer, ok := readForm(c, d, false)
	if !ok {
		return
	}
	if closer != nil {
		defer closer.Close()
	}

	dto, err := d.Catalog.Update(c.Request.Context(), id, in, poster)
	if err != nil {
		reply.Error(c, err, nil)
		return
	}

	c.JSON(http.StatusOK, dto)
}
