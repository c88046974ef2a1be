package movie

import (
	"bitwise74/movie-api/app/reply"
	"bitwise74/movie-api/internal"
	"net/http"

	"github.com/gin-gonic/gin"
)

func MovieAdd(c *gin.Context, d *internal.Deps) {
	in, poster, closer, ok := readForm(c, d, true)
	if !ok {
		return
	}
	defer closer.Close()

	dto, err := d.Catalog.Add(c.Request.Context(), in, poster)
	if err != nil {
		reply.Error(c, err, nil)
		return
	}

	c.JSON(http.StatusCreated, dto)
}
