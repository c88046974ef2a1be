// Package file serves stored poster files
package file

import (
	"bitwise74/movie-api/app/reply"
	"bitwise74/movie-api/internal"
	"bitwise74/movie-api/internal/storage"
	"bitwise74/movie-api/pkg/validators"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

func FileServe(c *gin.Context, d *internal.Deps) {
	name := c.Param("name")
	if err := validators.PosterNameValidator(name); err != nil {
		reply.BadRequest(c, err.Error())
		return
	}

	obj, err := d.Posters.Open(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			reply.Abort(c, http.StatusNotFound, "File not found")
			return
		}

		reply.Error(c, err, nil)
		return
	}
	defer obj.Body.Close()

	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.DataFromReader(http.StatusOK, obj.Size, obj.ContentType, obj.Body, nil)
}
