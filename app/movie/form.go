// Package movie contains the movie catalog endpoints
package movie

import (
	"bitwise74/movie-api/app/reply"
	"bitwise74/movie-api/internal"
	"bitwise74/movie-api/internal/service"
	"bitwise74/movie-api/pkg/middleware"
	"bitwise74/movie-api/pkg/validators"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		reply.BadRequest(c, "Invalid movie id")
		return 0, false
	}

	return uint(id), true
}

// readForm reads the movieDto field and, if present, the file field of a
// multipart request. The returned closer must be called once the poster
// was consumed.
func readForm(c *gin.Context, d *internal.Deps, fileRequired bool) (service.MovieInput, *service.Poster, io.Closer, bool) {
	var in service.MovieInput

	raw := c.PostForm("movieDto")
	if raw == "" {
		reply.BadRequest(c, "No movieDto provided")
		return in, nil, nil, false
	}

	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		zap.L().Debug("Invalid movieDto", zap.Error(err), zap.String("requestID", middleware.RequestID(c)))
		reply.BadRequest(c, "movieDto is not valid JSON")
		return in, nil, nil, false
	}

	fh, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) && !fileRequired {
			return in, nil, nil, true
		}

		reply.BadRequest(c, "File is empty! Please send another file!")
		return in, nil, nil, false
	}

	status, f, ct, err := validators.PosterValidator(fh, d.MaxUploadSize)
	if err != nil {
		if status == http.StatusInternalServerError {
			reply.Error(c, err, nil)
			return in, nil, nil, false
		}

		reply.Abort(c, status, err.Error())
		return in, nil, nil, false
	}

	return in, &service.Poster{
		Name:        fh.Filename,
		Content:     f,
		Size:        fh.Size,
		ContentType: ct,
	}, f, true
}
