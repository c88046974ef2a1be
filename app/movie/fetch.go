package movie

import (
	"bitwise74/movie-api/app/reply"
	"bitwise74/movie-api/internal"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageNumber = 0
	defaultPageSize   = 10
	defaultSortDir    = "asc"
)

func MovieFetch(c *gin.Context, d *internal.Deps) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	dto, err := d.Catalog.Get(c.Request.Context(), id)
	if err != nil {
		reply.Error(c, err, nil)
		return
	}

	c.JSON(http.StatusOK, dto)
}

func queryInt(c *gin.Context, key string, def int) (int, bool) {
	raw, ok := c.GetQuery(key)
	if !ok {
		return def, true
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		reply.BadRequest(c, key+" must be a number")
		return 0, false
	}

	return n, true
}

// MovieFetchAll returns every movie unless pageNumber or pageSize is
// given, in which case a page is returned. sortBy and dir sort the page.
func MovieFetchAll(c *gin.Context, d *internal.Deps) {
	ctx := c.Request.Context()

	_, hasPage := c.GetQuery("pageNumber")
	_, hasSize := c.GetQuery("pageSize")
	sortBy, hasSort := c.GetQuery("sortBy")

	if !hasPage && !hasSize && !hasSort {
		movies, err := d.Catalog.List(ctx)
		if err != nil {
			reply.Error(c, err, nil)
			return
		}

		c.JSON(http.StatusOK, movies)
		return
	}

	page, ok := queryInt(c, "pageNumber", defaultPageNumber)
	if !ok {
		return
	}

	size, ok := queryInt(c, "pageSize", defaultPageSize)
	if !ok {
		return
	}

	var err error
	var res any

	if hasSort {
		res, err = d.Catalog.ListPagedSorted(ctx, page, size, sortBy, c.DefaultQuery("dir", defaultSortDir))
	} else {
		res, err = d.Catalog.ListPaged(ctx, page, size)
	}
	if err != nil {
		reply.Error(c, err, nil)
		return
	}

	c.JSON(http.StatusOK, res)
}
