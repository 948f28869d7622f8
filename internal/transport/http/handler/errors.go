package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"todo-api/internal/app"
	"todo-api/internal/transport/http/response"
)

// writeError maps service errors onto the fixed status codes. Anything
// unrecognised is logged and reported as a bare 500.
func writeError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, app.ErrConflict):
		response.Error(c, http.StatusConflict, response.DetailConflict)
	case errors.Is(err, app.ErrUserNotFound):
		response.Error(c, http.StatusNotFound, response.DetailUserNotFound)
	case errors.Is(err, app.ErrTodoNotFound):
		response.Error(c, http.StatusNotFound, response.DetailTodoNotFound)
	case errors.Is(err, app.ErrPermissionDenied):
		response.Error(c, http.StatusForbidden, response.DetailPermissionDenied)
	case errors.Is(err, app.ErrCredentialsInvalid):
		response.Unauthorized(c, response.DetailCredentialsInvalid)
	case errors.Is(err, app.ErrIncorrectLogin):
		response.Unauthorized(c, response.DetailIncorrectLogin)
	default:
		_ = c.Error(err)
		logger.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		response.Error(c, http.StatusInternalServerError, response.DetailInternal)
	}
}

func invalidRequest(c *gin.Context, detail string) {
	response.Error(c, http.StatusUnprocessableEntity, detail)
}

func pathID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		invalidRequest(c, name+" must be a positive integer")
		return 0, false
	}
	return uint(id), true
}

// pageQuery reads offset and limit, defaulting to the first 100 rows.
func pageQuery(c *gin.Context) (app.Page, bool) {
	page := app.DefaultPage()
	if raw, ok := c.GetQuery("offset"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil {
			invalidRequest(c, "offset must be an integer")
			return page, false
		}
		page.Offset = n
	}
	if raw, ok := c.GetQuery("limit"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil {
			invalidRequest(c, "limit must be an integer")
			return page, false
		}
		page.Limit = n
	}
	return page, true
}
