package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/blog/backend/internal/models"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// httpError maps service error kinds to HTTP status codes. Anything unknown is
// a 500 carrying the raw error text.
func httpError(logger *zap.SugaredLogger, err error) error {
	switch {
	case errors.Is(err, models.ErrPostNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrInvalidID):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrDuplicatePost), errors.Is(err, models.ErrDuplicateUser):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to modify this post")
	}

	logger.Errorw("request failed", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
