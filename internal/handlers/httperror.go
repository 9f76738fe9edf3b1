package handlers

import (
	"net/http"

	"github.com/anonto42/circleup/backend/internal/apperrors"
	"github.com/labstack/echo/v4"
)

// httpError maps a service error onto the HTTP status space. Unknown errors
// are reported as 500 without leaking internals.
func httpError(err error) *echo.HTTPError {
	switch apperrors.CodeOf(err) {
	case apperrors.CodeInvalidInput:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case apperrors.CodeNotFound:
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case apperrors.CodeConflict:
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case apperrors.CodeForbidden:
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
