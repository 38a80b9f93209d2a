package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/ecommerce_api/internal/pagination"
	"github.com/Skotchmaster/ecommerce_api/internal/query"
	"github.com/Skotchmaster/ecommerce_api/internal/service"
)

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, query.ErrInvalidFilterField),
		errors.Is(err, query.ErrInvalidSortField),
		errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrConflict):
		return http.StatusBadRequest, "User with that email already exists"
	case errors.Is(err, service.ErrDataIntegrity):
		return http.StatusBadRequest, "Data integrity error: the request references missing or conflicting data"
	case errors.Is(err, service.ErrProductsNotFound), errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, service.ErrDatabaseOperation), errors.Is(err, pagination.ErrPaginationFailed):
		return http.StatusInternalServerError, "Database operation failed."
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// fail logs err under event and converts it to the HTTP error clients see.
func fail(l *slog.Logger, event string, err error) error {
	code, msg := statusFor(err)
	if code >= http.StatusInternalServerError {
		l.Error(event, "status", code, "reason", msg, "error", err)
	} else {
		l.Warn(event, "status", code, "reason", msg, "error", err)
	}
	return echo.NewHTTPError(code, msg)
}

func badRequest(l *slog.Logger, event, reason string, err error) error {
	l.Warn(event, "status", http.StatusBadRequest, "reason", reason, "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, reason)
}
