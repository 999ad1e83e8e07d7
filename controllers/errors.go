package controllers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/HSouheill/noteshive_backend/models"
	"github.com/HSouheill/noteshive_backend/services"
)

// statusFor maps service error kinds to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrConflict),
		errors.Is(err, services.ErrInvalidOrExpired):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrAuthFailed):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrTooManyAttempts):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// authError writes the {"error": msg} body used by the auth endpoints.
func authError(c echo.Context, err error, fallback string) error {
	return c.JSON(statusFor(err), models.ErrorResponse{Error: services.Message(err, fallback)})
}

// respondError writes a models.Response for the protected endpoints.
func respondError(c echo.Context, err error, fallback string) error {
	status := statusFor(err)
	return c.JSON(status, models.Response{
		Status:  status,
		Message: services.Message(err, fallback),
	})
}
