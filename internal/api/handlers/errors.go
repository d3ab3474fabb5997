// Package handlers turns HTTP requests into service calls and service
// results into JSON.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"citymove/internal/logging"
	"citymove/internal/search"
	"citymove/internal/services"
)

// statusFor maps service sentinels to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, search.ErrInvalidCriteria),
		errors.Is(err, services.ErrRouteRequired),
		errors.Is(err, services.ErrInvalidEmail),
		errors.Is(err, services.ErrWeakPassword),
		errors.Is(err, services.ErrPasswordTooLong),
		errors.Is(err, services.ErrInvalidResetToken):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidSession):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrVehicleNotFound),
		errors.Is(err, services.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrEmailTaken):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// respondError writes {"error": ...}. Internal errors are logged and their
// detail is not echoed to the client.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logging.LogError(logging.FromContext(c.Request.Context()), "request failed", err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
