package api

import (
	"banking_system/internal/domain" // Domain errors
	"errors"                         // Error inspection
	"net/http"                       // HTTP status codes

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// statusOf maps a domain error to an HTTP status and a client message
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusBadRequest, "Invalid amount"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusBadRequest, "Insufficient funds"
	case errors.Is(err, domain.ErrMissingField):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound, "Account not found"
	case errors.Is(err, domain.ErrEmployeeNotFound):
		return http.StatusNotFound, "Employee not found"
	case errors.Is(err, domain.ErrDuplicateEmployee):
		return http.StatusConflict, "Employee already exists"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, err.Error()
	default:
		return http.StatusInternalServerError, "Internal server error" // Store failures and anything unknown
	}
}

// writeError logs err with fields and writes the JSON error response
func writeError(c *gin.Context, err error, msg string, fields logrus.Fields) {
	status, text := statusOf(err)
	entry := logrus.WithFields(fields).WithError(err) // Log with request context
	if status >= http.StatusInternalServerError {
		entry.Error(msg + " failed") // Unexpected failure
	} else {
		entry.Warn(msg + " rejected") // Client or business rule error
	}
	c.JSON(status, gin.H{"error": text})
}
