package api

import (
	"banking_system/internal/staff" // Employee lifecycle
	"net/http"                      // HTTP status codes

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// LeaveRequest represents an employee leaving
type LeaveRequest struct {
	SIN *int `json:"sin"` // Employee SIN
}

// JoinHandler hires a new employee
func JoinHandler(svc *staff.Service, cache *ReportCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req staff.HireInput // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		emp, err := svc.Hire(c.Request.Context(), req) // Insert the employee
		if err != nil {
			writeError(c, err, "employee join", logrus.Fields{"sin": req.SIN})
			return
		}
		cache.Invalidate(c.Request.Context()) // Employee reports changed
		c.JSON(http.StatusCreated, emp)       // Return the created record
	}
}

// LeaveHandler removes an employee and releases the branches they managed
func LeaveHandler(svc *staff.Service, cache *ReportCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LeaveRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if err := svc.Terminate(c.Request.Context(), req.SIN); err != nil {
			writeError(c, err, "employee leave", logrus.Fields{"sin": req.SIN})
			return
		}
		cache.Invalidate(c.Request.Context()) // Employee reports changed
		c.JSON(http.StatusOK, gin.H{"message": "Employee removed"})
	}
}
