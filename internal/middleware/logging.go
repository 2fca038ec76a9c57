package middleware

import (
	"time" // Request latency

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// RequestLogger logs one entry per request through logrus
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now() // Request start
		c.Next()            // Run the handlers
		entry := logrus.WithFields(logrus.Fields{
			"method":  c.Request.Method,           // HTTP method
			"path":    c.FullPath(),               // Route pattern
			"status":  c.Writer.Status(),          // Response status
			"latency": time.Since(start).String(), // Time spent
			"client":  c.ClientIP(),               // Client address
		})
		if op, ok := c.Get("operator"); ok {
			entry = entry.WithField("operator", op) // Authenticated operator
		}
		if c.Writer.Status() >= 500 {
			entry.Error("Request completed")
		} else {
			entry.Info("Request completed")
		}
	}
}
