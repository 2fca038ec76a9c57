package api

import (
	"banking_system/internal/config" // Configuration
	"banking_system/internal/utils"  // Utility functions
	"net/http"                       // HTTP status codes
	"time"                           // Token lifetime

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/crypto/bcrypt" // Password hashing
)

// TokenRequest carries the operator credentials
type TokenRequest struct {
	Username string `json:"username" binding:"required"` // Username must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// AuthResponse struct for authentication
type AuthResponse struct {
	Token string `json:"token"` // JWT token
}

// TokenHandler authenticates the operator and returns a JWT token
func TokenHandler(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TokenRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Only the configured operator may sign in
		if cfg.OperatorUser == "" || req.Username != cfg.OperatorUser {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		// Compare provided password with stored hash
		if err := bcrypt.CompareHashAndPassword([]byte(cfg.OperatorHash), []byte(req.Password)); err != nil {
			logrus.WithField("operator", req.Username).Warn("Operator sign-in rejected")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		// Generate JWT token
		token, err := utils.GenerateJWT(req.Username, cfg.JWTSecret, 24*time.Hour)
		if err != nil {
			// If token generation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		// Return the token in the response
		c.JSON(http.StatusOK, AuthResponse{Token: token})
	}
}
