package api

import (
	"banking_system/internal/config"     // Configuration
	"banking_system/internal/ledger"     // Transaction engine
	"banking_system/internal/middleware" // Custom middleware
	"banking_system/internal/reports"    // Report engine
	"banking_system/internal/staff"      // Employee lifecycle

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// NewRouter wires every route onto a gin engine. rdb may be nil.
func NewRouter(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	r := gin.New()                                    // Gin router instance
	r.Use(gin.Recovery(), middleware.RequestLogger()) // Panic recovery and logrus access log
	cache := NewReportCache(rdb, cfg.ReportCacheTTL)  // Report cache, disabled without Redis
	ledgerEngine := ledger.New(db)                    // Deposits and withdrawals
	staffService := staff.New(db)                     // Hiring and termination
	reportEngine := reports.New(db)                   // Fixed reports

	// Report routes
	r.GET("/problems/:id", ProblemHandler(reportEngine, cache))

	// Read-only account routes
	r.GET("/account/:accNumber", GetAccountHandler(ledgerEngine))
	r.GET("/account/:accNumber/transactions", GetTransactionHistoryHandler(ledgerEngine))

	// Write routes, protected by operator JWT when a secret is configured
	writes := r.Group("")
	if cfg.AuthEnabled() {
		r.POST("/auth/token", TokenHandler(cfg)) // Operator sign-in
		writes.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	}
	writes.POST("/employee/join", JoinHandler(staffService, cache))                   // Hire
	writes.POST("/employee/leave", LeaveHandler(staffService, cache))                 // Terminate
	writes.POST("/account/:accNumber/deposit", DepositHandler(ledgerEngine, cache))   // Deposit
	writes.POST("/account/:accNumber/withdraw", WithdrawHandler(ledgerEngine, cache)) // Withdraw

	return r
}
