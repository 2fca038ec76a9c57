package api

import (
	"banking_system/internal/domain" // Importing domain models
	"banking_system/internal/ledger" // Transaction engine
	"context"                        // Request context
	"net/http"                       // HTTP status codes
	"strconv"                        // String conversion

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // Decimal money
	"github.com/sirupsen/logrus"    // Logging library
)

// AmountRequest represents a deposit or withdrawal request
type AmountRequest struct {
	Amount *decimal.Decimal `json:"amount"` // Amount as JSON number or numeric string
}

// BalanceResponse is returned after a deposit or withdrawal
type BalanceResponse struct {
	AccNumber  int    `json:"accNumber"`  // Account number
	NewBalance string `json:"newBalance"` // Balance after the movement
}

// AccountResponse describes one account
type AccountResponse struct {
	AccNumber    int            `json:"accNumber"`    // Account number
	Type         *string        `json:"type"`         // Account type
	Balance      *string        `json:"balance"`      // Current balance
	BranchNumber *int           `json:"branchNumber"` // Branch number
	Branch       *domain.Branch `json:"branch"`       // Branch details
}

// LedgerEntryResponse describes one ledger entry
type LedgerEntryResponse struct {
	AccNumber   int     `json:"accNumber"`   // Account number
	TransNumber int     `json:"transNumber"` // Sequence number
	Amount      *string `json:"amount"`      // Signed amount
}

// accNumberParam parses the :accNumber path parameter
func accNumberParam(c *gin.Context) (int, bool) {
	accNumber, err := strconv.Atoi(c.Param("accNumber"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid account number"})
		return 0, false
	}
	return accNumber, true
}

// movement is the shared shape of Deposit and Withdraw
type movement func(ctx context.Context, accNumber int, amount decimal.Decimal) (*ledger.Result, error)

// DepositHandler adds funds to an account
func DepositHandler(engine *ledger.Engine, cache *ReportCache) gin.HandlerFunc {
	return moneyHandler(cache, "deposit", engine.Deposit)
}

// WithdrawHandler takes funds out of an account
func WithdrawHandler(engine *ledger.Engine, cache *ReportCache) gin.HandlerFunc {
	return moneyHandler(cache, "withdraw", engine.Withdraw)
}

func moneyHandler(cache *ReportCache, kind string, move movement) gin.HandlerFunc {
	return func(c *gin.Context) {
		accNumber, ok := accNumberParam(c) // Parse account number
		if !ok {
			return
		}
		var req AmountRequest // Bind JSON request to struct
		// Validate request
		if err := c.ShouldBindJSON(&req); err != nil || req.Amount == nil {
			// If invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
			return
		}
		res, err := move(c.Request.Context(), accNumber, *req.Amount) // Run the movement atomically
		if err != nil {
			writeError(c, err, kind, logrus.Fields{
				"acc_number": accNumber,           // Account number
				"amount":     req.Amount.String(), // Requested amount
				"type":       kind,                // Movement type
			})
			return
		}
		cache.Invalidate(c.Request.Context()) // Reports depend on balances and the ledger
		// Return success response
		c.JSON(http.StatusOK, BalanceResponse{AccNumber: res.AccNumber, NewBalance: domain.Money(res.NewBalance)})
	}
}

// GetAccountHandler returns one account
func GetAccountHandler(engine *ledger.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		accNumber, ok := accNumberParam(c) // Parse account number
		if !ok {
			return
		}
		acc, err := engine.Account(c.Request.Context(), accNumber) // Fetch account with branch
		if err != nil {
			writeError(c, err, "get account", logrus.Fields{"acc_number": accNumber})
			return
		}
		c.JSON(http.StatusOK, AccountResponse{
			AccNumber:    acc.AccNumber,                 // Account number
			Type:         acc.Type,                      // Account type
			Balance:      domain.NullMoney(acc.Balance), // Formatted balance
			BranchNumber: acc.BranchNumber,              // Branch number
			Branch:       acc.Branch,                    // Branch details
		})
	}
}

// GetTransactionHistoryHandler returns the ledger of an account, oldest first
func GetTransactionHistoryHandler(engine *ledger.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		accNumber, ok := accNumberParam(c) // Parse account number
		if !ok {
			return
		}
		page := 1      // Default page
		pageSize := 20 // Default page size
		// If page exists in query
		if p := c.Query("page"); p != "" {
			// Convert page to integer
			if v, err := strconv.Atoi(p); err == nil && v > 0 {
				page = v // Set page if valid
			}
		}
		// If page_size exists in query
		if ps := c.Query("page_size"); ps != "" {
			// Convert page_size to integer
			if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
				pageSize = v // Set page size if valid
			}
		}
		result, err := engine.History(c.Request.Context(), accNumber, page, pageSize)
		if err != nil {
			writeError(c, err, "transaction history", logrus.Fields{"acc_number": accNumber})
			return
		}
		entries := make([]LedgerEntryResponse, 0, len(result.Transactions)) // Response rows
		for _, t := range result.Transactions {
			entries = append(entries, LedgerEntryResponse{
				AccNumber:   t.AccNumber,                // Account number
				TransNumber: t.TransNumber,              // Sequence number
				Amount:      domain.NullMoney(t.Amount), // Formatted amount
			})
		}
		// Calculate total pages
		totalPages := (int(result.Total) + result.PageSize - 1) / result.PageSize
		c.JSON(http.StatusOK, gin.H{
			"transactions": entries,         // Ledger entries
			"page":         result.Page,     // Current page
			"page_size":    result.PageSize, // Page size
			"total":        result.Total,    // Total entries
			"total_pages":  totalPages,      // Total pages
		})
	}
}
