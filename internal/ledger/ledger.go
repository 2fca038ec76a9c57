// Package ledger moves money in and out of accounts. Every balance change is
// paired with a ledger row in the same store transaction, so an account's
// balance always moves by exactly the sum of its ledger amounts.
package ledger

import (
	"banking_system/internal/domain" // Domain models and errors
	"context"                        // Request context
	"errors"                         // Error inspection
	"fmt"                            // Error wrapping

	"github.com/shopspring/decimal" // Decimal money
	"github.com/sirupsen/logrus"    // Logging library
	"gorm.io/gorm"                  // GORM ORM library
	"gorm.io/gorm/clause"           // Row locking clause
)

// Result is returned by Deposit and Withdraw.
type Result struct {
	AccNumber   int
	TransNumber int
	NewBalance  decimal.Decimal
}

// Page is one page of an account's ledger.
type Page struct {
	Transactions []domain.Transaction
	Page         int
	PageSize     int
	Total        int64
}

// Engine runs deposits and withdrawals against the store.
type Engine struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

// maxInputScale bounds the fractional digits accepted before rounding,
// trailing zeros included.
const maxInputScale = 16

// ValidateAmount rejects zero, negative and sub-cent amounts, and amounts
// that do not fit a decimal(15,2) column.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: must be positive", domain.ErrInvalidAmount)
	}
	// Round cost grows with the exponent, so size is checked first.
	exp := int(amount.Exponent())
	if amount.NumDigits()+exp > domain.MoneyIntDigits {
		return fmt.Errorf("%w: more than %d integer digits", domain.ErrInvalidAmount, domain.MoneyIntDigits)
	}
	if exp < -maxInputScale {
		return fmt.Errorf("%w: at most %d decimal places", domain.ErrInvalidAmount, domain.MoneyPlaces)
	}
	if !amount.Equal(amount.Round(domain.MoneyPlaces)) {
		return fmt.Errorf("%w: at most %d decimal places", domain.ErrInvalidAmount, domain.MoneyPlaces)
	}
	return nil
}

// Deposit adds amount to the account and appends a ledger row.
func (e *Engine) Deposit(ctx context.Context, accNumber int, amount decimal.Decimal) (*Result, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}
	return e.apply(ctx, accNumber, amount)
}

// Withdraw removes amount from the account and appends a negative ledger
// row. It fails with ErrInsufficientFunds, changing nothing, when the
// balance is lower than amount.
func (e *Engine) Withdraw(ctx context.Context, accNumber int, amount decimal.Decimal) (*Result, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}
	return e.apply(ctx, accNumber, amount.Neg())
}

// apply locks the account row, so the balance read, the MAX(trans_number)
// read and both writes see no interleaved writer on the same account.
func (e *Engine) apply(ctx context.Context, accNumber int, delta decimal.Decimal) (*Result, error) {
	var res Result
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var acc domain.Account
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("acc_number = ?", accNumber).
			Take(&acc).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %d", domain.ErrAccountNotFound, accNumber)
		}
		if err != nil {
			return storeErr(err)
		}

		balance := domain.OrZero(acc.Balance)
		if delta.IsNegative() && balance.LessThan(delta.Neg()) {
			return domain.ErrInsufficientFunds
		}
		newBalance := balance.Add(delta)
		if !domain.InRange(newBalance) {
			return fmt.Errorf("%w: balance would exceed %s", domain.ErrInvalidAmount, domain.Money(domain.MaxMoney))
		}

		var last int
		err = tx.Model(&domain.Transaction{}).
			Where("acc_number = ?", accNumber).
			Select("COALESCE(MAX(trans_number), 0)").
			Scan(&last).Error
		if err != nil {
			return storeErr(err)
		}

		err = tx.Model(&domain.Account{}).
			Where("acc_number = ?", accNumber).
			Update("balance", newBalance).Error
		if err != nil {
			return storeErr(err)
		}

		entry := domain.Transaction{
			AccNumber:   accNumber,
			TransNumber: last + 1,
			Amount:      decimal.NewNullDecimal(delta),
		}
		if err := tx.Create(&entry).Error; err != nil {
			return storeErr(err)
		}

		res = Result{AccNumber: accNumber, TransNumber: entry.TransNumber, NewBalance: newBalance}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"acc_number":   accNumber,
		"amount":       delta.String(),
		"trans_number": res.TransNumber,
		"new_balance":  domain.Money(res.NewBalance),
	}).Info("Ledger entry recorded")
	return &res, nil
}

// Account returns one account with its branch.
func (e *Engine) Account(ctx context.Context, accNumber int) (*domain.Account, error) {
	var acc domain.Account
	err := e.db.WithContext(ctx).Preload("Branch").Where("acc_number = ?", accNumber).Take(&acc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %d", domain.ErrAccountNotFound, accNumber)
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return &acc, nil
}

// History returns a page of the account's ledger, oldest entry first.
func (e *Engine) History(ctx context.Context, accNumber, page, pageSize int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	db := e.db.WithContext(ctx)

	var exists int64
	if err := db.Model(&domain.Account{}).Where("acc_number = ?", accNumber).Count(&exists).Error; err != nil {
		return nil, storeErr(err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %d", domain.ErrAccountNotFound, accNumber)
	}

	out := Page{Page: page, PageSize: pageSize}
	q := db.Model(&domain.Transaction{}).Where("acc_number = ?", accNumber)
	if err := q.Count(&out.Total).Error; err != nil {
		return nil, storeErr(err)
	}
	err := db.Where("acc_number = ?", accNumber).
		Order("trans_number asc").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&out.Transactions).Error
	if err != nil {
		return nil, storeErr(err)
	}
	return &out, nil
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrStore, err)
}
