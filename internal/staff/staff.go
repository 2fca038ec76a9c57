// Package staff hires and terminates employees.
package staff

import (
	"banking_system/internal/domain" // Domain models and errors
	"context"                        // Request context
	"errors"                         // Error inspection
	"fmt"                            // Error wrapping
	"strings"                        // String manipulation

	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// HireInput carries the fields of a new employee. SIN, FirstName and
// LastName are required.
type HireInput struct {
	SIN          *int    `json:"sin"`
	FirstName    *string `json:"firstName"`
	LastName     *string `json:"lastName"`
	Salary       *int    `json:"salary"`
	BranchNumber *int    `json:"branchNumber"`
}

// Service manages the employee table.
type Service struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Hire inserts a new employee and returns the stored record.
func (s *Service) Hire(ctx context.Context, in HireInput) (*domain.Employee, error) {
	switch {
	case in.SIN == nil:
		return nil, fmt.Errorf("%w: sin", domain.ErrMissingField)
	case blank(in.FirstName):
		return nil, fmt.Errorf("%w: firstName", domain.ErrMissingField)
	case blank(in.LastName):
		return nil, fmt.Errorf("%w: lastName", domain.ErrMissingField)
	}

	emp := domain.Employee{
		SIN:          *in.SIN,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Salary:       in.Salary,
		BranchNumber: in.BranchNumber,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&domain.Employee{}).Where("sin = ?", emp.SIN).Count(&n).Error; err != nil {
			return storeErr(err)
		}
		if n > 0 {
			return fmt.Errorf("%w: %d", domain.ErrDuplicateEmployee, emp.SIN)
		}
		if emp.BranchNumber != nil {
			if err := tx.Model(&domain.Branch{}).Where("branch_number = ?", *emp.BranchNumber).Count(&n).Error; err != nil {
				return storeErr(err)
			}
			if n == 0 {
				return fmt.Errorf("%w: branch %d", domain.ErrNotFound, *emp.BranchNumber)
			}
		}
		err := tx.Create(&emp).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: %d", domain.ErrDuplicateEmployee, emp.SIN)
		}
		if err != nil {
			return storeErr(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"sin":           emp.SIN,
		"branch_number": emp.BranchNumber,
	}).Info("Employee hired")
	return &emp, nil
}

// Terminate removes an employee. Branches managed by the employee have
// their manager cleared in the same store transaction.
func (s *Service) Terminate(ctx context.Context, sin *int) error {
	if sin == nil {
		return fmt.Errorf("%w: sin", domain.ErrMissingField)
	}

	var cleared int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var emp domain.Employee
		err := tx.Where("sin = ?", *sin).Take(&emp).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %d", domain.ErrEmployeeNotFound, *sin)
		}
		if err != nil {
			return storeErr(err)
		}

		res := tx.Model(&domain.Branch{}).Where("manager_sin = ?", *sin).Update("manager_sin", nil)
		if res.Error != nil {
			return storeErr(res.Error)
		}
		cleared = res.RowsAffected

		if err := tx.Where("sin = ?", *sin).Delete(&domain.Employee{}).Error; err != nil {
			return storeErr(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"sin":               *sin,
		"branches_released": cleared,
	}).Info("Employee terminated")
	return nil
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrStore, err)
}
