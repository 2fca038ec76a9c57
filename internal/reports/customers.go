package reports

import (
	"banking_system/internal/domain" // Domain models and errors
	"cmp"                            // Comparator helpers
	"context"                        // Request context
	"slices"                         // Stable sorting
	"strings"                        // String manipulation

	"github.com/shopspring/decimal" // Decimal money
	"gorm.io/gorm"                  // GORM ORM library
)

// CustomerIncome is a customer name with income.
type CustomerIncome struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Income    *int    `json:"income"`
}

// IncomeBand lists customers earning between 50000 and 60000 inclusive,
// highest income first, then by last and first name.
func (e *Engine) IncomeBand(ctx context.Context) ([]CustomerIncome, error) {
	var rows []CustomerIncome
	err := e.db.WithContext(ctx).Model(&domain.Customer{}).
		Select("first_name, last_name, income").
		Where("income >= ? AND income <= ?", 50000, 60000).
		Order("income desc, last_name asc, first_name asc, customer_id asc").
		Limit(Limit).
		Scan(&rows).Error
	if err != nil {
		return nil, storeErr(err)
	}
	return top(rows), nil
}

// AboveButlerIncome lists customers earning at least twice the highest
// income of any customer named Butler.
func (e *Engine) AboveButlerIncome(ctx context.Context) ([]CustomerIncome, error) {
	db := e.db.WithContext(ctx)

	var butlerMax int
	err := db.Model(&domain.Customer{}).
		Where("last_name = ?", "Butler").
		Select("COALESCE(MAX(income), 0)").
		Scan(&butlerMax).Error
	if err != nil {
		return nil, storeErr(err)
	}
	if butlerMax < 0 {
		butlerMax = 0
	}

	var rows []CustomerIncome
	err = db.Model(&domain.Customer{}).
		Select("first_name, last_name, income").
		Where("income >= ?", butlerMax*2).
		Order("last_name asc, first_name asc, customer_id asc").
		Limit(Limit).
		Scan(&rows).Error
	if err != nil {
		return nil, storeErr(err)
	}
	return top(rows), nil
}

// OwnedAccount is one customer/account ownership pair.
type OwnedAccount struct {
	CustomerID   int  `json:"customerID"`
	Income       *int `json:"income"`
	AccNumber    int  `json:"accNumber"`
	BranchNumber *int `json:"branchNumber"`
}

// LondonLatveriaOwners lists every owned account of customers earning over
// 80000 who hold accounts at both a London and a Latveria branch.
func (e *Engine) LondonLatveriaOwners(ctx context.Context) ([]OwnedAccount, error) {
	customers, err := e.customersWithAccounts(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("income > ?", 80000)
	})
	if err != nil {
		return nil, err
	}

	var rows []OwnedAccount
	for _, c := range customers {
		names := map[string]bool{}
		for _, o := range c.Owns {
			names[accountBranchName(o.Account)] = true
		}
		if !names["London"] || !names["Latveria"] {
			continue
		}
		for _, o := range c.Owns {
			row := OwnedAccount{CustomerID: c.CustomerID, Income: c.Income, AccNumber: o.AccNumber}
			if o.Account != nil {
				row.BranchNumber = o.Account.BranchNumber
			}
			rows = append(rows, row)
		}
	}
	slices.SortStableFunc(rows, func(a, b OwnedAccount) int {
		return cmp.Or(cmp.Compare(a.CustomerID, b.CustomerID), cmp.Compare(a.AccNumber, b.AccNumber))
	})
	return top(rows), nil
}

// CustomerRef identifies a customer.
type CustomerRef struct {
	CustomerID int `json:"customerID"`
}

// NewYorkWithoutLondon lists customers with an account at a New York
// branch, none at a London branch, and no co-owner of any of their
// accounts holding an account at a London branch.
func (e *Engine) NewYorkWithoutLondon(ctx context.Context) ([]CustomerRef, error) {
	customers, err := e.customersWithAccounts(ctx, nil)
	if err != nil {
		return nil, err
	}

	owners := map[int][]int{}
	london := map[int]bool{}
	for _, c := range customers {
		for _, o := range c.Owns {
			owners[o.AccNumber] = append(owners[o.AccNumber], c.CustomerID)
			if accountBranchName(o.Account) == "London" {
				london[c.CustomerID] = true
			}
		}
	}

	var rows []CustomerRef
	for _, c := range customers {
		if london[c.CustomerID] {
			continue
		}
		newYork, tainted := false, false
		for _, o := range c.Owns {
			if accountBranchName(o.Account) == "New York" {
				newYork = true
			}
			for _, co := range owners[o.AccNumber] {
				if london[co] {
					tainted = true
				}
			}
		}
		if newYork && !tainted {
			rows = append(rows, CustomerRef{CustomerID: c.CustomerID})
		}
	}
	return top(rows), nil
}

// CustomerSummary is a customer's identity with income.
type CustomerSummary struct {
	CustomerID int     `json:"customerID"`
	FirstName  *string `json:"firstName"`
	LastName   *string `json:"lastName"`
	Income     *int    `json:"income"`
}

func isHelenMorgan(c domain.Customer) bool {
	return str(c.FirstName) == "Helen" && str(c.LastName) == "Morgan"
}

// HelenMorganCoverage lists account holders earning over 5000 (or named
// Helen Morgan) whose accounts span every branch where Helen Morgan holds an
// account, highest income first.
func (e *Engine) HelenMorganCoverage(ctx context.Context) ([]CustomerSummary, error) {
	customers, err := e.customersWithAccounts(ctx, nil)
	if err != nil {
		return nil, err
	}

	helen := map[int]bool{}
	for _, c := range customers {
		if !isHelenMorgan(c) {
			continue
		}
		for _, o := range c.Owns {
			if o.Account != nil && o.Account.BranchNumber != nil {
				helen[*o.Account.BranchNumber] = true
			}
		}
	}

	var rows []CustomerSummary
	for _, c := range customers {
		if len(c.Owns) == 0 || !(num(c.Income) > 5000 || isHelenMorgan(c)) {
			continue
		}
		mine := map[int]bool{}
		for _, o := range c.Owns {
			if o.Account != nil && o.Account.BranchNumber != nil {
				mine[*o.Account.BranchNumber] = true
			}
		}
		covered := true
		for b := range helen {
			if !mine[b] {
				covered = false
				break
			}
		}
		if covered {
			rows = append(rows, CustomerSummary{c.CustomerID, c.FirstName, c.LastName, c.Income})
		}
	}
	slices.SortStableFunc(rows, func(a, b CustomerSummary) int {
		return cmp.Compare(num(b.Income), num(a.Income))
	})
	return top(rows), nil
}

// CustomerName is a customer's identity.
type CustomerName struct {
	CustomerID int     `json:"customerID"`
	FirstName  *string `json:"firstName"`
	LastName   *string `json:"lastName"`
}

// FourBranchCustomers lists customers holding accounts at exactly four
// distinct branches, by last then first name.
func (e *Engine) FourBranchCustomers(ctx context.Context) ([]CustomerName, error) {
	customers, err := e.customersWithAccounts(ctx, nil)
	if err != nil {
		return nil, err
	}

	var rows []CustomerName
	for _, c := range customers {
		branches := map[int]bool{}
		for _, o := range c.Owns {
			if o.Account != nil && o.Account.BranchNumber != nil {
				branches[*o.Account.BranchNumber] = true
			}
		}
		if len(branches) == 4 {
			rows = append(rows, CustomerName{c.CustomerID, c.FirstName, c.LastName})
		}
	}
	slices.SortStableFunc(rows, func(a, b CustomerName) int {
		return cmp.Or(strings.Compare(str(a.LastName), str(b.LastName)), strings.Compare(str(a.FirstName), str(b.FirstName)))
	})
	return top(rows), nil
}

// CustomerAverage is a customer with the average balance of owned accounts.
type CustomerAverage struct {
	CustomerID int     `json:"customerID"`
	FirstName  *string `json:"firstName"`
	LastName   *string `json:"lastName"`
	Income     *int    `json:"income"`
	AvgBalance string  `json:"avgBalance"`
}

// SCustomerAverages groups customers whose last name starts with "S" and
// contains "e", keeps those owning at least three accounts and reports the
// average balance of their accounts.
func (e *Engine) SCustomerAverages(ctx context.Context) ([]CustomerAverage, error) {
	customers, err := e.customersWithAccounts(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("last_name LIKE ?", "S%")
	})
	if err != nil {
		return nil, err
	}

	var rows []CustomerAverage
	for _, c := range customers {
		last := str(c.LastName)
		if !strings.HasPrefix(last, "S") || !strings.Contains(last, "e") || len(c.Owns) < 3 {
			continue
		}
		sum, n := decimal.Zero, 0
		for _, o := range c.Owns {
			if o.Account != nil && o.Account.Balance.Valid {
				sum = sum.Add(o.Account.Balance.Decimal)
				n++
			}
		}
		rows = append(rows, CustomerAverage{
			CustomerID: c.CustomerID,
			FirstName:  c.FirstName,
			LastName:   c.LastName,
			Income:     c.Income,
			AvgBalance: domain.Money(average(sum, n)),
		})
	}
	return top(rows), nil
}
