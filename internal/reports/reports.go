// Package reports answers the fixed business reports over the banking
// schema. Each report is a pure function of the store contents: rows are
// loaded in primary-key order, filtered, joined and aggregated in memory,
// sorted with a stable multi-key comparator and cut to the first Limit rows.
package reports

import (
	"banking_system/internal/domain" // Domain models and errors
	"context"                        // Request context
	"fmt"                            // Error wrapping
	"slices"                         // Stable sorting

	"github.com/shopspring/decimal" // Decimal money
	"gorm.io/gorm"                  // GORM ORM library
)

// Limit is the number of rows a report returns at most.
const Limit = 10

// Engine runs reports against a store handle.
type Engine struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

type runner func(e *Engine, ctx context.Context) (any, error)

func wrap[T any](f func(e *Engine, ctx context.Context) (T, error)) runner {
	return func(e *Engine, ctx context.Context) (any, error) { return f(e, ctx) }
}

var problems = map[int]runner{
	1:  wrap((*Engine).IncomeBand),
	2:  wrap((*Engine).ManagerSalaryGap),
	3:  wrap((*Engine).AboveButlerIncome),
	4:  wrap((*Engine).LondonLatveriaOwners),
	5:  wrap((*Engine).BusinessSavingsOwners),
	6:  wrap((*Engine).EdwardsBranchAccounts),
	7:  wrap((*Engine).NewYorkWithoutLondon),
	8:  wrap((*Engine).HighEarnersByManagedBranch),
	9:  wrap((*Engine).HighEarnersManagedBranchName),
	10: wrap((*Engine).HelenMorganCoverage),
	11: wrap((*Engine).BerlinLowestPaid),
	14: wrap((*Engine).MoscowPayroll),
	15: wrap((*Engine).FourBranchCustomers),
	17: wrap((*Engine).SCustomerAverages),
	18: wrap((*Engine).BerlinBusyAccounts),
	19: wrap((*Engine).LargeBranchTypeAverages),
	20: wrap((*Engine).OutlierAccountTransactions),
}

// Problems lists the available report numbers in ascending order.
func Problems() []int {
	ids := make([]int, 0, len(problems))
	for id := range problems {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Has reports whether problem id exists.
func Has(id int) bool {
	_, ok := problems[id]
	return ok
}

// Run executes report id.
func (e *Engine) Run(ctx context.Context, id int) (any, error) {
	run, ok := problems[id]
	if !ok {
		return nil, fmt.Errorf("%w: problem %d", domain.ErrNotFound, id)
	}
	return run(e, ctx)
}

// customersWithAccounts loads every customer with owned accounts and the
// accounts' branches.
func (e *Engine) customersWithAccounts(ctx context.Context, scope func(*gorm.DB) *gorm.DB) ([]domain.Customer, error) {
	var customers []domain.Customer
	q := e.db.WithContext(ctx).
		Preload("Owns", byColumn("acc_number")).
		Preload("Owns.Account").
		Preload("Owns.Account.Branch").
		Order("customer_id")
	if scope != nil {
		q = q.Scopes(scope)
	}
	if err := q.Find(&customers).Error; err != nil {
		return nil, storeErr(err)
	}
	return customers, nil
}

// branchNamed returns the numbers of branches with the given name.
func (e *Engine) branchNamed(ctx context.Context, name string) ([]int, error) {
	var nums []int
	err := e.db.WithContext(ctx).Model(&domain.Branch{}).
		Where("branch_name = ?", name).
		Order("branch_number").
		Pluck("branch_number", &nums).Error
	if err != nil {
		return nil, storeErr(err)
	}
	return nums, nil
}

func byColumn(col string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB { return db.Order(col) }
}

func top[T any](rows []T) []T {
	if len(rows) > Limit {
		rows = rows[:Limit]
	}
	if rows == nil {
		return []T{}
	}
	return rows
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func num(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func accountBranchName(a *domain.Account) string {
	if a == nil || a.Branch == nil {
		return ""
	}
	return str(a.Branch.BranchName)
}

func average(sum decimal.Decimal, n int) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(int64(n)))
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrStore, err)
}
