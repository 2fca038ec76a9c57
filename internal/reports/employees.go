package reports

import (
	"banking_system/internal/domain" // Domain models and errors
	"cmp"                            // Comparator helpers
	"context"                        // Request context
	"database/sql"                   // Nullable scan targets
	"slices"                         // Stable sorting
	"strings"                        // String manipulation
)

// SalaryGap is an employee's salary distance to their branch manager.
type SalaryGap struct {
	SIN        int     `json:"sin"`
	BranchName *string `json:"branchName"`
	Salary     *int    `json:"salary"`
	Diff       int     `json:"diff"`
}

// ManagerSalaryGap lists employees of the London and Berlin branches by how
// much less than their branch manager they earn. Branches without a manager
// contribute no rows.
func (e *Engine) ManagerSalaryGap(ctx context.Context) ([]SalaryGap, error) {
	db := e.db.WithContext(ctx)

	var branches []domain.Branch
	err := db.Preload("Manager").
		Where("branch_name IN ?", []string{"London", "Berlin"}).
		Order("branch_number").
		Find(&branches).Error
	if err != nil {
		return nil, storeErr(err)
	}
	if len(branches) == 0 {
		return []SalaryGap{}, nil
	}
	byNumber := make(map[int]domain.Branch, len(branches))
	numbers := make([]int, 0, len(branches))
	for _, b := range branches {
		byNumber[b.BranchNumber] = b
		numbers = append(numbers, b.BranchNumber)
	}

	var employees []domain.Employee
	if err := db.Where("branch_number IN ?", numbers).Order("sin").Find(&employees).Error; err != nil {
		return nil, storeErr(err)
	}

	var rows []SalaryGap
	for _, emp := range employees {
		b := byNumber[num(emp.BranchNumber)]
		if b.Manager == nil {
			continue
		}
		rows = append(rows, SalaryGap{
			SIN:        emp.SIN,
			BranchName: b.BranchName,
			Salary:     emp.Salary,
			Diff:       num(b.Manager.Salary) - num(emp.Salary),
		})
	}
	slices.SortStableFunc(rows, func(a, b SalaryGap) int {
		return cmp.Or(cmp.Compare(b.Diff, a.Diff), strings.Compare(str(a.BranchName), str(b.BranchName)))
	})
	return top(rows), nil
}

// ManagedBranch names the branch an employee manages.
type ManagedBranch struct {
	BranchName *string `json:"branchName"`
}

// EmployeeManaging is an employee with the branch they manage, if any.
type EmployeeManaging struct {
	SIN           int            `json:"sin"`
	FirstName     *string        `json:"firstName"`
	LastName      *string        `json:"lastName"`
	Salary        *int           `json:"salary"`
	BranchNumber  *int           `json:"branchNumber"`
	BranchManaged *ManagedBranch `json:"branchManaged"`
}

// EmployeeBranchName is an employee flattened with the name of the branch
// they manage.
type EmployeeBranchName struct {
	SIN          int     `json:"sin"`
	FirstName    *string `json:"firstName"`
	LastName     *string `json:"lastName"`
	Salary       *int    `json:"salary"`
	BranchNumber *int    `json:"branchNumber"`
	BranchName   *string `json:"branchName"`
}

// highEarners returns employees earning over 50000 and, per SIN, the first
// branch (by number) each one manages.
func (e *Engine) highEarners(ctx context.Context) ([]domain.Employee, map[int]domain.Branch, error) {
	db := e.db.WithContext(ctx)

	var employees []domain.Employee
	if err := db.Where("salary > ?", 50000).Order("sin").Find(&employees).Error; err != nil {
		return nil, nil, storeErr(err)
	}
	var branches []domain.Branch
	if err := db.Where("manager_sin IS NOT NULL").Order("branch_number").Find(&branches).Error; err != nil {
		return nil, nil, storeErr(err)
	}
	managed := map[int]domain.Branch{}
	for _, b := range branches {
		if _, seen := managed[*b.ManagerSIN]; !seen {
			managed[*b.ManagerSIN] = b
		}
	}
	return employees, managed, nil
}

// HighEarnersByManagedBranch lists employees earning over 50000 with the
// branch they manage, by managed branch name descending (non-managers
// last), then first name.
func (e *Engine) HighEarnersByManagedBranch(ctx context.Context) ([]EmployeeManaging, error) {
	employees, managed, err := e.highEarners(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]EmployeeManaging, 0, len(employees))
	for _, emp := range employees {
		row := EmployeeManaging{
			SIN:          emp.SIN,
			FirstName:    emp.FirstName,
			LastName:     emp.LastName,
			Salary:       emp.Salary,
			BranchNumber: emp.BranchNumber,
		}
		if b, ok := managed[emp.SIN]; ok {
			row.BranchManaged = &ManagedBranch{BranchName: b.BranchName}
		}
		rows = append(rows, row)
	}
	slices.SortStableFunc(rows, func(a, b EmployeeManaging) int {
		var byBranch int
		switch {
		case a.BranchManaged == nil && b.BranchManaged == nil:
		case a.BranchManaged == nil:
			byBranch = 1
		case b.BranchManaged == nil:
			byBranch = -1
		default:
			byBranch = strings.Compare(str(b.BranchManaged.BranchName), str(a.BranchManaged.BranchName))
		}
		return cmp.Or(byBranch, strings.Compare(str(a.FirstName), str(b.FirstName)))
	})
	return top(rows), nil
}

// HighEarnersManagedBranchName lists employees earning over 50000 with the
// name of the branch they manage (null when none), by that name descending
// with null as empty, then first name.
func (e *Engine) HighEarnersManagedBranchName(ctx context.Context) ([]EmployeeBranchName, error) {
	employees, managed, err := e.highEarners(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]EmployeeBranchName, 0, len(employees))
	for _, emp := range employees {
		row := EmployeeBranchName{
			SIN:          emp.SIN,
			FirstName:    emp.FirstName,
			LastName:     emp.LastName,
			Salary:       emp.Salary,
			BranchNumber: emp.BranchNumber,
		}
		if b, ok := managed[emp.SIN]; ok {
			row.BranchName = b.BranchName
		}
		rows = append(rows, row)
	}
	slices.SortStableFunc(rows, func(a, b EmployeeBranchName) int {
		return cmp.Or(strings.Compare(str(b.BranchName), str(a.BranchName)), strings.Compare(str(a.FirstName), str(b.FirstName)))
	})
	return top(rows), nil
}

// EmployeeSalary is an employee's name and salary.
type EmployeeSalary struct {
	SIN       int     `json:"sin"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Salary    *int    `json:"salary"`
}

const employeeBranchJoin = "JOIN branch ON branch.branch_number = employee.branch_number"

// BerlinLowestPaid lists the Berlin employees paid the branch's minimum
// salary.
func (e *Engine) BerlinLowestPaid(ctx context.Context) ([]EmployeeSalary, error) {
	db := e.db.WithContext(ctx)

	var minSalary sql.NullInt64
	err := db.Model(&domain.Employee{}).
		Joins(employeeBranchJoin).
		Where("branch.branch_name = ?", "Berlin").
		Select("MIN(employee.salary)").
		Scan(&minSalary).Error
	if err != nil {
		return nil, storeErr(err)
	}
	if !minSalary.Valid {
		return []EmployeeSalary{}, nil
	}

	var rows []EmployeeSalary
	err = db.Model(&domain.Employee{}).
		Joins(employeeBranchJoin).
		Where("branch.branch_name = ? AND employee.salary = ?", "Berlin", minSalary.Int64).
		Select("employee.sin, employee.first_name, employee.last_name, employee.salary").
		Order("employee.sin asc").
		Limit(Limit).
		Scan(&rows).Error
	if err != nil {
		return nil, storeErr(err)
	}
	return top(rows), nil
}

// Payroll is a salary total.
type Payroll struct {
	TotalSalary int64 `json:"totalSalary"`
}

// MoscowPayroll sums the salaries of the Moscow branch employees.
func (e *Engine) MoscowPayroll(ctx context.Context) (*Payroll, error) {
	var total int64
	err := e.db.WithContext(ctx).Model(&domain.Employee{}).
		Joins(employeeBranchJoin).
		Where("branch.branch_name = ?", "Moscow").
		Select("COALESCE(SUM(employee.salary), 0)").
		Scan(&total).Error
	if err != nil {
		return nil, storeErr(err)
	}
	return &Payroll{TotalSalary: total}, nil
}
