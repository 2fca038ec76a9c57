package domain

import "github.com/shopspring/decimal"

// Branch Model
type Branch struct {
	BranchNumber int                 `gorm:"column:branch_number;primaryKey;autoIncrement:false" json:"branchNumber"` // Primary key
	BranchName   *string             `gorm:"column:branch_name;size:64" json:"branchName"`                          // Branch name, e.g. London
	ManagerSIN   *int                `gorm:"column:manager_sin;index" json:"managerSIN"`                            // Foreign key to the managing Employee
	Budget       decimal.NullDecimal `gorm:"column:budget;type:decimal(15,2)" json:"budget"`                       // Branch budget
	Manager      *Employee           `gorm:"foreignKey:ManagerSIN;references:SIN" json:"manager,omitempty"`         // Managing employee
	Accounts     []Account           `gorm:"foreignKey:BranchNumber;references:BranchNumber" json:"accounts,omitempty"`
}

// TableName keeps the singular table name used by the schema
func (Branch) TableName() string { return "branch" }
