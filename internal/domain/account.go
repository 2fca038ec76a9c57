package domain

import "github.com/shopspring/decimal"

// Account Model
type Account struct {
	AccNumber    int                 `gorm:"column:acc_number;primaryKey;autoIncrement:false" json:"accNumber"`        // Primary key
	Type         *string             `gorm:"column:type;size:8" json:"type"`                                          // Account type, e.g. BUS or SAV
	Balance      decimal.NullDecimal `gorm:"column:balance;type:decimal(15,2)" json:"balance"`                       // Current balance
	BranchNumber *int                `gorm:"column:branch_number;index" json:"branchNumber"`                          // Foreign key to Branch
	Branch       *Branch             `gorm:"foreignKey:BranchNumber;references:BranchNumber" json:"branch,omitempty"`  // Branch holding the account
	Owns         []Owns              `gorm:"foreignKey:AccNumber;references:AccNumber" json:"owns,omitempty"`          // Ownership rows
	Transactions []Transaction       `gorm:"foreignKey:AccNumber;references:AccNumber" json:"transactions,omitempty"`  // Ledger entries
}

// TableName keeps the singular table name used by the schema
func (Account) TableName() string { return "account" }
