package domain

import "github.com/shopspring/decimal"

// Transaction Model, one ledger entry per balance change
type Transaction struct {
	AccNumber   int                 `gorm:"column:acc_number;primaryKey;autoIncrement:false" json:"accNumber"`   // Account the entry belongs to
	TransNumber int                 `gorm:"column:trans_number;primaryKey;autoIncrement:false" json:"transNumber"` // Per-account sequence, starts at 1
	Amount      decimal.NullDecimal `gorm:"column:amount;type:decimal(15,2)" json:"amount"`                     // Signed delta applied to the balance
	Account     *Account            `gorm:"foreignKey:AccNumber;references:AccNumber" json:"account,omitempty"`   // Owning account
}

// TableName keeps the ledger table name used by the schema
func (Transaction) TableName() string { return "transactions" }
