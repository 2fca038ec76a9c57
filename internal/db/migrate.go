package db

import (
	"banking_system/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// foreignKey describes a constraint added once every table exists
type foreignKey struct {
	model  any    // Model owning the constraint
	table  string // Table owning the constraint
	name   string // Constraint name
	column string // Referencing column
	ref    string // Referenced table(column)
}

var foreignKeys = []foreignKey{
	{&domain.Employee{}, "employee", "fk_employee_branch", "branch_number", "branch(branch_number)"},
	{&domain.Branch{}, "branch", "fk_branch_manager", "manager_sin", "employee(sin)"},
	{&domain.Account{}, "account", "fk_account_branch", "branch_number", "branch(branch_number)"},
	{&domain.Owns{}, "owns", "fk_owns_customer", "customer_id", "customer(customer_id)"},
	{&domain.Owns{}, "owns", "fk_owns_account", "acc_number", "account(acc_number)"},
	{&domain.Transaction{}, "transactions", "fk_transactions_account", "acc_number", "account(acc_number)"},
}

// Migrate creates or updates the schema and its foreign keys
func Migrate(db *gorm.DB) error {
	// AutoMigrate will create tables, missing columns and indexes
	err := db.AutoMigrate(&domain.Branch{}, &domain.Employee{}, &domain.Customer{},
		&domain.Account{}, &domain.Owns{}, &domain.Transaction{})
	if err != nil {
		return err
	}
	// SQLite cannot add constraints to existing tables
	if db.Dialector.Name() == "sqlite" {
		return nil
	}
	for _, fk := range foreignKeys {
		if db.Migrator().HasConstraint(fk.model, fk.name) {
			continue // Already present
		}
		stmt := "ALTER TABLE " + fk.table + " ADD CONSTRAINT " + fk.name +
			" FOREIGN KEY (" + fk.column + ") REFERENCES " + fk.ref
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
		logrus.WithField("constraint", fk.name).Info("Foreign key created")
	}
	return nil
}
