package domain

// Employee Model
type Employee struct {
	SIN          int     `gorm:"column:sin;primaryKey;autoIncrement:false" json:"sin"`                     // Primary key
	FirstName    *string `gorm:"column:first_name;size:64" json:"firstName"`                              // First name
	LastName     *string `gorm:"column:last_name;size:64" json:"lastName"`                                // Last name
	Salary       *int    `gorm:"column:salary" json:"salary"`                                             // Yearly salary
	BranchNumber *int    `gorm:"column:branch_number;index" json:"branchNumber"`                          // Foreign key to the Branch worked at
	Branch       *Branch `gorm:"foreignKey:BranchNumber;references:BranchNumber" json:"branch,omitempty"` // Branch worked at
}

// TableName keeps the singular table name used by the schema
func (Employee) TableName() string { return "employee" }
