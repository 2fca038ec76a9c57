package domain

// Customer Model
type Customer struct {
	CustomerID int     `gorm:"column:customer_id;primaryKey;autoIncrement:false" json:"customerID"`    // Primary key
	FirstName  *string `gorm:"column:first_name;size:64" json:"firstName"`                            // First name
	LastName   *string `gorm:"column:last_name;size:64" json:"lastName"`                              // Last name
	Income     *int    `gorm:"column:income" json:"income"`                                           // Yearly income
	BirthData  *string `gorm:"column:birth_data;size:32" json:"birthData"`                            // Birth date as stored
	Owns       []Owns  `gorm:"foreignKey:CustomerID;references:CustomerID" json:"owns,omitempty"`     // Ownership rows
}

// TableName keeps the singular table name used by the schema
func (Customer) TableName() string { return "customer" }

// Owns Model, the customer/account ownership join
type Owns struct {
	CustomerID int       `gorm:"column:customer_id;primaryKey;autoIncrement:false" json:"customerID"` // Owning customer
	AccNumber  int       `gorm:"column:acc_number;primaryKey;autoIncrement:false" json:"accNumber"`   // Owned account
	Customer   *Customer `gorm:"foreignKey:CustomerID;references:CustomerID" json:"customer,omitempty"`
	Account    *Account  `gorm:"foreignKey:AccNumber;references:AccNumber" json:"account,omitempty"`
}

// TableName keeps the join table name used by the schema
func (Owns) TableName() string { return "owns" }
