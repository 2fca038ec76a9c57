package domain

import "github.com/shopspring/decimal"

// MoneyPlaces is the storage scale of every monetary column
const MoneyPlaces = 2

// MoneyIntDigits is the number of integer digits a decimal(15,2) column holds
const MoneyIntDigits = 13

// MaxMoney is the largest value a monetary column holds, 9999999999999.99
var MaxMoney = decimal.New(1, MoneyIntDigits).Sub(decimal.New(1, -MoneyPlaces))

// InRange reports whether d fits a monetary column
func InRange(d decimal.Decimal) bool {
	return d.Abs().LessThanOrEqual(MaxMoney)
}

// Money renders an amount with the storage scale, e.g. "150.00"
func Money(d decimal.Decimal) string {
	return d.StringFixed(MoneyPlaces)
}

// NullMoney renders a nullable amount, nil when the column is NULL
func NullMoney(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := Money(d.Decimal)
	return &s
}

// OrZero returns the amount or zero when NULL
func OrZero(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}
