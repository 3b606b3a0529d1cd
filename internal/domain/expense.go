package domain

import (
	"github.com/shopspring/decimal"
)

// ExpenseClass splits spending into inviolable and reducible categories.
type ExpenseClass string

const (
	// ExpenseCore spending is never reduced, regardless of funding stress.
	ExpenseCore ExpenseClass = "CORE"
	// ExpenseFlex spending may be scaled down to the configured floor
	// during shortfalls.
	ExpenseFlex ExpenseClass = "FLEX"
)

// Valid reports whether c is a known expense class.
func (c ExpenseClass) Valid() bool {
	return c == ExpenseCore || c == ExpenseFlex
}

// ExpenseCategory represents one named spending category.
type ExpenseCategory struct {
	Name         string          `yaml:"name" json:"name"`
	AnnualAmount decimal.Decimal `yaml:"annual_amount" json:"annualAmount"`
	Class        ExpenseClass    `yaml:"class" json:"class"`
}
