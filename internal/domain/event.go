package domain

import (
	"github.com/shopspring/decimal"
)

// OneTimeEvent represents a single cash transaction against a named account
// in a specific calendar year. Positive amounts are withdrawals (outflows,
// e.g. a roof replacement); negative amounts are additions (inflows, e.g. an
// inheritance). The event is applied to the account before that year's
// investment return so it never earns or loses a full year of growth.
type OneTimeEvent struct {
	Year    int             `yaml:"year" json:"year"`
	Label   string          `yaml:"label" json:"label"`
	Amount  decimal.Decimal `yaml:"amount" json:"amount"`
	Account string          `yaml:"account" json:"account"`
}
