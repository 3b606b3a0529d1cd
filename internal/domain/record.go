package domain

import (
	"github.com/shopspring/decimal"
)

// AccountYear holds one account's activity within a single YearRecord.
// Withdrawal covers deficit-driven and RMD-driven outflows; event cash is
// reported separately so the two can be audited independently.
type AccountYear struct {
	Name         string          `json:"name"`
	Contribution decimal.Decimal `json:"contribution"`
	Withdrawal   decimal.Decimal `json:"withdrawal"`
	RMD          decimal.Decimal `json:"rmd"`
	EventAmount  decimal.Decimal `json:"eventAmount"`
	Growth       decimal.Decimal `json:"growth"`
	Balance      decimal.Decimal `json:"balance"`
}

// YearRecord is one row of the projection: a complete picture of a single
// year, either reconstructed from actual snapshots (Historical) or simulated.
// Account balances in a record are always >= 0; shortfalls surface in
// UnmetDeficit and in warnings, never as negative balances.
type YearRecord struct {
	Year       int  `json:"year"`
	Age        int  `json:"age"`
	Historical bool `json:"historical"`

	WorkIncome  decimal.Decimal `json:"workIncome"`
	SSIncome    decimal.Decimal `json:"ssIncome"`
	TotalIncome decimal.Decimal `json:"totalIncome"`

	CoreExpenses     decimal.Decimal `json:"coreExpenses"`
	FlexExpensesFull decimal.Decimal `json:"flexExpensesFull"`
	FlexExpenses     decimal.Decimal `json:"flexExpenses"`
	FlexMultiplier   decimal.Decimal `json:"flexMultiplier"`
	TotalExpenses    decimal.Decimal `json:"totalExpenses"`

	EventAmount decimal.Decimal `json:"eventAmount"` // net outflow, signed

	TotalContributions decimal.Decimal `json:"totalContributions"`
	TotalWithdrawals   decimal.Decimal `json:"totalWithdrawals"`
	TotalRMD           decimal.Decimal `json:"totalRmd"`
	UnmetDeficit       decimal.Decimal `json:"unmetDeficit"`

	TotalGrowth     decimal.Decimal `json:"totalGrowth"`
	ReturnRate      decimal.Decimal `json:"returnRate"` // blended growth / starting balance
	ReturnRateKnown bool            `json:"returnRateKnown"`

	TotalBalance decimal.Decimal `json:"totalBalance"`

	Accounts []AccountYear `json:"accounts"`
}

// Account returns the AccountYear for the named account, or nil.
func (r *YearRecord) Account(name string) *AccountYear {
	for i := range r.Accounts {
		if r.Accounts[i].Name == name {
			return &r.Accounts[i]
		}
	}
	return nil
}

// Depleted reports whether every account balance in the record is zero.
func (r *YearRecord) Depleted() bool {
	return r.TotalBalance.LessThanOrEqual(decimal.Zero)
}
