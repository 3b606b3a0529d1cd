package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Profile holds the household-level parameters of a plan.
type Profile struct {
	CurrentAge     int `yaml:"current_age" json:"currentAge"`
	TargetAge      int `yaml:"target_age" json:"targetAge"`
	WorkEndAge     int `yaml:"work_end_age" json:"workEndAge"`
	SSStartAge     int `yaml:"ss_start_age" json:"ssStartAge"`
	LifeExpectancy int `yaml:"life_expectancy" json:"lifeExpectancy"`

	// StartYear is the calendar year of the first projected year.
	StartYear int `yaml:"start_year" json:"startYear"`

	WorkIncome       decimal.Decimal `yaml:"work_income" json:"workIncome"`
	SSMonthlyBenefit decimal.Decimal `yaml:"ss_monthly_benefit" json:"ssMonthlyBenefit"`

	InflationRate    decimal.Decimal `yaml:"inflation_rate" json:"inflationRate"`
	COLARate         decimal.Decimal `yaml:"cola_rate" json:"colaRate"`
	MaxFlexReduction decimal.Decimal `yaml:"max_flex_reduction" json:"maxFlexReduction"`
}

// Plan is the complete input to a projection run: profile parameters plus
// ordered account, expense, event, and snapshot collections. Order matters:
// withdrawal-priority ties break by declaration order, and contribution
// funding fills accounts in that same order.
type Plan struct {
	Profile  Profile           `yaml:"profile" json:"profile"`
	Accounts []AccountBucket   `yaml:"accounts" json:"accounts"`
	Expenses []ExpenseCategory `yaml:"expenses" json:"expenses"`
	Events   []OneTimeEvent    `yaml:"events" json:"events"`
	History  []AccountSnapshot `yaml:"history" json:"history"`
}

var minusOne = decimal.NewFromInt(-1)

// Validate fails fast on malformed input with an error naming the offending
// field. Financial stress conditions are not validation failures; they
// surface as warnings during projection.
func (p *Plan) Validate() error {
	if err := p.Profile.validate(); err != nil {
		return err
	}

	if len(p.Accounts) == 0 {
		return fmt.Errorf("plan requires at least one account")
	}

	names := make(map[string]bool, len(p.Accounts))
	for i, a := range p.Accounts {
		if a.Name == "" {
			return fmt.Errorf("account %d: name is required", i)
		}
		if names[a.Name] {
			return fmt.Errorf("account %q: duplicate account name", a.Name)
		}
		names[a.Name] = true
		if !a.Type.Valid() {
			return fmt.Errorf("account %q: unknown account type %q", a.Name, a.Type)
		}
		if a.Balance.IsNegative() {
			return fmt.Errorf("account %q: balance must not be negative, got %s", a.Name, a.Balance)
		}
		if a.AnnualReturn.LessThanOrEqual(minusOne) {
			return fmt.Errorf("account %q: annual return must be greater than -100%%, got %s", a.Name, a.AnnualReturn)
		}
		if a.PlannedContribution.IsNegative() {
			return fmt.Errorf("account %q: planned contribution must not be negative, got %s", a.Name, a.PlannedContribution)
		}
	}

	for i, e := range p.Expenses {
		if e.Name == "" {
			return fmt.Errorf("expense %d: name is required", i)
		}
		if !e.Class.Valid() {
			return fmt.Errorf("expense %q: class must be CORE or FLEX, got %q", e.Name, e.Class)
		}
		if e.AnnualAmount.IsNegative() {
			return fmt.Errorf("expense %q: annual amount must not be negative, got %s", e.Name, e.AnnualAmount)
		}
	}

	for _, ev := range p.Events {
		if !names[ev.Account] {
			return fmt.Errorf("event %q (year %d): references unknown account %q", ev.Label, ev.Year, ev.Account)
		}
	}

	for _, s := range p.History {
		if s.TotalValue.IsNegative() {
			return fmt.Errorf("snapshot for %q on %s: total value must not be negative", s.Account, s.Date.Format("2006-01-02"))
		}
	}

	return nil
}

func (pr *Profile) validate() error {
	if pr.CurrentAge <= 0 {
		return fmt.Errorf("profile: current age must be positive, got %d", pr.CurrentAge)
	}
	if pr.TargetAge < pr.CurrentAge {
		return fmt.Errorf("profile: target age %d is below current age %d", pr.TargetAge, pr.CurrentAge)
	}
	if pr.LifeExpectancy <= 0 {
		return fmt.Errorf("profile: life expectancy must be positive, got %d", pr.LifeExpectancy)
	}
	if pr.StartYear <= 0 {
		return fmt.Errorf("profile: start year must be positive, got %d", pr.StartYear)
	}
	if pr.WorkIncome.IsNegative() {
		return fmt.Errorf("profile: work income must not be negative, got %s", pr.WorkIncome)
	}
	if pr.SSMonthlyBenefit.IsNegative() {
		return fmt.Errorf("profile: social security monthly benefit must not be negative, got %s", pr.SSMonthlyBenefit)
	}
	if pr.InflationRate.LessThanOrEqual(minusOne) {
		return fmt.Errorf("profile: inflation rate must be greater than -100%%, got %s", pr.InflationRate)
	}
	if pr.COLARate.LessThanOrEqual(minusOne) {
		return fmt.Errorf("profile: COLA rate must be greater than -100%%, got %s", pr.COLARate)
	}
	if pr.MaxFlexReduction.IsNegative() || pr.MaxFlexReduction.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("profile: max flex reduction must be within [0,1], got %s", pr.MaxFlexReduction)
	}
	return nil
}

// TotalBalance sums the current balances of all accounts in the plan.
func (p *Plan) TotalBalance() decimal.Decimal {
	total := decimal.Zero
	for _, a := range p.Accounts {
		total = total.Add(a.Balance)
	}
	return total
}

// TotalPlannedContributions sums the planned annual contributions.
func (p *Plan) TotalPlannedContributions() decimal.Decimal {
	total := decimal.Zero
	for _, a := range p.Accounts {
		total = total.Add(a.PlannedContribution)
	}
	return total
}

// BaseExpenses returns the un-inflated CORE and FLEX totals.
func (p *Plan) BaseExpenses() (core, flex decimal.Decimal) {
	core, flex = decimal.Zero, decimal.Zero
	for _, e := range p.Expenses {
		switch e.Class {
		case ExpenseCore:
			core = core.Add(e.AnnualAmount)
		case ExpenseFlex:
			flex = flex.Add(e.AnnualAmount)
		}
	}
	return core, flex
}
