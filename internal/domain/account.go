package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType identifies the tax treatment of an investment account.
type AccountType string

const (
	// AccountEmployerDeferred is an employer-sponsored tax-deferred plan (401k-style).
	AccountEmployerDeferred AccountType = "employer_deferred"
	// AccountTraditionalIndividual is an individually held tax-deferred account (traditional IRA).
	AccountTraditionalIndividual AccountType = "traditional_individual"
	// AccountRothIndividual is an individually held post-tax account (Roth IRA).
	AccountRothIndividual AccountType = "roth_individual"
	// AccountTaxable is an ordinary taxable brokerage account.
	AccountTaxable AccountType = "taxable"
)

// ContributionRule describes when contributions to an account type must stop.
// Modeled as data rather than branching so adding an account type is a table
// change, not a logic change.
type ContributionRule struct {
	StopsAtWorkEnd bool // contributions require work income
	StopAge        int  // statutory age cap, 0 = none
}

var contributionRules = map[AccountType]ContributionRule{
	AccountEmployerDeferred:      {StopsAtWorkEnd: true},
	AccountTraditionalIndividual: {StopAge: 73},
	AccountRothIndividual:        {},
	AccountTaxable:               {},
}

var rmdSubject = map[AccountType]bool{
	AccountEmployerDeferred:      true,
	AccountTraditionalIndividual: true,
}

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	_, ok := contributionRules[t]
	return ok
}

// ContributionRule returns the contribution-stop rule for the account type.
func (t AccountType) ContributionRule() ContributionRule {
	return contributionRules[t]
}

// SubjectToRMD reports whether the account type requires minimum
// distributions once the holder reaches the RMD age.
func (t AccountType) SubjectToRMD() bool {
	return rmdSubject[t]
}

// AccountBucket represents one investment account in a plan. A bucket is
// constructed fresh for each projection run; only the engine's per-year
// balance update mutates it, and never the caller's copy.
type AccountBucket struct {
	Name                string          `yaml:"name" json:"name"`
	Type                AccountType     `yaml:"type" json:"type"`
	Balance             decimal.Decimal `yaml:"balance" json:"balance"`
	AnnualReturn        decimal.Decimal `yaml:"annual_return" json:"annualReturn"`
	WithdrawalPriority  int             `yaml:"withdrawal_priority" json:"withdrawalPriority"`
	PlannedContribution decimal.Decimal `yaml:"planned_contribution" json:"plannedContribution"`
	ContributeAfterWork bool            `yaml:"contribute_after_work" json:"contributeAfterWork"`
}

// CanContribute reports whether the account accepts its planned contribution
// at the given age. The statutory age cap always applies; the work-end cutoff
// is waived for accounts flagged to continue after work income stops.
func (a *AccountBucket) CanContribute(age, workEndAge int) bool {
	rule := a.Type.ContributionRule()
	if rule.StopAge > 0 && age >= rule.StopAge {
		return false
	}
	if rule.StopsAtWorkEnd && age >= workEndAge && !a.ContributeAfterWork {
		return false
	}
	return true
}
