package domain

import (
	"github.com/shopspring/decimal"
)

// PlanStatus is the categorical health of a plan, derived from cushion years.
type PlanStatus string

const (
	StatusExcellent  PlanStatus = "Excellent"
	StatusGood       PlanStatus = "Good"
	StatusAdequate   PlanStatus = "Adequate"
	StatusAtRisk     PlanStatus = "At Risk"
	StatusConcerning PlanStatus = "Concerning"
)

// statusThresholds maps minimum cushion years to status, checked in order.
var statusThresholds = []struct {
	MinCushion int
	Status     PlanStatus
}{
	{10, StatusExcellent},
	{5, StatusGood},
	{0, StatusAdequate},
	{-5, StatusAtRisk},
}

// StatusForCushion maps cushion years into a PlanStatus.
func StatusForCushion(cushionYears int) PlanStatus {
	for _, t := range statusThresholds {
		if cushionYears >= t.MinCushion {
			return t.Status
		}
	}
	return StatusConcerning
}

// WarningKind categorizes plan warnings.
type WarningKind string

const (
	// WarnUnderfundedContribution: planned contributions could not be fully
	// funded from income even after maximum FLEX reduction.
	WarnUnderfundedContribution WarningKind = "underfunded_contribution"
	// WarnUnmetDeficit: expenses exceeded income and every account was
	// exhausted before the deficit was covered.
	WarnUnmetDeficit WarningKind = "unmet_deficit"
	// WarnDepletion: the portfolio reached zero during the projection.
	WarnDepletion WarningKind = "depletion"
	// WarnSSBeforeWorkEnd: Social Security begins before work income stops.
	WarnSSBeforeWorkEnd WarningKind = "ss_before_work_end"
	// WarnImplausibleContributions: planned contributions exceed total
	// income in the plan's first year.
	WarnImplausibleContributions WarningKind = "implausible_contributions"
)

// Warning is a structured, non-fatal finding attached to PlanMetrics.
// Financial stress never fails a projection; it is reported here instead.
type Warning struct {
	Kind    WarningKind     `json:"kind"`
	Year    int             `json:"year,omitempty"`
	Age     int             `json:"age,omitempty"`
	Ref     string          `json:"ref,omitempty"` // account or category name
	Amount  decimal.Decimal `json:"amount,omitempty"`
	Message string          `json:"message"`
}

// PlanMetrics summarizes a full projection for at-a-glance evaluation.
type PlanMetrics struct {
	RanOut     bool       `json:"ranOut"`
	RunOutAge  int        `json:"runOutAge,omitempty"`
	RunOutYear int        `json:"runOutYear,omitempty"`
	Cushion    int        `json:"cushionYears"`
	Status     PlanStatus `json:"status"`

	TargetAgeBalance decimal.Decimal `json:"targetAgeBalance"`
	FinalBalance     decimal.Decimal `json:"finalBalance"`

	// Sustainable-withdrawal comparison: 4% of the starting portfolio
	// against the plan's current annual spending.
	SustainableWithdrawal decimal.Decimal `json:"sustainableWithdrawal"`
	CurrentSpending       decimal.Decimal `json:"currentSpending"`

	Warnings []Warning `json:"warnings,omitempty"`
}

// ProjectionResult bundles the full record sequence with its analysis.
type ProjectionResult struct {
	Records []YearRecord `json:"records"`
	Metrics PlanMetrics  `json:"metrics"`
}
