package calculation

import (
	"fmt"
	"sort"

	"github.com/glidepath-tools/glidepath/internal/domain"
	"github.com/shopspring/decimal"
)

var sustainableRate = decimal.NewFromFloat(0.04)

// Analyze distills a full record sequence into PlanMetrics. Run-out
// detection only considers projected rows; historical rows may legitimately
// show a zero balance before saving began.
func Analyze(records []domain.YearRecord, plan *domain.Plan, projectionWarnings []domain.Warning) domain.PlanMetrics {
	m := domain.PlanMetrics{}

	for _, r := range records {
		if r.Historical {
			continue
		}
		if r.Depleted() {
			m.RanOut = true
			m.RunOutAge = r.Age
			m.RunOutYear = r.Year
			break
		}
	}

	// Cushion is measured against life expectancy: years of coverage beyond
	// it when the money lasts, years short of it when it does not.
	if m.RanOut {
		m.Cushion = m.RunOutAge - plan.Profile.LifeExpectancy
	} else {
		m.Cushion = plan.Profile.TargetAge - plan.Profile.LifeExpectancy
	}
	m.Status = domain.StatusForCushion(m.Cushion)

	for _, r := range records {
		if !r.Historical && r.Age == plan.Profile.TargetAge {
			m.TargetAgeBalance = r.TotalBalance
		}
	}
	if len(records) > 0 {
		m.FinalBalance = records[len(records)-1].TotalBalance
	}

	m.SustainableWithdrawal = plan.TotalBalance().Mul(sustainableRate)
	core, flex := plan.BaseExpenses()
	m.CurrentSpending = core.Add(flex)

	m.Warnings = append(m.Warnings, projectionWarnings...)
	m.Warnings = append(m.Warnings, planSanityWarnings(records, plan)...)
	sort.SliceStable(m.Warnings, func(i, j int) bool {
		return m.Warnings[i].Year < m.Warnings[j].Year
	})

	return m
}

// planSanityWarnings flags configuration-level oddities that validation
// deliberately lets through.
func planSanityWarnings(records []domain.YearRecord, plan *domain.Plan) []domain.Warning {
	var warnings []domain.Warning

	if plan.Profile.SSStartAge < plan.Profile.WorkEndAge {
		warnings = append(warnings, domain.Warning{
			Kind: domain.WarnSSBeforeWorkEnd,
			Age:  plan.Profile.SSStartAge,
			Message: fmt.Sprintf("social security starts at age %d, before work ends at age %d",
				plan.Profile.SSStartAge, plan.Profile.WorkEndAge),
		})
	}

	planned := plan.TotalPlannedContributions()
	if planned.GreaterThan(decimalZero) {
		for _, r := range records {
			if r.Historical {
				continue
			}
			if planned.GreaterThan(r.TotalIncome) {
				warnings = append(warnings, domain.Warning{
					Kind:   domain.WarnImplausibleContributions,
					Year:   r.Year,
					Age:    r.Age,
					Amount: planned.Sub(r.TotalIncome),
					Message: fmt.Sprintf("planned contributions of %s exceed first-year income of %s",
						planned.StringFixed(2), r.TotalIncome.StringFixed(2)),
				})
			}
			break
		}
	}

	return warnings
}
