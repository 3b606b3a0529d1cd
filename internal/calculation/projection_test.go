package calculation

import (
	"testing"

	"github.com/glidepath-tools/glidepath/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func singleAccountPlan(balance, annualReturn float64) *domain.Plan {
	return &domain.Plan{
		Profile: domain.Profile{
			CurrentAge:     60,
			TargetAge:      60,
			WorkEndAge:     60,
			SSStartAge:     70,
			LifeExpectancy: 85,
			StartYear:      2030,
		},
		Accounts: []domain.AccountBucket{
			{
				Name:               "Brokerage",
				Type:               domain.AccountTaxable,
				Balance:            decimal.NewFromFloat(balance),
				AnnualReturn:       decimal.NewFromFloat(annualReturn),
				WithdrawalPriority: 1,
			},
		},
	}
}

func TestEventAppliedBeforeReturns(t *testing.T) {
	plan := singleAccountPlan(200000, 0.07)
	plan.Events = []domain.OneTimeEvent{
		{Year: 2030, Label: "roof replacement", Amount: decimal.NewFromInt(30000), Account: "Brokerage"},
	}

	records := newProjectionState(plan).project()
	require.Len(t, records, 1)

	rec := records[0]
	assert.True(t, rec.TotalBalance.Equal(decimal.NewFromInt(181900)),
		"event must debit the account before the return applies, got %s", rec.TotalBalance)
	assert.True(t, rec.TotalWithdrawals.IsZero(),
		"a covered event must not trigger a second withdrawal, got %s", rec.TotalWithdrawals)
	assert.True(t, rec.Account("Brokerage").EventAmount.Equal(decimal.NewFromInt(30000)))
}

func TestEventShortfallFallsToOtherAccounts(t *testing.T) {
	plan := singleAccountPlan(10000, 0)
	plan.Accounts = append(plan.Accounts, domain.AccountBucket{
		Name:               "Savings",
		Type:               domain.AccountTaxable,
		Balance:            decimal.NewFromInt(50000),
		AnnualReturn:       decimal.Zero,
		WithdrawalPriority: 2,
	})
	plan.Events = []domain.OneTimeEvent{
		{Year: 2030, Label: "medical bill", Amount: decimal.NewFromInt(30000), Account: "Brokerage"},
	}

	records := newProjectionState(plan).project()
	require.Len(t, records, 1)

	rec := records[0]
	assert.True(t, rec.Account("Brokerage").Balance.IsZero(),
		"target account gives everything it holds first")
	assert.True(t, rec.Account("Savings").Withdrawal.Equal(decimal.NewFromInt(20000)),
		"uncovered event remainder comes out of the next account, got %s", rec.Account("Savings").Withdrawal)
	assert.True(t, rec.Account("Savings").Balance.Equal(decimal.NewFromInt(30000)))
}

func TestWindfallEventCreditsAccount(t *testing.T) {
	plan := singleAccountPlan(100000, 0.10)
	plan.Events = []domain.OneTimeEvent{
		{Year: 2030, Label: "inheritance", Amount: decimal.NewFromInt(-50000), Account: "Brokerage"},
	}

	records := newProjectionState(plan).project()
	require.Len(t, records, 1)

	// (100,000 + 50,000) * 1.10
	assert.True(t, records[0].TotalBalance.Equal(decimal.NewFromInt(165000)),
		"windfall lands before growth, got %s", records[0].TotalBalance)
	assert.True(t, records[0].TotalWithdrawals.IsZero())
}

func TestContributionCompounding(t *testing.T) {
	plan := &domain.Plan{
		Profile: domain.Profile{
			CurrentAge:     40,
			TargetAge:      41,
			WorkEndAge:     65,
			SSStartAge:     70,
			LifeExpectancy: 85,
			StartYear:      2030,
			WorkIncome:     decimal.NewFromInt(100000),
		},
		Accounts: []domain.AccountBucket{
			{
				Name:                "Brokerage",
				Type:                domain.AccountTaxable,
				AnnualReturn:        decimal.NewFromFloat(0.07),
				WithdrawalPriority:  1,
				PlannedContribution: decimal.NewFromInt(5000),
			},
		},
	}

	records := newProjectionState(plan).project()
	require.Len(t, records, 2)

	assert.True(t, records[0].TotalBalance.Equal(decimal.NewFromInt(5350)),
		"year 1: 5,000 * 1.07, got %s", records[0].TotalBalance)
	assert.True(t, records[1].TotalBalance.Equal(decimal.NewFromFloat(11074.50)),
		"year 2: (5,350 + 5,000) * 1.07, got %s", records[1].TotalBalance)
	assert.True(t, records[0].Account("Brokerage").Contribution.Equal(decimal.NewFromInt(5000)))
}

func TestDeficitWithdrawalOrder(t *testing.T) {
	plan := &domain.Plan{
		Profile: domain.Profile{
			CurrentAge:     60,
			TargetAge:      60,
			WorkEndAge:     60,
			SSStartAge:     70,
			LifeExpectancy: 85,
			StartYear:      2030,
		},
		Accounts: []domain.AccountBucket{
			{Name: "IRA", Type: domain.AccountTraditionalIndividual, Balance: decimal.NewFromInt(50000), WithdrawalPriority: 2},
			{Name: "Savings", Type: domain.AccountTaxable, Balance: decimal.NewFromInt(10000), WithdrawalPriority: 1},
		},
		Expenses: []domain.ExpenseCategory{
			{Name: "Living", AnnualAmount: decimal.NewFromInt(15000), Class: domain.ExpenseCore},
		},
	}

	records := newProjectionState(plan).project()
	require.Len(t, records, 1)

	rec := records[0]
	assert.True(t, rec.Account("Savings").Withdrawal.Equal(decimal.NewFromInt(10000)),
		"lower priority number drains first")
	assert.True(t, rec.Account("IRA").Withdrawal.Equal(decimal.NewFromInt(5000)),
		"next account only covers the remainder")
	assert.True(t, rec.Account("Savings").Balance.IsZero())
	assert.True(t, rec.Account("IRA").Balance.Equal(decimal.NewFromInt(45000)))
}

func TestUnmetDeficitRecordedNotBorrowed(t *testing.T) {
	plan := singleAccountPlan(5000, 0)
	plan.Expenses = []domain.ExpenseCategory{
		{Name: "Living", AnnualAmount: decimal.NewFromInt(8000), Class: domain.ExpenseCore},
	}

	st := newProjectionState(plan)
	records := st.project()
	require.Len(t, records, 1)

	rec := records[0]
	assert.True(t, rec.TotalBalance.IsZero(), "balance floors at zero")
	assert.True(t, rec.UnmetDeficit.Equal(decimal.NewFromInt(3000)),
		"shortfall is reported, not borrowed, got %s", rec.UnmetDeficit)

	kinds := warningKinds(st.warnings)
	assert.Contains(t, kinds, domain.WarnUnmetDeficit)
	assert.Contains(t, kinds, domain.WarnDepletion)
}

func TestFlexReductionFundsContributions(t *testing.T) {
	plan := &domain.Plan{
		Profile: domain.Profile{
			CurrentAge:       40,
			TargetAge:        40,
			WorkEndAge:       65,
			SSStartAge:       70,
			LifeExpectancy:   85,
			StartYear:        2030,
			WorkIncome:       decimal.NewFromInt(20000),
			MaxFlexReduction: decimal.NewFromFloat(0.5),
		},
		Accounts: []domain.AccountBucket{
			{
				Name:                "Brokerage",
				Type:                domain.AccountTaxable,
				WithdrawalPriority:  1,
				PlannedContribution: decimal.NewFromInt(8000),
			},
		},
		Expenses: []domain.ExpenseCategory{
			{Name: "Housing", AnnualAmount: decimal.NewFromInt(10000), Class: domain.ExpenseCore},
			{Name: "Travel", AnnualAmount: decimal.NewFromInt(6000), Class: domain.ExpenseFlex},
		},
	}

	st := newProjectionState(plan)
	records := st.project()
	require.Len(t, records, 1)

	rec := records[0]
	assert.True(t, rec.FlexExpenses.Equal(decimal.NewFromInt(3000)),
		"flex cut stops at the 50%% floor, got %s", rec.FlexExpenses)
	assert.True(t, rec.CoreExpenses.Equal(decimal.NewFromInt(10000)), "core is never reduced")
	assert.True(t, rec.TotalContributions.Equal(decimal.NewFromInt(7000)),
		"freed flex funds contributions, got %s", rec.TotalContributions)
	assert.True(t, rec.TotalWithdrawals.IsZero(), "contributions never trigger withdrawals")

	require.Len(t, st.warnings, 1)
	assert.Equal(t, domain.WarnUnderfundedContribution, st.warnings[0].Kind)
	assert.True(t, st.warnings[0].Amount.Equal(decimal.NewFromInt(1000)),
		"shortfall after maximum flex cut, got %s", st.warnings[0].Amount)
}

func TestPostWorkContributionUsesTotalIncome(t *testing.T) {
	plan := &domain.Plan{
		Profile: domain.Profile{
			CurrentAge:       70,
			TargetAge:        70,
			WorkEndAge:       65,
			SSStartAge:       70,
			LifeExpectancy:   85,
			StartYear:        2030,
			SSMonthlyBenefit: decimal.NewFromInt(2500), // 30,000/year
			MaxFlexReduction: decimal.NewFromFloat(0.5),
		},
		Accounts: []domain.AccountBucket{
			{
				Name:                "Roth IRA",
				Type:                domain.AccountRothIndividual,
				WithdrawalPriority:  1,
				PlannedContribution: decimal.NewFromInt(7000),
				ContributeAfterWork: true,
			},
		},
		Expenses: []domain.ExpenseCategory{
			{Name: "Living", AnnualAmount: decimal.NewFromInt(24000), Class: domain.ExpenseCore},
		},
	}

	st := newProjectionState(plan)
	records := st.project()
	require.Len(t, records, 1)

	rec := records[0]
	assert.True(t, rec.WorkIncome.IsZero())
	assert.True(t, rec.SSIncome.Equal(decimal.NewFromInt(30000)))
	assert.True(t, rec.TotalContributions.Equal(decimal.NewFromInt(6000)),
		"social security surplus funds the contribution, got %s", rec.TotalContributions)

	require.Len(t, st.warnings, 1)
	assert.Equal(t, domain.WarnUnderfundedContribution, st.warnings[0].Kind)
	assert.True(t, st.warnings[0].Amount.Equal(decimal.NewFromInt(1000)))
}

func TestRMDForcedWithoutDeficit(t *testing.T) {
	plan := &domain.Plan{
		Profile: domain.Profile{
			CurrentAge:       75,
			TargetAge:        75,
			WorkEndAge:       65,
			SSStartAge:       70,
			LifeExpectancy:   85,
			StartYear:        2030,
			SSMonthlyBenefit: decimal.NewFromInt(5000),
		},
		Accounts: []domain.AccountBucket{
			{Name: "IRA", Type: domain.AccountTraditionalIndividual, Balance: decimal.NewFromInt(246000), WithdrawalPriority: 1},
			{Name: "Roth IRA", Type: domain.AccountRothIndividual, Balance: decimal.NewFromInt(100000), WithdrawalPriority: 2},
		},
	}

	records := newProjectionState(plan).project()
	require.Len(t, records, 1)

	rec := records[0]
	// 246,000 / 24.6 at age 75
	assert.True(t, rec.Account("IRA").RMD.Equal(decimal.NewFromInt(10000)),
		"got %s", rec.Account("IRA").RMD)
	assert.True(t, rec.Account("IRA").Withdrawal.Equal(decimal.NewFromInt(10000)),
		"RMD forces a withdrawal even with no deficit")
	assert.True(t, rec.Account("IRA").Balance.Equal(decimal.NewFromInt(236000)))
	assert.True(t, rec.Account("Roth IRA").RMD.IsZero(), "Roth accounts have no RMD")
	assert.True(t, rec.Account("Roth IRA").Withdrawal.IsZero())
}

func TestRMDNotDoubledWhenDeficitAlreadyWithdrew(t *testing.T) {
	plan := &domain.Plan{
		Profile: domain.Profile{
			CurrentAge:     75,
			TargetAge:      75,
			WorkEndAge:     65,
			SSStartAge:     80,
			LifeExpectancy: 85,
			StartYear:      2030,
		},
		Accounts: []domain.AccountBucket{
			{Name: "IRA", Type: domain.AccountTraditionalIndividual, Balance: decimal.NewFromInt(246000), WithdrawalPriority: 1},
		},
		Expenses: []domain.ExpenseCategory{
			{Name: "Living", AnnualAmount: decimal.NewFromInt(25000), Class: domain.ExpenseCore},
		},
	}

	records := newProjectionState(plan).project()
	rec := records[0]

	// Deficit already withdrew 25,000, more than the 10,000 RMD.
	assert.True(t, rec.Account("IRA").Withdrawal.Equal(decimal.NewFromInt(25000)),
		"got %s", rec.Account("IRA").Withdrawal)
	assert.True(t, rec.TotalRMD.Equal(decimal.NewFromInt(10000)))
}

func TestProjectionRunsFullHorizonAfterDepletion(t *testing.T) {
	plan := singleAccountPlan(10000, 0)
	plan.Profile.TargetAge = 64
	plan.Expenses = []domain.ExpenseCategory{
		{Name: "Living", AnnualAmount: decimal.NewFromInt(8000), Class: domain.ExpenseCore},
	}

	st := newProjectionState(plan)
	records := st.project()
	require.Len(t, records, 5, "one row per year through target age, no early stop")

	assert.True(t, records[0].TotalBalance.Equal(decimal.NewFromInt(2000)))
	for _, rec := range records[1:] {
		assert.True(t, rec.TotalBalance.IsZero(), "year %d", rec.Year)
	}

	depletions := 0
	for _, w := range st.warnings {
		if w.Kind == domain.WarnDepletion {
			depletions++
		}
	}
	assert.Equal(t, 1, depletions, "depletion is reported once, not every zero year")
}

func TestIncomeBoundaries(t *testing.T) {
	plan := &domain.Plan{
		Profile: domain.Profile{
			CurrentAge:       64,
			TargetAge:        67,
			WorkEndAge:       65,
			SSStartAge:       66,
			LifeExpectancy:   85,
			StartYear:        2030,
			WorkIncome:       decimal.NewFromInt(50000),
			SSMonthlyBenefit: decimal.NewFromInt(1000),
			COLARate:         decimal.NewFromFloat(0.03),
		},
		Accounts: []domain.AccountBucket{
			{Name: "Brokerage", Type: domain.AccountTaxable, Balance: decimal.NewFromInt(1000000), WithdrawalPriority: 1},
		},
	}

	records := newProjectionState(plan).project()
	require.Len(t, records, 4)

	assert.True(t, records[0].WorkIncome.Equal(decimal.NewFromInt(50000)), "still working at 64")
	assert.True(t, records[1].WorkIncome.IsZero(), "work income stops at work-end age")
	assert.True(t, records[1].SSIncome.IsZero(), "no benefits before ss start age")
	assert.True(t, records[2].SSIncome.Equal(decimal.NewFromInt(12000)), "first benefit year is the base amount")
	assert.True(t, records[3].SSIncome.Equal(decimal.NewFromInt(12360)), "COLA applies after the first benefit year")
}

func TestExpenseInflation(t *testing.T) {
	plan := singleAccountPlan(1000000, 0)
	plan.Profile.TargetAge = 62
	plan.Profile.InflationRate = decimal.NewFromFloat(0.10)
	plan.Expenses = []domain.ExpenseCategory{
		{Name: "Living", AnnualAmount: decimal.NewFromInt(1000), Class: domain.ExpenseCore},
	}

	records := newProjectionState(plan).project()
	require.Len(t, records, 3)

	assert.True(t, records[0].CoreExpenses.Equal(decimal.NewFromInt(1000)))
	assert.True(t, records[1].CoreExpenses.Equal(decimal.NewFromInt(1100)))
	assert.True(t, records[2].CoreExpenses.Equal(decimal.NewFromInt(1210)))
}

func TestCallerPlanNotMutated(t *testing.T) {
	plan := singleAccountPlan(200000, 0.07)
	plan.Expenses = []domain.ExpenseCategory{
		{Name: "Living", AnnualAmount: decimal.NewFromInt(30000), Class: domain.ExpenseCore},
	}

	_ = newProjectionState(plan).project()

	assert.True(t, plan.Accounts[0].Balance.Equal(decimal.NewFromInt(200000)),
		"projection works on copies, caller balances stay put")
}

func warningKinds(warnings []domain.Warning) []domain.WarningKind {
	kinds := make([]domain.WarningKind, 0, len(warnings))
	for _, w := range warnings {
		kinds = append(kinds, w.Kind)
	}
	return kinds
}
