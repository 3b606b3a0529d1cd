package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/glidepath-tools/glidepath/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePlan = `
profile:
  current_age: 50
  target_age: 90
  work_end_age: 65
  ss_start_age: 67
  life_expectancy: 85
  start_year: 2030
  work_income: 80000
  ss_monthly_benefit: 2200
  inflation_rate: 0.03
  cola_rate: 0.025
  max_flex_reduction: 0.5
accounts:
  - name: 401k
    type: employer_deferred
    balance: 150000.25
    annual_return: 0.07
    withdrawal_priority: 1
    planned_contribution: 20000
  - name: Roth IRA
    type: roth_individual
    balance: 40000
    annual_return: 0.07
    withdrawal_priority: 2
    planned_contribution: 7000
    contribute_after_work: true
expenses:
  - name: Housing
    annual_amount: 24000
    class: CORE
  - name: Travel
    annual_amount: 6000
    class: FLEX
events:
  - year: 2035
    label: new roof
    amount: 18000
    account: 401k
`

func TestLoadParsesFullPlan(t *testing.T) {
	plan, err := NewLoader().Load([]byte(samplePlan))
	require.NoError(t, err)

	assert.Equal(t, 50, plan.Profile.CurrentAge)
	assert.True(t, plan.Profile.WorkIncome.Equal(decimal.NewFromInt(80000)))
	assert.True(t, plan.Profile.MaxFlexReduction.Equal(decimal.NewFromFloat(0.5)))

	require.Len(t, plan.Accounts, 2)
	assert.Equal(t, domain.AccountEmployerDeferred, plan.Accounts[0].Type)
	assert.True(t, plan.Accounts[0].Balance.Equal(decimal.NewFromFloat(150000.25)))
	assert.True(t, plan.Accounts[1].ContributeAfterWork)

	require.Len(t, plan.Expenses, 2)
	assert.Equal(t, domain.ExpenseFlex, plan.Expenses[1].Class)

	require.Len(t, plan.Events, 1)
	assert.Equal(t, "401k", plan.Events[0].Account)
	assert.True(t, plan.Events[0].Amount.Equal(decimal.NewFromInt(18000)))
}

func TestLoadDefaultsStartYear(t *testing.T) {
	withoutStartYear := []byte(`
profile:
  current_age: 50
  target_age: 90
  work_end_age: 65
  ss_start_age: 67
  life_expectancy: 85
accounts:
  - name: Savings
    type: taxable
    balance: 1000
`)

	loader := NewLoader()
	loader.Now = func() time.Time { return time.Date(2031, 4, 1, 0, 0, 0, 0, time.UTC) }

	plan, err := loader.Load(withoutStartYear)
	require.NoError(t, err)
	assert.Equal(t, 2031, plan.Profile.StartYear)
}

func TestLoadDefaultsMaxFlexReduction(t *testing.T) {
	withoutFloor := []byte(`
profile:
  current_age: 50
  target_age: 90
  work_end_age: 65
  ss_start_age: 67
  life_expectancy: 85
  start_year: 2030
accounts:
  - name: Savings
    type: taxable
    balance: 1000
`)

	plan, err := NewLoader().Load(withoutFloor)
	require.NoError(t, err)
	assert.True(t, plan.Profile.MaxFlexReduction.Equal(decimal.NewFromFloat(0.50)),
		"omitted flex floor falls back to the standard 50%% cut, got %s", plan.Profile.MaxFlexReduction)
}

func TestLoadKeepsExplicitZeroFlexReduction(t *testing.T) {
	withZeroFloor := []byte(`
profile:
  current_age: 50
  target_age: 90
  work_end_age: 65
  ss_start_age: 67
  life_expectancy: 85
  start_year: 2030
  max_flex_reduction: 0
accounts:
  - name: Savings
    type: taxable
    balance: 1000
`)

	plan, err := NewLoader().Load(withZeroFloor)
	require.NoError(t, err)
	assert.True(t, plan.Profile.MaxFlexReduction.IsZero(),
		"an explicit zero means flex spending is untouchable, got %s", plan.Profile.MaxFlexReduction)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	_, err := NewLoader().Load([]byte("profile: [not: a: map"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestLoadRejectsInvalidPlan(t *testing.T) {
	invalid := []byte(`
profile:
  current_age: 50
  target_age: 40
  life_expectancy: 85
  start_year: 2030
accounts:
  - name: Savings
    type: taxable
    balance: 1000
`)
	_, err := NewLoader().Load(invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "target age")
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(samplePlan), 0o600))

	plan, err := NewLoader().LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2030, plan.Profile.StartYear)

	_, err = NewLoader().LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
