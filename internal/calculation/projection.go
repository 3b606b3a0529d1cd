package calculation

import (
	"fmt"
	"sort"

	"github.com/glidepath-tools/glidepath/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	decimalOne    = decimal.NewFromInt(1)
	decimalZero   = decimal.Zero
	decimalTwelve = decimal.NewFromInt(12)
)

// projectionState carries the cross-year state of one run: the mutable
// balance vector plus the fixed account ordering. Accounts are copied at
// construction so a plan can be re-run for what-if comparisons without the
// caller seeing mutated balances.
type projectionState struct {
	profile  domain.Profile
	accounts []domain.AccountBucket
	events   []domain.OneTimeEvent

	balances map[string]decimal.Decimal
	// withdrawalOrder holds account names in ascending withdrawal priority,
	// ties broken by declaration order.
	withdrawalOrder []string

	coreBase decimal.Decimal
	flexBase decimal.Decimal

	warnings []domain.Warning
	depleted bool
}

// yearState is one year's partial result, filled in by the stage methods in
// a fixed sequence. The ordering is a correctness contract: events apply
// before returns, and returns always come last.
type yearState struct {
	index int // years since plan start
	age   int
	year  int

	workIncome  decimal.Decimal
	ssIncome    decimal.Decimal
	totalIncome decimal.Decimal

	coreExpenses   decimal.Decimal
	flexFull       decimal.Decimal
	flexActual     decimal.Decimal
	flexMultiplier decimal.Decimal

	netEvent       decimal.Decimal // signed, positive = outflow
	appliedEvent   decimal.Decimal // portion settled directly against accounts
	eventByAccount map[string]decimal.Decimal

	startBalances map[string]decimal.Decimal // balances at the top of the year

	desired       map[string]decimal.Decimal
	desiredTotal  decimal.Decimal
	contributions map[string]decimal.Decimal
	fundedTotal   decimal.Decimal

	withdrawals     map[string]decimal.Decimal
	withdrawalTotal decimal.Decimal
	rmds            map[string]decimal.Decimal
	rmdTotal        decimal.Decimal
	unmetDeficit    decimal.Decimal

	growth      map[string]decimal.Decimal
	growthTotal decimal.Decimal
}

func newProjectionState(plan *domain.Plan) *projectionState {
	st := &projectionState{
		profile:  plan.Profile,
		accounts: append([]domain.AccountBucket(nil), plan.Accounts...),
		events:   append([]domain.OneTimeEvent(nil), plan.Events...),
		balances: make(map[string]decimal.Decimal, len(plan.Accounts)),
	}

	priorities := make(map[string]int, len(st.accounts))
	for _, a := range st.accounts {
		st.balances[a.Name] = a.Balance
		st.withdrawalOrder = append(st.withdrawalOrder, a.Name)
		priorities[a.Name] = a.WithdrawalPriority
	}
	sort.SliceStable(st.withdrawalOrder, func(i, j int) bool {
		return priorities[st.withdrawalOrder[i]] < priorities[st.withdrawalOrder[j]]
	})

	st.coreBase, st.flexBase = plan.BaseExpenses()

	return st
}

// project runs the per-year pipeline from current age to target age
// inclusive. It never stops early: once the portfolio is exhausted it keeps
// emitting zero-balance rows so callers see the full horizon.
func (st *projectionState) project() []domain.YearRecord {
	years := st.profile.TargetAge - st.profile.CurrentAge + 1
	records := make([]domain.YearRecord, 0, years)

	for i := 0; i < years; i++ {
		ys := &yearState{
			index:          i,
			age:            st.profile.CurrentAge + i,
			year:           st.profile.StartYear + i,
			flexMultiplier: decimalOne,
			eventByAccount: make(map[string]decimal.Decimal),
			startBalances:  make(map[string]decimal.Decimal, len(st.accounts)),
			desired:        make(map[string]decimal.Decimal),
			contributions:  make(map[string]decimal.Decimal),
			withdrawals:    make(map[string]decimal.Decimal),
			rmds:           make(map[string]decimal.Decimal),
			growth:         make(map[string]decimal.Decimal),
		}
		for name, bal := range st.balances {
			ys.startBalances[name] = bal
		}

		st.stageIncome(ys)
		st.stageExpenses(ys)
		st.stageEvents(ys)
		st.stageContributions(ys)
		st.stageFunding(ys)
		st.stageDeficit(ys)
		st.stageRMD(ys)
		st.stageReturns(ys)

		records = append(records, st.record(ys))
	}

	return records
}

// stageIncome computes work income and Social Security. Work income grows
// with inflation from plan start and stops at the work-end age. Social
// Security begins at the configured age and compounds by COLA for each year
// on benefits.
func (st *projectionState) stageIncome(ys *yearState) {
	p := st.profile

	ys.workIncome = decimalZero
	if ys.age < p.WorkEndAge {
		ys.workIncome = p.WorkIncome.Mul(compound(p.InflationRate, ys.index))
	}

	ys.ssIncome = decimalZero
	if ys.age >= p.SSStartAge {
		ys.ssIncome = p.SSMonthlyBenefit.Mul(decimalTwelve).Mul(compound(p.COLARate, ys.age-p.SSStartAge))
	}

	ys.totalIncome = ys.workIncome.Add(ys.ssIncome)
}

// stageExpenses inflates the CORE and FLEX base totals from plan start.
// FLEX starts the year at its full inflated amount; the funding stage may
// reduce it.
func (st *projectionState) stageExpenses(ys *yearState) {
	multiplier := compound(st.profile.InflationRate, ys.index)
	ys.coreExpenses = st.coreBase.Mul(multiplier)
	ys.flexFull = st.flexBase.Mul(multiplier)
	ys.flexActual = ys.flexFull
}

// stageEvents applies this year's one-time transactions to their target
// accounts, before any return touches those balances. Outflows are capped
// at the account's available balance; an uncovered remainder stays in the
// year's cash position and falls through to deficit resolution.
func (st *projectionState) stageEvents(ys *yearState) {
	for _, ev := range st.events {
		if ev.Year != ys.year {
			continue
		}
		ys.netEvent = ys.netEvent.Add(ev.Amount)
		applied := ev.Amount
		if applied.GreaterThan(decimalZero) {
			applied = decimal.Min(applied, st.balances[ev.Account])
		}
		st.balances[ev.Account] = st.balances[ev.Account].Sub(applied)
		ys.appliedEvent = ys.appliedEvent.Add(applied)
		ys.eventByAccount[ev.Account] = ys.eventByAccount[ev.Account].Add(applied)
	}
}

// stageContributions determines each account's desired contribution for the
// year from its type and age rules. Whether the desire can actually be
// funded is decided in the funding stage.
func (st *projectionState) stageContributions(ys *yearState) {
	for i := range st.accounts {
		a := &st.accounts[i]
		if a.PlannedContribution.IsZero() || !a.CanContribute(ys.age, st.profile.WorkEndAge) {
			continue
		}
		ys.desired[a.Name] = a.PlannedContribution
		ys.desiredTotal = ys.desiredTotal.Add(a.PlannedContribution)
	}
}

// stageFunding funds desired contributions from the year's cash surplus,
// cutting FLEX spending down to its configured floor when the surplus falls
// short. Contributions outrank discretionary spending but never CORE
// expenses. A shortfall that survives the maximum FLEX cut is recorded as
// an underfunded-contribution warning per account.
func (st *projectionState) stageFunding(ys *yearState) {
	surplus := ys.totalIncome.Sub(ys.coreExpenses).Sub(ys.flexFull).Sub(ys.netEvent)

	if surplus.LessThan(ys.desiredTotal) && ys.flexFull.GreaterThan(decimalZero) {
		need := ys.desiredTotal.Sub(surplus)
		cut := decimal.Min(need, ys.flexFull.Mul(st.profile.MaxFlexReduction))
		if cut.GreaterThan(decimalZero) {
			ys.flexActual = ys.flexFull.Sub(cut)
			ys.flexMultiplier = ys.flexActual.Div(ys.flexFull)
			surplus = surplus.Add(cut)
		}
	}

	ys.fundedTotal = decimal.Min(ys.desiredTotal, decimal.Max(surplus, decimalZero))

	remaining := ys.fundedTotal
	for _, name := range st.withdrawalOrder {
		want, ok := ys.desired[name]
		if !ok {
			continue
		}
		take := decimal.Min(want, remaining)
		if take.GreaterThan(decimalZero) {
			ys.contributions[name] = take
			st.balances[name] = st.balances[name].Add(take)
			remaining = remaining.Sub(take)
		}
		if take.LessThan(want) {
			shortfall := want.Sub(take)
			st.warn(domain.Warning{
				Kind:    domain.WarnUnderfundedContribution,
				Year:    ys.year,
				Age:     ys.age,
				Ref:     name,
				Amount:  shortfall,
				Message: fmt.Sprintf("contribution to %s underfunded by %s in %d", name, shortfall.StringFixed(2), ys.year),
			})
		}
	}
}

// stageDeficit withdraws any remaining cash shortfall from accounts in
// strict ascending priority order, each account giving up to its full
// balance before the next is touched. Event amounts already settled against
// their target accounts are not withdrawn a second time; only the uncovered
// remainder of an event enters the deficit. A deficit that outlives every
// account is recorded as unmet; balances never go negative.
func (st *projectionState) stageDeficit(ys *yearState) {
	uncoveredEvent := ys.netEvent.Sub(ys.appliedEvent)
	deficit := ys.coreExpenses.Add(ys.flexActual).Add(ys.fundedTotal).Add(uncoveredEvent).Sub(ys.totalIncome)
	if deficit.LessThanOrEqual(decimalZero) {
		return
	}

	for _, name := range st.withdrawalOrder {
		if deficit.LessThanOrEqual(decimalZero) {
			break
		}
		w := decimal.Min(deficit, st.balances[name])
		if w.GreaterThan(decimalZero) {
			ys.withdrawals[name] = ys.withdrawals[name].Add(w)
			ys.withdrawalTotal = ys.withdrawalTotal.Add(w)
			st.balances[name] = st.balances[name].Sub(w)
			deficit = deficit.Sub(w)
		}
	}

	if deficit.GreaterThan(decimalZero) {
		ys.unmetDeficit = deficit
		st.warn(domain.Warning{
			Kind:    domain.WarnUnmetDeficit,
			Year:    ys.year,
			Age:     ys.age,
			Amount:  deficit,
			Message: fmt.Sprintf("deficit of %s unmet after exhausting all accounts in %d", deficit.StringFixed(2), ys.year),
		})
	}
}

// stageRMD forces the required minimum distribution for eligible accounts.
// The requirement is computed from the balance at the top of the year,
// before any other transaction touched it. Only the portion not already
// covered by deficit withdrawals leaves the account, capped at what it
// still holds; the excess cash exits the modeled portfolio.
func (st *projectionState) stageRMD(ys *yearState) {
	if ys.age < RMDStartAge {
		return
	}
	for i := range st.accounts {
		a := &st.accounts[i]
		rmd := RequiredMinimumDistribution(a.Type, ys.startBalances[a.Name], ys.age)
		if rmd.LessThanOrEqual(decimalZero) {
			continue
		}
		ys.rmds[a.Name] = rmd
		ys.rmdTotal = ys.rmdTotal.Add(rmd)

		already := ys.withdrawals[a.Name]
		if rmd.GreaterThan(already) {
			extra := decimal.Min(rmd.Sub(already), st.balances[a.Name])
			if extra.GreaterThan(decimalZero) {
				ys.withdrawals[a.Name] = already.Add(extra)
				ys.withdrawalTotal = ys.withdrawalTotal.Add(extra)
				st.balances[a.Name] = st.balances[a.Name].Sub(extra)
			}
		}
	}
}

// stageReturns applies each account's annual return to whatever balance
// persisted through the year's transactions. Always the last stage.
func (st *projectionState) stageReturns(ys *yearState) {
	for i := range st.accounts {
		a := &st.accounts[i]
		g := st.balances[a.Name].Mul(a.AnnualReturn)
		ys.growth[a.Name] = g
		ys.growthTotal = ys.growthTotal.Add(g)
		st.balances[a.Name] = st.balances[a.Name].Add(g)
	}
}

// record assembles the finished YearRecord and notes first depletion.
func (st *projectionState) record(ys *yearState) domain.YearRecord {
	rec := domain.YearRecord{
		Year: ys.year,
		Age:  ys.age,

		WorkIncome:  ys.workIncome,
		SSIncome:    ys.ssIncome,
		TotalIncome: ys.totalIncome,

		CoreExpenses:     ys.coreExpenses,
		FlexExpensesFull: ys.flexFull,
		FlexExpenses:     ys.flexActual,
		FlexMultiplier:   ys.flexMultiplier,
		TotalExpenses:    ys.coreExpenses.Add(ys.flexActual),

		EventAmount: ys.netEvent,

		TotalContributions: ys.fundedTotal,
		TotalWithdrawals:   ys.withdrawalTotal,
		TotalRMD:           ys.rmdTotal,
		UnmetDeficit:       ys.unmetDeficit,

		TotalGrowth: ys.growthTotal,
	}

	total := decimalZero
	for _, a := range st.accounts {
		bal := st.balances[a.Name]
		total = total.Add(bal)
		rec.Accounts = append(rec.Accounts, domain.AccountYear{
			Name:         a.Name,
			Contribution: ys.contributions[a.Name],
			Withdrawal:   ys.withdrawals[a.Name],
			RMD:          ys.rmds[a.Name],
			EventAmount:  ys.eventByAccount[a.Name],
			Growth:       ys.growth[a.Name],
			Balance:      bal,
		})
	}
	rec.TotalBalance = total

	base := total.Sub(ys.growthTotal)
	if base.GreaterThan(decimalZero) {
		rec.ReturnRate = ys.growthTotal.Div(base)
		rec.ReturnRateKnown = true
	}

	if !st.depleted && rec.Depleted() {
		st.depleted = true
		st.warn(domain.Warning{
			Kind:    domain.WarnDepletion,
			Year:    ys.year,
			Age:     ys.age,
			Message: fmt.Sprintf("portfolio depleted at age %d (%d)", ys.age, ys.year),
		})
	}

	return rec
}

func (st *projectionState) warn(w domain.Warning) {
	st.warnings = append(st.warnings, w)
}

// compound returns (1+rate)^n.
func compound(rate decimal.Decimal, n int) decimal.Decimal {
	if n == 0 {
		return decimalOne
	}
	return decimalOne.Add(rate).Pow(decimal.NewFromInt(int64(n)))
}
