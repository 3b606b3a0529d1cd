// Package store persists per-user plans and balance snapshots in SQLite.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glidepath-tools/glidepath/internal/domain"
	"github.com/shopspring/decimal"

	_ "modernc.org/sqlite" // register sqlite driver
)

const dateLayout = "2006-01-02"

// Store provides SQLite-backed plan persistence. All money columns are
// stored as decimal strings, never floats.
type Store struct {
	db *sql.DB
}

// Open opens or creates the plan database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening plan db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// HasUser reports whether the user has a stored profile.
func (s *Store) HasUser(username string) (bool, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM profiles WHERE username = ?", username).Scan(&n)
	return n > 0, err
}

// SaveProfile stores or replaces a user's profile.
func (s *Store) SaveProfile(username string, p domain.Profile) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO profiles
		(username, current_age, target_age, work_end_age, ss_start_age, life_expectancy,
		 start_year, work_income, ss_monthly_benefit, inflation_rate, cola_rate, max_flex_reduction)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		username, p.CurrentAge, p.TargetAge, p.WorkEndAge, p.SSStartAge, p.LifeExpectancy,
		p.StartYear, p.WorkIncome.String(), p.SSMonthlyBenefit.String(),
		p.InflationRate.String(), p.COLARate.String(), p.MaxFlexReduction.String(),
	)
	return err
}

// LoadProfile reads a user's profile.
func (s *Store) LoadProfile(username string) (domain.Profile, error) {
	var p domain.Profile
	var workIncome, ssBenefit, inflation, cola, maxFlex string
	err := s.db.QueryRow(`SELECT current_age, target_age, work_end_age, ss_start_age,
		life_expectancy, start_year, work_income, ss_monthly_benefit, inflation_rate,
		cola_rate, max_flex_reduction FROM profiles WHERE username = ?`, username).Scan(
		&p.CurrentAge, &p.TargetAge, &p.WorkEndAge, &p.SSStartAge,
		&p.LifeExpectancy, &p.StartYear, &workIncome, &ssBenefit, &inflation,
		&cola, &maxFlex,
	)
	if err == sql.ErrNoRows {
		return p, fmt.Errorf("no profile stored for user %q", username)
	}
	if err != nil {
		return p, err
	}

	fields := []struct {
		dst *decimal.Decimal
		src string
	}{
		{&p.WorkIncome, workIncome},
		{&p.SSMonthlyBenefit, ssBenefit},
		{&p.InflationRate, inflation},
		{&p.COLARate, cola},
		{&p.MaxFlexReduction, maxFlex},
	}
	for _, f := range fields {
		d, err := decimal.NewFromString(f.src)
		if err != nil {
			return p, fmt.Errorf("corrupt decimal %q in profile for %q: %w", f.src, username, err)
		}
		*f.dst = d
	}
	return p, nil
}

// SaveAccounts replaces the user's account list, preserving order.
func (s *Store) SaveAccounts(username string, accounts []domain.AccountBucket) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM accounts WHERE username = ?", username); err != nil {
		return err
	}
	for i, a := range accounts {
		afterWork := 0
		if a.ContributeAfterWork {
			afterWork = 1
		}
		_, err := tx.Exec(`INSERT INTO accounts
			(username, position, name, account_type, balance, annual_return,
			 withdrawal_priority, planned_contribution, contribute_after_work)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			username, i, a.Name, string(a.Type), a.Balance.String(), a.AnnualReturn.String(),
			a.WithdrawalPriority, a.PlannedContribution.String(), afterWork,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LoadAccounts reads the user's accounts in stored order.
func (s *Store) LoadAccounts(username string) ([]domain.AccountBucket, error) {
	rows, err := s.db.Query(`SELECT name, account_type, balance, annual_return,
		withdrawal_priority, planned_contribution, contribute_after_work
		FROM accounts WHERE username = ? ORDER BY position`, username)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var accounts []domain.AccountBucket
	for rows.Next() {
		var a domain.AccountBucket
		var typ, balance, ret, contribution string
		var afterWork int
		if err := rows.Scan(&a.Name, &typ, &balance, &ret, &a.WithdrawalPriority, &contribution, &afterWork); err != nil {
			return nil, err
		}
		a.Type = domain.AccountType(typ)
		a.ContributeAfterWork = afterWork != 0
		if a.Balance, err = decimal.NewFromString(balance); err != nil {
			return nil, fmt.Errorf("corrupt balance for account %q: %w", a.Name, err)
		}
		if a.AnnualReturn, err = decimal.NewFromString(ret); err != nil {
			return nil, fmt.Errorf("corrupt return for account %q: %w", a.Name, err)
		}
		if a.PlannedContribution, err = decimal.NewFromString(contribution); err != nil {
			return nil, fmt.Errorf("corrupt contribution for account %q: %w", a.Name, err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// SaveExpenses replaces the user's expense categories, preserving order.
func (s *Store) SaveExpenses(username string, expenses []domain.ExpenseCategory) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM expenses WHERE username = ?", username); err != nil {
		return err
	}
	for i, e := range expenses {
		_, err := tx.Exec(`INSERT INTO expenses (username, position, name, annual_amount, class)
			VALUES (?, ?, ?, ?, ?)`,
			username, i, e.Name, e.AnnualAmount.String(), string(e.Class),
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LoadExpenses reads the user's expense categories in stored order.
func (s *Store) LoadExpenses(username string) ([]domain.ExpenseCategory, error) {
	rows, err := s.db.Query(`SELECT name, annual_amount, class
		FROM expenses WHERE username = ? ORDER BY position`, username)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var expenses []domain.ExpenseCategory
	for rows.Next() {
		var e domain.ExpenseCategory
		var amount, class string
		if err := rows.Scan(&e.Name, &amount, &class); err != nil {
			return nil, err
		}
		e.Class = domain.ExpenseClass(class)
		if e.AnnualAmount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("corrupt amount for expense %q: %w", e.Name, err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// SaveEvents replaces the user's one-time events.
func (s *Store) SaveEvents(username string, events []domain.OneTimeEvent) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM events WHERE username = ?", username); err != nil {
		return err
	}
	for _, ev := range events {
		_, err := tx.Exec(`INSERT INTO events (username, year, label, amount, account)
			VALUES (?, ?, ?, ?, ?)`,
			username, ev.Year, ev.Label, ev.Amount.String(), ev.Account,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LoadEvents reads the user's one-time events ordered by year.
func (s *Store) LoadEvents(username string) ([]domain.OneTimeEvent, error) {
	rows, err := s.db.Query(`SELECT year, label, amount, account
		FROM events WHERE username = ? ORDER BY year, id`, username)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var events []domain.OneTimeEvent
	for rows.Next() {
		var ev domain.OneTimeEvent
		var amount string
		if err := rows.Scan(&ev.Year, &ev.Label, &amount, &ev.Account); err != nil {
			return nil, err
		}
		if ev.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("corrupt amount for event %q: %w", ev.Label, err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// AddSnapshot appends one balance snapshot and returns its id.
func (s *Store) AddSnapshot(username string, snap domain.AccountSnapshot) (int64, error) {
	res, err := s.db.Exec(`INSERT INTO snapshots
		(username, account, snapshot_date, amount_contributed, total_value)
		VALUES (?, ?, ?, ?, ?)`,
		username, snap.Account, snap.Date.Format(dateLayout),
		snap.Contributed.String(), snap.TotalValue.String(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Snapshot pairs a stored snapshot with its row id so callers can delete it.
type Snapshot struct {
	ID int64
	domain.AccountSnapshot
}

// ListSnapshots reads the user's snapshots ordered by date then id.
func (s *Store) ListSnapshots(username string) ([]Snapshot, error) {
	rows, err := s.db.Query(`SELECT id, account, snapshot_date, amount_contributed, total_value
		FROM snapshots WHERE username = ? ORDER BY snapshot_date, id`, username)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var snaps []Snapshot
	for rows.Next() {
		var sn Snapshot
		var dateStr, contributed, total string
		if err := rows.Scan(&sn.ID, &sn.Account, &dateStr, &contributed, &total); err != nil {
			return nil, err
		}
		if sn.Date, err = time.Parse(dateLayout, dateStr); err != nil {
			return nil, fmt.Errorf("corrupt date %q in snapshot %d: %w", dateStr, sn.ID, err)
		}
		if sn.Contributed, err = decimal.NewFromString(contributed); err != nil {
			return nil, fmt.Errorf("corrupt contributed amount in snapshot %d: %w", sn.ID, err)
		}
		if sn.TotalValue, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("corrupt total value in snapshot %d: %w", sn.ID, err)
		}
		snaps = append(snaps, sn)
	}
	return snaps, rows.Err()
}

// LatestSnapshot returns the most recent snapshot recorded for one
// account, or nil when the account has none.
func (s *Store) LatestSnapshot(username, account string) (*Snapshot, error) {
	var sn Snapshot
	var dateStr, contributed, total string
	err := s.db.QueryRow(`SELECT id, account, snapshot_date, amount_contributed, total_value
		FROM snapshots WHERE username = ? AND account = ?
		ORDER BY snapshot_date DESC, id DESC LIMIT 1`, username, account).Scan(
		&sn.ID, &sn.Account, &dateStr, &contributed, &total,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if sn.Date, err = time.Parse(dateLayout, dateStr); err != nil {
		return nil, fmt.Errorf("corrupt date %q in snapshot %d: %w", dateStr, sn.ID, err)
	}
	if sn.Contributed, err = decimal.NewFromString(contributed); err != nil {
		return nil, fmt.Errorf("corrupt contributed amount in snapshot %d: %w", sn.ID, err)
	}
	if sn.TotalValue, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("corrupt total value in snapshot %d: %w", sn.ID, err)
	}
	return &sn, nil
}

// DeleteSnapshot removes one snapshot by id.
func (s *Store) DeleteSnapshot(username string, id int64) error {
	res, err := s.db.Exec("DELETE FROM snapshots WHERE username = ? AND id = ?", username, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no snapshot %d for user %q", id, username)
	}
	return nil
}

// RenameSnapshotAccount repoints snapshots from one account name to another,
// keeping history intact across an account rename.
func (s *Store) RenameSnapshotAccount(username, oldName, newName string) (int64, error) {
	res, err := s.db.Exec(`UPDATE snapshots SET account = ?
		WHERE username = ? AND account = ?`, newName, username, oldName)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// LoadPlan assembles a complete plan for the user from all tables.
func (s *Store) LoadPlan(username string) (*domain.Plan, error) {
	profile, err := s.LoadProfile(username)
	if err != nil {
		return nil, err
	}
	accounts, err := s.LoadAccounts(username)
	if err != nil {
		return nil, err
	}
	expenses, err := s.LoadExpenses(username)
	if err != nil {
		return nil, err
	}
	events, err := s.LoadEvents(username)
	if err != nil {
		return nil, err
	}
	snaps, err := s.ListSnapshots(username)
	if err != nil {
		return nil, err
	}
	history := make([]domain.AccountSnapshot, 0, len(snaps))
	for _, sn := range snaps {
		history = append(history, sn.AccountSnapshot)
	}

	return &domain.Plan{
		Profile:  profile,
		Accounts: accounts,
		Expenses: expenses,
		Events:   events,
		History:  history,
	}, nil
}

// SavePlan stores a complete plan for the user, replacing prior data.
// Snapshots are append-only and are not touched here.
func (s *Store) SavePlan(username string, plan *domain.Plan) error {
	if err := s.SaveProfile(username, plan.Profile); err != nil {
		return err
	}
	if err := s.SaveAccounts(username, plan.Accounts); err != nil {
		return err
	}
	if err := s.SaveExpenses(username, plan.Expenses); err != nil {
		return err
	}
	return s.SaveEvents(username, plan.Events)
}

// EnsureDefaults seeds a starter plan for a new user. Existing users are
// left alone.
func (s *Store) EnsureDefaults(username string, startYear int) error {
	exists, err := s.HasUser(username)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return s.SavePlan(username, DefaultPlan(startYear))
}

// DefaultPlan is the starter plan seeded for new users: a modest household
// early in its accumulation years.
func DefaultPlan(startYear int) *domain.Plan {
	return &domain.Plan{
		Profile: domain.Profile{
			CurrentAge:       45,
			TargetAge:        90,
			WorkEndAge:       68,
			SSStartAge:       68,
			LifeExpectancy:   85,
			StartYear:        startYear,
			WorkIncome:       decimal.NewFromInt(35000),
			SSMonthlyBenefit: decimal.NewFromInt(2500),
			InflationRate:    decimal.NewFromFloat(0.03),
			COLARate:         decimal.NewFromFloat(0.025),
			MaxFlexReduction: decimal.NewFromFloat(0.50),
		},
		Accounts: []domain.AccountBucket{
			{
				Name:                "401k",
				Type:                domain.AccountEmployerDeferred,
				Balance:             decimal.NewFromInt(2000),
				AnnualReturn:        decimal.NewFromFloat(0.08),
				WithdrawalPriority:  1,
				PlannedContribution: decimal.NewFromInt(2700),
			},
			{
				Name:                "Roth IRA",
				Type:                domain.AccountRothIndividual,
				Balance:             decimal.NewFromInt(500),
				AnnualReturn:        decimal.NewFromFloat(0.08),
				WithdrawalPriority:  2,
				PlannedContribution: decimal.NewFromInt(700),
			},
		},
		Expenses: []domain.ExpenseCategory{
			{Name: "Housing", AnnualAmount: decimal.NewFromInt(12000), Class: domain.ExpenseCore},
			{Name: "Food", AnnualAmount: decimal.NewFromInt(6000), Class: domain.ExpenseCore},
			{Name: "Healthcare", AnnualAmount: decimal.NewFromInt(800), Class: domain.ExpenseCore},
			{Name: "Transportation", AnnualAmount: decimal.NewFromInt(3600), Class: domain.ExpenseCore},
			{Name: "Travel", AnnualAmount: decimal.NewFromInt(1000), Class: domain.ExpenseFlex},
			{Name: "Entertainment", AnnualAmount: decimal.NewFromInt(2000), Class: domain.ExpenseFlex},
		},
	}
}
