package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/glidepath-tools/glidepath/internal/calculation"
	"github.com/glidepath-tools/glidepath/internal/config"
	"github.com/glidepath-tools/glidepath/internal/domain"
	"github.com/glidepath-tools/glidepath/internal/output"
	"github.com/glidepath-tools/glidepath/internal/store"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

var (
	flagDB     string
	flagUser   string
	flagFormat string
	flagOut    string
)

var rootCmd = &cobra.Command{
	Use:   "glidepath",
	Short: "Household retirement projection and plan analysis",
	Long:  "Glidepath projects household finances year by year from historical snapshots through a configurable horizon and grades the plan's health.",
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "glidepath.db"
	}
	return filepath.Join(home, ".local", "share", "glidepath", "glidepath.db")
}

// loadPlan resolves the plan either from a YAML file argument or from the
// per-user database when --user is set.
func loadPlan(args []string) (*domain.Plan, error) {
	if flagUser != "" {
		st, err := store.Open(flagDB)
		if err != nil {
			return nil, err
		}
		defer func() { _ = st.Close() }()

		if err := st.EnsureDefaults(flagUser, time.Now().Year()); err != nil {
			return nil, err
		}
		plan, err := st.LoadPlan(flagUser)
		if err != nil {
			return nil, err
		}
		if plan.Profile.StartYear == 0 {
			plan.Profile.StartYear = time.Now().Year()
		}
		return plan, nil
	}

	if len(args) != 1 {
		return nil, fmt.Errorf("provide a plan file or --user")
	}
	return config.NewLoader().LoadFromFile(args[0])
}

var projectCmd = &cobra.Command{
	Use:   "project [plan-file]",
	Short: "Run the year-by-year projection and plan analysis",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, err := loadPlan(args)
		if err != nil {
			return err
		}

		result, err := calculation.NewEngine().RunPlan(plan)
		if err != nil {
			return err
		}

		formatter, err := output.GetFormatterByName(flagFormat)
		if err != nil {
			return err
		}

		w := os.Stdout
		if flagOut != "" {
			f, err := os.Create(flagOut)
			if err != nil {
				return fmt.Errorf("creating output file: %w", err)
			}
			defer func() { _ = f.Close() }()
			w = f
			logger.Info("writing projection", "format", formatter.Name(), "path", flagOut)
		}

		return formatter.Write(w, result)
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [plan-file]",
	Short: "Check a plan for malformed input without running it",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, err := loadPlan(args)
		if err != nil {
			return err
		}
		fmt.Printf("plan OK: %d accounts, %d expense categories, %d events, %d snapshots\n",
			len(plan.Accounts), len(plan.Expenses), len(plan.Events), len(plan.History))
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history [plan-file]",
	Short: "Summarize recorded snapshots into yearly contribution and growth figures",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, err := loadPlan(args)
		if err != nil {
			return err
		}
		summaries := calculation.BuildYearlySummaries(plan.History, decimal.Zero)
		if len(summaries) == 0 {
			fmt.Println("no snapshots recorded")
			return nil
		}
		for _, s := range summaries {
			roi := "n/a"
			if s.ROIKnown {
				roi = output.FormatPercent(s.ROI)
			}
			fmt.Printf("%d  start %s  contributed %s  growth %s  end %s  roi %s\n",
				s.Year,
				output.FormatCurrency(s.StartingBalance),
				output.FormatCurrency(s.Contributions),
				output.FormatCurrency(s.Growth),
				output.FormatCurrency(s.EndingBalance),
				roi)
		}
		return nil
	},
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage recorded account balance snapshots",
}

var (
	flagSnapAccount     string
	flagSnapDate        string
	flagSnapContributed string
	flagSnapValue       string
)

var snapshotAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a balance snapshot for an account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagUser == "" {
			return fmt.Errorf("--user is required")
		}
		date, err := time.Parse("2006-01-02", flagSnapDate)
		if err != nil {
			return fmt.Errorf("invalid --date %q, want YYYY-MM-DD: %w", flagSnapDate, err)
		}
		contributed, err := decimal.NewFromString(flagSnapContributed)
		if err != nil {
			return fmt.Errorf("invalid --contributed %q: %w", flagSnapContributed, err)
		}
		value, err := decimal.NewFromString(flagSnapValue)
		if err != nil {
			return fmt.Errorf("invalid --value %q: %w", flagSnapValue, err)
		}

		st, err := store.Open(flagDB)
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		id, err := st.AddSnapshot(flagUser, domain.AccountSnapshot{
			Account:     flagSnapAccount,
			Date:        date,
			Contributed: contributed,
			TotalValue:  value,
		})
		if err != nil {
			return err
		}
		logger.Info("snapshot recorded", "id", id, "account", flagSnapAccount, "date", flagSnapDate)
		return nil
	},
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagUser == "" {
			return fmt.Errorf("--user is required")
		}
		st, err := store.Open(flagDB)
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		snaps, err := st.ListSnapshots(flagUser)
		if err != nil {
			return err
		}
		for _, sn := range snaps {
			fmt.Printf("%4d  %s  %-20s contributed %s  value %s\n",
				sn.ID, sn.Date.Format("2006-01-02"), sn.Account,
				output.FormatCurrency(sn.Contributed), output.FormatCurrency(sn.TotalValue))
		}
		return nil
	},
}

var flagSnapID int64

var snapshotDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a snapshot by id",
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagUser == "" {
			return fmt.Errorf("--user is required")
		}
		st, err := store.Open(flagDB)
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()
		return st.DeleteSnapshot(flagUser, flagSnapID)
	},
}

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List the user's accounts with their latest recorded values",
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagUser == "" {
			return fmt.Errorf("--user is required")
		}
		st, err := store.Open(flagDB)
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		accounts, err := st.LoadAccounts(flagUser)
		if err != nil {
			return err
		}
		for _, a := range accounts {
			latest := "no snapshots"
			if sn, err := st.LatestSnapshot(flagUser, a.Name); err != nil {
				return err
			} else if sn != nil {
				latest = fmt.Sprintf("last recorded %s on %s",
					output.FormatCurrency(sn.TotalValue), sn.Date.Format("2006-01-02"))
			}
			fmt.Printf("%-20s %-22s balance %s  return %s  priority %d  %s\n",
				a.Name, a.Type, output.FormatCurrency(a.Balance),
				output.FormatPercent(a.AnnualReturn), a.WithdrawalPriority, latest)
		}
		return nil
	},
}

var initCmd = &cobra.Command{
	Use:   "init [plan-file]",
	Short: "Write a starter plan: a YAML file, or the per-user store with --user",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagUser != "" {
			st, err := store.Open(flagDB)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			if err := st.EnsureDefaults(flagUser, time.Now().Year()); err != nil {
				return err
			}
			logger.Info("user initialized", "user", flagUser, "db", flagDB)
			return nil
		}

		if len(args) != 1 {
			return fmt.Errorf("provide a plan file path or --user")
		}
		path := args[0]
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("refusing to overwrite existing file %s", path)
		}

		data, err := yaml.Marshal(store.DefaultPlan(time.Now().Year()))
		if err != nil {
			return fmt.Errorf("encoding starter plan: %w", err)
		}
		if err := os.WriteFile(path, data, 0o600); err != nil {
			return fmt.Errorf("writing starter plan: %w", err)
		}
		logger.Info("starter plan written", "path", path)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("glidepath %s (commit %s, built %s)\n", version, commit, date)
		if bi, ok := debug.ReadBuildInfo(); ok {
			fmt.Println("go:", bi.GoVersion)
		}
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", defaultDBPath(), "path to the plan database")
	rootCmd.PersistentFlags().StringVar(&flagUser, "user", "", "load the plan for this user from the database")

	projectCmd.Flags().StringVar(&flagFormat, "format", "console", "output format (console, csv, json)")
	projectCmd.Flags().StringVar(&flagOut, "output", "", "write output to a file instead of stdout")

	snapshotAddCmd.Flags().StringVar(&flagSnapAccount, "account", "", "account name")
	snapshotAddCmd.Flags().StringVar(&flagSnapDate, "date", time.Now().Format("2006-01-02"), "snapshot date (YYYY-MM-DD)")
	snapshotAddCmd.Flags().StringVar(&flagSnapContributed, "contributed", "0", "amount contributed since the prior snapshot")
	snapshotAddCmd.Flags().StringVar(&flagSnapValue, "value", "0", "total account value on the snapshot date")
	_ = snapshotAddCmd.MarkFlagRequired("account")
	_ = snapshotAddCmd.MarkFlagRequired("value")

	snapshotDeleteCmd.Flags().Int64Var(&flagSnapID, "id", 0, "snapshot id to delete")
	_ = snapshotDeleteCmd.MarkFlagRequired("id")

	snapshotCmd.AddCommand(snapshotAddCmd, snapshotListCmd, snapshotDeleteCmd)
	rootCmd.AddCommand(projectCmd, validateCmd, historyCmd, snapshotCmd, accountsCmd, initCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}
