package output

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/glidepath-tools/glidepath/internal/domain"
)

// CSVFormatter writes one row per projection year. Per-account balance
// columns are derived from the first record so every row has the same shape.
type CSVFormatter struct{}

func (f *CSVFormatter) Name() string { return "csv" }

func (f *CSVFormatter) Write(w io.Writer, result *domain.ProjectionResult) error {
	cw := csv.NewWriter(w)

	header := []string{
		"year", "age", "historical",
		"work_income", "ss_income", "total_income",
		"core_expenses", "flex_expenses", "flex_multiplier",
		"event_amount", "contributions", "withdrawals", "rmd",
		"unmet_deficit", "growth", "total_balance",
	}
	var accountNames []string
	if len(result.Records) > 0 {
		for _, a := range result.Records[len(result.Records)-1].Accounts {
			accountNames = append(accountNames, a.Name)
			header = append(header, "balance_"+a.Name)
		}
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, r := range result.Records {
		row := []string{
			strconv.Itoa(r.Year),
			strconv.Itoa(r.Age),
			strconv.FormatBool(r.Historical),
			r.WorkIncome.StringFixed(2),
			r.SSIncome.StringFixed(2),
			r.TotalIncome.StringFixed(2),
			r.CoreExpenses.StringFixed(2),
			r.FlexExpenses.StringFixed(2),
			r.FlexMultiplier.StringFixed(4),
			r.EventAmount.StringFixed(2),
			r.TotalContributions.StringFixed(2),
			r.TotalWithdrawals.StringFixed(2),
			r.TotalRMD.StringFixed(2),
			r.UnmetDeficit.StringFixed(2),
			r.TotalGrowth.StringFixed(2),
			r.TotalBalance.StringFixed(2),
		}
		for _, name := range accountNames {
			if a := r.Account(name); a != nil {
				row = append(row, a.Balance.StringFixed(2))
			} else {
				row = append(row, "")
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
