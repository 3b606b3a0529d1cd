package calculation

import (
	"sort"

	"github.com/glidepath-tools/glidepath/internal/domain"
	"github.com/shopspring/decimal"
)

// BuildYearlySummaries folds an unordered collection of account snapshots
// into one HistoricalYearSummary per calendar year, ascending. A year's
// starting balance is the prior year's ending balance; the first year starts
// from openingBalance. Growth follows the same rule applied per snapshot:
// ending minus starting minus contributed.
func BuildYearlySummaries(snapshots []domain.AccountSnapshot, openingBalance decimal.Decimal) []domain.HistoricalYearSummary {
	if len(snapshots) == 0 {
		return nil
	}

	byYear := make(map[int][]domain.AccountSnapshot)
	for _, s := range snapshots {
		y := s.Date.Year()
		byYear[y] = append(byYear[y], s)
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	summaries := make([]domain.HistoricalYearSummary, 0, len(years))
	starting := openingBalance
	for _, y := range years {
		yearSnaps := byYear[y]

		contributed := decimal.Zero
		latest := make(map[string]domain.AccountSnapshot)
		for _, s := range yearSnaps {
			contributed = contributed.Add(s.Contributed)
			prev, seen := latest[s.Account]
			if !seen || s.Date.After(prev.Date) {
				latest[s.Account] = s
			}
		}

		ending := decimal.Zero
		for _, s := range latest {
			ending = ending.Add(s.TotalValue)
		}

		growth := ending.Sub(starting).Sub(contributed)

		summary := domain.HistoricalYearSummary{
			Year:            y,
			StartingBalance: starting,
			Contributions:   contributed,
			EndingBalance:   ending,
			Growth:          growth,
		}
		if starting.GreaterThan(decimal.Zero) {
			summary.ROI = growth.Div(starting)
			summary.ROIKnown = true
		}

		summaries = append(summaries, summary)
		starting = ending
	}

	return summaries
}

// HistoricalRecords converts yearly summaries 1:1 into YearRecord-shaped
// rows so downstream consumers treat actual and projected years uniformly.
// The age on each row is derived from the profile's current age and the
// distance from the plan's start year.
func HistoricalRecords(summaries []domain.HistoricalYearSummary, profile domain.Profile) []domain.YearRecord {
	records := make([]domain.YearRecord, 0, len(summaries))
	for _, s := range summaries {
		rec := domain.YearRecord{
			Year:               s.Year,
			Age:                profile.CurrentAge - (profile.StartYear - s.Year),
			Historical:         true,
			TotalContributions: s.Contributions,
			TotalGrowth:        s.Growth,
			ReturnRate:         s.ROI,
			ReturnRateKnown:    s.ROIKnown,
			TotalBalance:       s.EndingBalance,
			FlexMultiplier:     decimal.NewFromInt(1),
		}
		records = append(records, rec)
	}
	return records
}
