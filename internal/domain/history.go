package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountSnapshot is a point-in-time observation of one account: its total
// value on a date and the amount contributed since the previous snapshot.
type AccountSnapshot struct {
	Account     string          `yaml:"account" json:"account"`
	Date        time.Time       `yaml:"date" json:"date"`
	Contributed decimal.Decimal `yaml:"contributed" json:"contributed"`
	TotalValue  decimal.Decimal `yaml:"total_value" json:"totalValue"`
}

// HistoricalYearSummary aggregates all snapshots in one calendar year into
// actual-performance figures. Each year's ending balance becomes the next
// year's starting balance.
type HistoricalYearSummary struct {
	Year            int             `json:"year"`
	StartingBalance decimal.Decimal `json:"startingBalance"`
	Contributions   decimal.Decimal `json:"contributions"`
	EndingBalance   decimal.Decimal `json:"endingBalance"`
	Growth          decimal.Decimal `json:"growth"`
	ROI             decimal.Decimal `json:"roi"`
	ROIKnown        bool            `json:"roiKnown"` // false when the starting balance was zero
}
