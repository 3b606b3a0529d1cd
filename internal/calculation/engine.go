package calculation

import (
	"fmt"

	"github.com/glidepath-tools/glidepath/internal/domain"
	"github.com/shopspring/decimal"
)

// Engine orchestrates a full plan evaluation: validation, historical
// reconstruction, the year-by-year projection, and the summary analysis.
type Engine struct {
	// HistoryOpeningBalance seeds the first historical year's starting
	// balance. Zero means the history starts from nothing.
	HistoryOpeningBalance decimal.Decimal
}

// NewEngine creates an engine with default settings.
func NewEngine() *Engine {
	return &Engine{}
}

// RunPlan evaluates a plan end to end. The returned record sequence holds
// historical rows (one per snapshot year) followed by projected rows from
// current age through target age inclusive. The caller's plan is never
// mutated. Malformed input fails here; financial stress does not.
func (e *Engine) RunPlan(plan *domain.Plan) (*domain.ProjectionResult, error) {
	if plan == nil {
		return nil, fmt.Errorf("plan is required")
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	summaries := BuildYearlySummaries(plan.History, e.HistoryOpeningBalance)
	records := HistoricalRecords(summaries, plan.Profile)

	st := newProjectionState(plan)
	records = append(records, st.project()...)

	metrics := Analyze(records, plan, st.warnings)

	return &domain.ProjectionResult{Records: records, Metrics: metrics}, nil
}
