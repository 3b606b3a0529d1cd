package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/glidepath-tools/glidepath/internal/domain"
)

// Theme colors (Flexoki Dark)
var (
	colorBorder    = lipgloss.Color("#282726")
	colorTextMuted = lipgloss.Color("#6F6E69")
	colorText      = lipgloss.Color("#FFFCF0")
	colorAccent    = lipgloss.Color("#3AA99F")
	colorGreen     = lipgloss.Color("#879A39")
	colorOrange    = lipgloss.Color("#DA702C")
	colorRed       = lipgloss.Color("#D14D41")
	colorYellow    = lipgloss.Color("#D0A215")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(colorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)

	warnStyle = lipgloss.NewStyle().
			Foreground(colorOrange)
)

var statusStyles = map[domain.PlanStatus]lipgloss.Style{
	domain.StatusExcellent:  lipgloss.NewStyle().Bold(true).Foreground(colorGreen),
	domain.StatusGood:       lipgloss.NewStyle().Bold(true).Foreground(colorGreen),
	domain.StatusAdequate:   lipgloss.NewStyle().Bold(true).Foreground(colorYellow),
	domain.StatusAtRisk:     lipgloss.NewStyle().Bold(true).Foreground(colorOrange),
	domain.StatusConcerning: lipgloss.NewStyle().Bold(true).Foreground(colorRed),
}

// ConsoleFormatter renders a styled summary plus a condensed year table.
type ConsoleFormatter struct{}

func (f *ConsoleFormatter) Name() string { return "console" }

func (f *ConsoleFormatter) Write(w io.Writer, result *domain.ProjectionResult) error {
	var b strings.Builder

	b.WriteString(renderTitle("Retirement Plan Projection"))
	b.WriteString("\n\n")
	b.WriteString(f.renderSummary(&result.Metrics))
	b.WriteString("\n")
	b.WriteString(f.renderYears(result.Records))

	if len(result.Metrics.Warnings) > 0 {
		b.WriteString("\n")
		b.WriteString(headerStyle.Render("Warnings"))
		b.WriteString("\n")
		for _, warning := range result.Metrics.Warnings {
			b.WriteString(warnStyle.Render("  ! " + warning.Message))
			b.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (f *ConsoleFormatter) renderSummary(m *domain.PlanMetrics) string {
	var b strings.Builder

	statusStyle, ok := statusStyles[m.Status]
	if !ok {
		statusStyle = valueStyle
	}

	b.WriteString(headerStyle.Render("Plan Health"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s %s\n",
		mutedStyle.Render("Status:"), statusStyle.Render(string(m.Status))))
	b.WriteString(fmt.Sprintf("  %s %s\n",
		mutedStyle.Render("Cushion:"), valueStyle.Render(fmt.Sprintf("%+d years vs life expectancy", m.Cushion))))
	if m.RanOut {
		b.WriteString(fmt.Sprintf("  %s %s\n",
			mutedStyle.Render("Money runs out:"),
			warnStyle.Render(fmt.Sprintf("age %d (%d)", m.RunOutAge, m.RunOutYear))))
	} else {
		b.WriteString(fmt.Sprintf("  %s %s\n",
			mutedStyle.Render("Balance at target age:"), valueStyle.Render(FormatCurrency(m.TargetAgeBalance))))
	}
	b.WriteString(fmt.Sprintf("  %s %s %s %s\n",
		mutedStyle.Render("Sustainable withdrawal (4%):"), valueStyle.Render(FormatCurrency(m.SustainableWithdrawal)),
		mutedStyle.Render("vs current spending"), valueStyle.Render(FormatCurrency(m.CurrentSpending))))

	return b.String()
}

func (f *ConsoleFormatter) renderYears(records []domain.YearRecord) string {
	headers := []string{"Year", "Age", "", "Income", "Expenses", "Contrib", "Withdraw", "Balance"}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		marker := ""
		if r.Historical {
			marker = "hist"
		}
		rows = append(rows, []string{
			strconv.Itoa(r.Year),
			strconv.Itoa(r.Age),
			marker,
			FormatCurrency(r.TotalIncome),
			FormatCurrency(r.TotalExpenses),
			FormatCurrency(r.TotalContributions),
			FormatCurrency(r.TotalWithdrawals),
			FormatCurrency(r.TotalBalance),
		})
	}
	return renderTable(headers, rows)
}

func renderTitle(title string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Width(60).
		Align(lipgloss.Center).
		Padding(0, 1)
	return border.Render(titleStyle.Render(title))
}

func renderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	for i, h := range headers {
		b.WriteString(headerStyle.Render(pad(h, widths[i])))
		b.WriteString("  ")
	}
	b.WriteString("\n")
	for _, row := range rows {
		for i, cell := range row {
			b.WriteString(valueStyle.Render(pad(cell, widths[i])))
			b.WriteString("  ")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}
