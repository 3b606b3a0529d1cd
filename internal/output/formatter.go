// Package output renders projection results for the console and for export.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/glidepath-tools/glidepath/internal/domain"
	"github.com/shopspring/decimal"
)

// Formatter writes a projection result in one output format.
type Formatter interface {
	Name() string
	Write(w io.Writer, result *domain.ProjectionResult) error
}

// GetFormatterByName returns the formatter for a format string.
func GetFormatterByName(name string) (Formatter, error) {
	switch strings.ToLower(name) {
	case "console", "":
		return &ConsoleFormatter{}, nil
	case "csv":
		return &CSVFormatter{}, nil
	case "json":
		return &JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q (console, csv, json)", name)
	}
}

// FormatCurrency renders a decimal as a dollar amount with thousands
// separators.
func FormatCurrency(d decimal.Decimal) string {
	f, _ := d.Float64()
	if f < 0 {
		return "-$" + humanize.CommafWithDigits(-f, 2)
	}
	return "$" + humanize.CommafWithDigits(f, 2)
}

// FormatPercent renders a rate decimal (0.07) as a percentage (7.0%).
func FormatPercent(d decimal.Decimal) string {
	return d.Mul(decimal.NewFromInt(100)).StringFixed(1) + "%"
}
