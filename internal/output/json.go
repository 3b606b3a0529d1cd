package output

import (
	"encoding/json"
	"io"

	"github.com/glidepath-tools/glidepath/internal/domain"
)

// JSONFormatter emits the full result, records and metrics, as indented JSON.
type JSONFormatter struct{}

func (f *JSONFormatter) Name() string { return "json" }

func (f *JSONFormatter) Write(w io.Writer, result *domain.ProjectionResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
