package config

import (
	"fmt"
	"os"
	"time"

	"github.com/glidepath-tools/glidepath/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// defaultMaxFlexReduction is the FLEX spending floor applied when a plan
// does not set one: up to half of flexible spending may be cut.
var defaultMaxFlexReduction = decimal.NewFromFloat(0.50)

// Loader parses plan files.
type Loader struct {
	// Now supplies the default start year when a plan omits one. Overridden
	// in tests.
	Now func() time.Time
}

// NewLoader creates a loader with the real clock.
func NewLoader() *Loader {
	return &Loader{Now: time.Now}
}

// LoadFromFile reads, parses, and validates a YAML plan file.
func (l *Loader) LoadFromFile(filename string) (*domain.Plan, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file %s: %w", filename, err)
	}
	return l.Load(data)
}

// Load parses and validates YAML plan bytes. A plan without an explicit
// start year gets the current calendar year; a plan that omits
// max_flex_reduction gets the standard 0.50 floor. An explicit zero is
// honored as written.
func (l *Loader) Load(data []byte) (*domain.Plan, error) {
	var plan domain.Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to parse plan YAML: %w", err)
	}

	if plan.Profile.StartYear == 0 {
		plan.Profile.StartYear = l.Now().Year()
	}

	var fields struct {
		Profile struct {
			MaxFlexReduction *decimal.Decimal `yaml:"max_flex_reduction"`
		} `yaml:"profile"`
	}
	if err := yaml.Unmarshal(data, &fields); err == nil && fields.Profile.MaxFlexReduction == nil {
		plan.Profile.MaxFlexReduction = defaultMaxFlexReduction
	}

	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("plan validation failed: %w", err)
	}

	return &plan, nil
}
