package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/opsledger/internal/ops"
)

// Scenario defines one production-floor scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario demonstrates.
	Description string `yaml:"description"`

	// WorkOrder owns the imported plans.
	WorkOrder ops.WorkOrder `yaml:"work_order"`

	// Machines are added to the directory before the flow runs.
	Machines []ops.Machine `yaml:"machines,omitempty"`

	// Plans are imported by the "import" step.
	Plans []ops.PlanDescription `yaml:"plans,omitempty"`

	// Flow is the ordered list of operator steps.
	Flow []Step `yaml:"flow"`

	// Assertions validate final progress and record state.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one operator action.
type Step struct {
	// Op is the step type; see the Op constants.
	Op string `yaml:"op"`

	// Record is the alias of the record the step acts on.
	Record string `yaml:"record,omitempty"`

	// As binds the record the step creates (start, split).
	As string `yaml:"as,omitempty"`

	// Qty is the quantity for set_qty and validate.
	Qty *int64 `yaml:"qty,omitempty"`

	// Fields are the details written by update: material, machine,
	// operator, pallet, notes, date.
	Fields map[string]string `yaml:"fields,omitempty"`

	// Expect, when set, is checked against the step outcome.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Step types.
const (
	OpImport    = "import"
	OpStart     = "start"
	OpSplit     = "split"
	OpSetQty    = "set_qty"
	OpValidate  = "validate"
	OpConfirm   = "confirm"
	OpComplete  = "complete"
	OpReopen    = "reopen"
	OpUpdate    = "update"
	OpDelete    = "delete"
	OpDeleteJob = "delete_job"
)

var knownOps = map[string]bool{
	OpImport: true, OpStart: true, OpSplit: true, OpSetQty: true, OpValidate: true,
	OpConfirm: true, OpComplete: true, OpReopen: true, OpUpdate: true, OpDelete: true,
	OpDeleteJob: true,
}

// Expect describes the expected outcome of a step. Unset fields are not
// checked.
type Expect struct {
	// Valid is the expected verdict of a quantity step.
	Valid *bool `yaml:"valid,omitempty"`

	// Error must appear in the rejection message or engine error.
	Error string `yaml:"error,omitempty"`

	// Warning must equal the validation warning.
	Warning string `yaml:"warning,omitempty"`

	// Code is the expected engine error code.
	Code string `yaml:"code,omitempty"`

	// Quantity is the expected prefill of a split.
	Quantity *int64 `yaml:"quantity,omitempty"`

	// Imported and Skipped are the expected import counts.
	Imported *int `yaml:"imported,omitempty"`
	Skipped  *int `yaml:"skipped,omitempty"`
}

// Assertion validates final state.
type Assertion struct {
	// Type is "progress" or "record".
	Type string `yaml:"type"`

	// Record is the alias the assertion is about. For progress, the
	// grouping is the one the record counts against.
	Record string `yaml:"record"`

	// Progress fields (used by progress).
	Planned      *int64 `yaml:"planned,omitempty"`
	Executed     *int64 `yaml:"executed,omitempty"`
	Remaining    *int64 `yaml:"remaining,omitempty"`
	Percent      *int64 `yaml:"percent,omitempty"`
	TotalPrinted *int64 `yaml:"total_printed,omitempty"`
	CanCut       *bool  `yaml:"can_cut,omitempty"`

	// Record fields (used by record). Exists=false asserts deletion.
	Exists    *bool             `yaml:"exists,omitempty"`
	Draft     *bool             `yaml:"draft,omitempty"`
	Completed *bool             `yaml:"completed,omitempty"`
	Fields    map[string]string `yaml:"fields,omitempty"`
}

// Assertion type constants.
const (
	AssertProgress = "progress"
	AssertRecord   = "record"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	for i := range scenario.Plans {
		if scenario.Plans[i].Ordinal == 0 {
			scenario.Plans[i].Ordinal = i + 1
		}
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	for i, step := range s.Flow {
		if !knownOps[step.Op] {
			return fmt.Errorf("flow[%d]: unknown op %q", i, step.Op)
		}
		if step.Op != OpImport && step.Record == "" {
			return fmt.Errorf("flow[%d]: %s needs a record alias", i, step.Op)
		}
		if (step.Op == OpSetQty || step.Op == OpValidate) && step.Qty == nil {
			return fmt.Errorf("flow[%d]: %s needs qty", i, step.Op)
		}
		if step.Op == OpUpdate && len(step.Fields) == 0 {
			return fmt.Errorf("flow[%d]: update needs fields", i)
		}
	}

	for i, a := range s.Assertions {
		if a.Type != AssertProgress && a.Type != AssertRecord {
			return fmt.Errorf("assertions[%d]: unknown type %q", i, a.Type)
		}
		if a.Record == "" {
			return fmt.Errorf("assertions[%d]: record alias is required", i)
		}
	}
	return nil
}
