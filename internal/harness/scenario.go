package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted editing session: a list of session operations with
// per-step expectations, plus assertions on the final journal and state.
type Scenario struct {
	// Name uniquely identifies this scenario; it also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Catalog is an optional CUE catalog path, relative to the scenario file.
	// If empty, the built-in catalog is used.
	Catalog string `yaml:"catalog,omitempty"`

	// SessionID is stamped on journal entries. Defaults to "test-session".
	SessionID string `yaml:"session_id,omitempty"`

	// Steps run in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final journal and state.
	// Supported types: journal_contains, journal_order, journal_count, final_state
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step operations.
const (
	OpFetch          = "fetch"       // fetch source and wait for it
	OpStartFetch     = "start_fetch" // start fetching source; held until released
	OpRelease        = "release"     // let the oldest held fetch of source resolve
	OpActivate       = "activate"
	OpEditBody       = "edit_body"
	OpEditTags       = "edit_tags"
	OpEditPreview    = "edit_preview"
	OpEditSerialized = "edit_serialized"
	OpReset          = "reset"
	OpCopy           = "copy"
	OpCopyAll        = "copy_all"
	OpPublish        = "publish"
	OpAdvance        = "advance" // move the wall clock, e.g. past copy feedback
	OpCheck          = "check"   // no operation; evaluate expect only
)

// Step is one session operation.
type Step struct {
	// Op is one of the Op* constants.
	Op string `yaml:"op"`

	// Source is the fetch source for fetch, start_fetch and release.
	Source string `yaml:"source,omitempty"`

	// Target is the platform or ID for activate.
	Target string `yaml:"target,omitempty"`

	// Record addresses edit, reset, copy and publish steps.
	// If nil, the active record is used.
	Record *int `yaml:"record,omitempty"`

	// Text is the new body, raw tags, preview or serialized text.
	Text string `yaml:"text,omitempty"`

	// Duration is the advance step's amount, e.g. "2s".
	Duration string `yaml:"duration,omitempty"`

	// Expect is checked right after the step.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect is a subset match on the outcome of a step and the session state
// after it. Only fields that are set are checked.
type Expect struct {
	// Error is the expected error kind (NOT_FOUND, INVALID_FIELD,
	// PARSE_FAILURE, VALIDATION). Empty means the step must succeed.
	Error string `yaml:"error,omitempty"`

	// Applied checks a fetch or edit_serialized outcome.
	Applied *bool `yaml:"applied,omitempty"`

	// Session-level checks.
	Loading *bool   `yaml:"loading,omitempty"`
	Source  *string `yaml:"source,omitempty"`
	Active  *int    `yaml:"active,omitempty"`
	Records *int    `yaml:"records,omitempty"`

	// Record-level checks apply to Record, or the step's record, or the
	// active record, in that order.
	Record     *int    `yaml:"record,omitempty"`
	Body       *string `yaml:"body,omitempty"`
	Preview    *string `yaml:"preview,omitempty"`
	Tags       *string `yaml:"tags,omitempty"`
	Serialized *string `yaml:"serialized,omitempty"`
	Dirty      *bool   `yaml:"dirty,omitempty"`
	Modified   *bool   `yaml:"modified,omitempty"`
	Copied     *bool   `yaml:"copied,omitempty"`

	// Clipboard is the clipboard content after the step.
	Clipboard *string `yaml:"clipboard,omitempty"`
}

// Assertion validates the final journal or state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Op and Outcome select journal entries (journal_contains, journal_count).
	Op      string `yaml:"op,omitempty"`
	Outcome string `yaml:"outcome,omitempty"`

	// Count is the expected number of matching entries (journal_count).
	Count int `yaml:"count,omitempty"`

	// Ops is the expected op order (journal_order).
	Ops []string `yaml:"ops,omitempty"`

	// Record and Expect check one record's final projection (final_state).
	Record *int              `yaml:"record,omitempty"`
	Expect map[string]string `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertJournalContains = "journal_contains"
	AssertJournalOrder    = "journal_order"
	AssertJournalCount    = "journal_count"
	AssertFinalState      = "final_state"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed, contains unknown
// fields (typos), or is missing required fields. A relative catalog path is
// resolved against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Catalog != "" && !filepath.IsAbs(scenario.Catalog) {
		scenario.Catalog = filepath.Join(filepath.Dir(path), scenario.Catalog)
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML with strict field checking.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
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
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, st *Step) error {
	switch st.Op {
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	case OpFetch, OpStartFetch, OpRelease:
		// An empty source is a valid (fallback) fetch.
	case OpActivate:
		if st.Target == "" {
			return fmt.Errorf("steps[%d]: target is required for activate", index)
		}
	case OpAdvance:
		if st.Duration == "" {
			return fmt.Errorf("steps[%d]: duration is required for advance", index)
		}
	case OpEditBody, OpEditTags, OpEditPreview, OpEditSerialized,
		OpReset, OpCopy, OpCopyAll, OpPublish, OpCheck:
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, st.Op)
	}

	if st.Op == OpCheck && st.Expect == nil {
		return fmt.Errorf("steps[%d]: expect is required for check", index)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertJournalContains:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for journal_contains", index)
		}
	case AssertJournalOrder:
		if len(a.Ops) == 0 {
			return fmt.Errorf("assertions[%d]: ops list is required for journal_order", index)
		}
	case AssertJournalCount:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for journal_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for journal_count", index)
		}
	case AssertFinalState:
		if a.Record == nil {
			return fmt.Errorf("assertions[%d]: record is required for final_state", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
