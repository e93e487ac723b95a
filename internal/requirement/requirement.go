package requirement

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Status is the lifecycle state of a requirement as stored by the external
// planning store. blocked and ready also exist as derived flags on layout
// nodes; the stored status is never overwritten by this tool, only annotated.
type Status string

const (
	StatusPending    Status = "pending"
	StatusBlocked    Status = "blocked"
	StatusReady      Status = "ready"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// IsValid reports whether s is one of the known status values.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusBlocked, StatusReady, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// IsTerminal reports whether s is a terminal state. Only done is terminal;
// every other status is transient and may change as dependencies complete.
func (s Status) IsTerminal() bool {
	return s == StatusDone
}

// Scope is the release scope a requirement is planned into.
type Scope string

const (
	ScopeV1         Scope = "v1"
	ScopeV2         Scope = "v2"
	ScopeOutOfScope Scope = "out_of_scope"
	ScopeUnscoped   Scope = "unscoped"
)

// IsValid reports whether s is one of the known scope values.
func (s Scope) IsValid() bool {
	switch s {
	case ScopeV1, ScopeV2, ScopeOutOfScope, ScopeUnscoped:
		return true
	}
	return false
}

// Requirement is one unit of planned work, stored as requirements/{id}.json.
// Fields are flat and independently updatable; the external store stamps the
// timestamps and resolves write conflicts, this tool only reads them.
// The yaml tags serve plan documents, which carry the same field names.
type Requirement struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Status      Status `json:"status" yaml:"status"`
	Category    string `json:"category,omitempty" yaml:"category,omitempty"` // external enumeration, opaque here
	Scope       Scope  `json:"scope" yaml:"scope"`

	// DependsOn lists the IDs of requirements that must complete first.
	// Order is preserved but carries no meaning; duplicates are tolerated
	// and collapsed when the dependency graph is built.
	DependsOn []string `json:"dependsOn,omitempty" yaml:"dependsOn,omitempty"`

	AcceptanceCriteria []string `json:"acceptanceCriteria,omitempty" yaml:"acceptanceCriteria,omitempty"`

	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// Validate checks if the Requirement has valid field values.
func (r *Requirement) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("id is required")
	}
	if r.Title == "" {
		return fmt.Errorf("title is required")
	}
	if len(r.Title) > 500 {
		return fmt.Errorf("title must be 500 characters or less (got %d)", len(r.Title))
	}
	if r.Status == "" {
		return fmt.Errorf("status is required")
	}
	if !r.Status.IsValid() {
		return fmt.Errorf("invalid status: %s", r.Status)
	}
	if r.Scope != "" && !r.Scope.IsValid() {
		return fmt.Errorf("invalid scope: %s", r.Scope)
	}
	for i, dep := range r.DependsOn {
		if dep == "" {
			return fmt.Errorf("dependsOn[%d] is empty", i)
		}
	}
	return nil
}

// SetDefaults applies default values for optional fields.
// This ensures consistent behavior when fields are omitted.
func (r *Requirement) SetDefaults() {
	if r.Status == "" {
		r.Status = StatusPending
	}
	if r.Scope == "" {
		r.Scope = ScopeUnscoped
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = time.Now()
	}
}

// Filename returns the canonical filename for this requirement: {id}.json
func (r *Requirement) Filename() string {
	return fmt.Sprintf("%s.json", r.ID)
}

// ReadRequirementFile reads and parses a requirement JSON file from the given
// path. Returns the parsed Requirement or an error if reading, parsing, or
// validation fails.
func ReadRequirementFile(path string) (*Requirement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read requirement file %s: %w", path, err)
	}

	var r Requirement
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse requirement file %s: %w", path, err)
	}

	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("invalid requirement file %s: %w", path, err)
	}

	return &r, nil
}

// WriteRequirementFile writes a Requirement to disk as JSON.
// The file is written to dir/{id}.json with pretty-printed formatting.
func WriteRequirementFile(dir string, r *Requirement) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("cannot write invalid requirement: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create requirements directory: %w", err)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal requirement %s: %w", r.ID, err)
	}

	path := filepath.Join(dir, r.Filename())
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write requirement file %s: %w", path, err)
	}

	return nil
}

// ReadAllRequirementFiles reads every requirement file from the given
// directory, in file-name order. Invalid files are skipped with a warning to
// stderr so one bad write by the external store cannot take down the whole
// snapshot. A missing directory yields an empty result, not an error.
func ReadAllRequirementFiles(dir string) ([]Requirement, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Requirement{}, nil
		}
		return nil, fmt.Errorf("failed to read requirements directory: %w", err)
	}

	var reqs []Requirement
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		r, err := ReadRequirementFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: skipping invalid requirement file %s: %v\n", entry.Name(), err)
			continue
		}

		reqs = append(reqs, *r)
	}

	return reqs, nil
}
