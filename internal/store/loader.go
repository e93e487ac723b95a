package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gsdkit/reqgraph/internal/requirement"
)

// Loader produces a snapshot from some source. The watcher reloads through
// this interface on every change, and Source tells it what to watch.
type Loader interface {
	// Load reads the source and returns a fresh snapshot. A load error
	// means the caller should keep whatever snapshot it already has.
	Load() (*requirement.Snapshot, error)

	// Source returns the filesystem path this loader reads from.
	Source() string
}

// DirLoader loads a snapshot from a directory of {id}.json requirement
// files, the layout the external planning store writes.
type DirLoader struct {
	dir string
}

// NewDirLoader creates a loader over a requirements directory.
func NewDirLoader(dir string) *DirLoader {
	return &DirLoader{dir: dir}
}

// Load implements Loader.
func (l *DirLoader) Load() (*requirement.Snapshot, error) {
	reqs, err := requirement.ReadAllRequirementFiles(l.dir)
	if err != nil {
		return nil, err
	}
	return requirement.NewSnapshot(reqs), nil
}

// Source implements Loader.
func (l *DirLoader) Source() string {
	return l.dir
}

// Plan is a single-document form of the requirement set, used for export and
// for teams that keep the whole plan in one reviewed file instead of a
// directory.
type Plan struct {
	Requirements []requirement.Requirement `json:"requirements" yaml:"requirements"`
}

// PlanLoader loads a snapshot from one plan document. The format follows the
// file extension: .yaml/.yml parses as YAML, anything else as JSON.
type PlanLoader struct {
	path string
}

// NewPlanLoader creates a loader over a plan document.
func NewPlanLoader(path string) *PlanLoader {
	return &PlanLoader{path: path}
}

// Load implements Loader. A document that fails to parse is an error; the
// caller keeps its previous snapshot. Individual invalid requirements inside
// a well-formed document are skipped with a warning, matching how the
// directory loader treats one bad file.
func (l *PlanLoader) Load() (*requirement.Snapshot, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file %s: %w", l.path, err)
	}

	var plan Plan
	switch strings.ToLower(filepath.Ext(l.path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &plan); err != nil {
			return nil, fmt.Errorf("failed to parse plan file %s: %w", l.path, err)
		}
	default:
		if err := json.Unmarshal(data, &plan); err != nil {
			return nil, fmt.Errorf("failed to parse plan file %s: %w", l.path, err)
		}
	}

	valid := make([]requirement.Requirement, 0, len(plan.Requirements))
	for i := range plan.Requirements {
		r := plan.Requirements[i]
		if err := r.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: skipping invalid requirement %d in %s: %v\n", i, l.path, err)
			continue
		}
		valid = append(valid, r)
	}

	return requirement.NewSnapshot(valid), nil
}

// Source implements Loader.
func (l *PlanLoader) Source() string {
	return l.path
}

// WritePlan writes the snapshot as one plan document, JSON or YAML by the
// path's extension. This is the inverse of PlanLoader for export tooling.
func WritePlan(path string, snap *requirement.Snapshot) error {
	plan := Plan{Requirements: make([]requirement.Requirement, 0, snap.Len())}
	for _, id := range snap.IDs() {
		r, _ := snap.Get(id)
		plan.Requirements = append(plan.Requirements, r)
	}

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(plan)
	default:
		data, err = json.MarshalIndent(plan, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write plan file %s: %w", path, err)
	}
	return nil
}
