// Package migrate converts plan documents into per-requirement files.
//
// A plan document is one JSON or YAML file holding a requirements list. The
// external planning store works on per-requirement files instead, one
// requirements/{id}.json per requirement, so imported plans have to be
// split. Existing files are never overwritten unless forced.
package migrate

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gsdkit/reqgraph/internal/requirement"
	"github.com/gsdkit/reqgraph/internal/store"
)

// Options contains configuration for an import run.
type Options struct {
	FromPlan string // input plan document (.json, .yaml, .yml)
	ToDir    string // output requirements directory
	DryRun   bool   // preview without writing
	Force    bool   // overwrite requirement files that already exist
}

// Result contains statistics about an import run.
type Result struct {
	Converted    int
	FilesWritten int
	Skipped      []string // IDs left alone because their file already exists
	Errors       []string
}

// Run imports a plan document into a requirements directory. Per-file write
// failures are collected in the result rather than aborting the run.
func Run(opts Options) (*Result, error) {
	if _, err := os.Stat(opts.FromPlan); err != nil {
		return nil, fmt.Errorf("input plan does not exist: %w", err)
	}

	snap, err := store.NewPlanLoader(opts.FromPlan).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}

	result := &Result{}
	for _, id := range snap.IDs() {
		r, ok := snap.Get(id)
		if !ok {
			continue
		}

		path := filepath.Join(opts.ToDir, r.Filename())
		if !opts.Force {
			if _, err := os.Stat(path); err == nil {
				result.Skipped = append(result.Skipped, id)
				continue
			}
		}

		if !opts.DryRun {
			if err := requirement.WriteRequirementFile(opts.ToDir, &r); err != nil {
				result.Errors = append(result.Errors,
					fmt.Sprintf("failed to write requirement %s: %v", id, err))
				continue
			}
			result.FilesWritten++
		}
		result.Converted++
	}

	return result, nil
}
