// Package requirement defines the requirement data model and its JSON file
// boundary.
//
// # Overview
//
// Requirements are units of planned work owned by an external planning store.
// The store materializes them as individual JSON files in a requirements
// directory, one file per requirement named {id}.json. This package reads
// those files, validates them, and assembles them into an ordered Snapshot
// that the layout engine and validator consume. reqgraph never writes back to
// the store on its own; WriteRequirementFile exists for export tooling only.
//
// # Requirement Files
//
// Example: req-auth.json
//
//	{
//	  "id": "req-auth",
//	  "title": "User authentication",
//	  "status": "pending",
//	  "category": "backend",
//	  "scope": "v1",
//	  "dependsOn": ["req-db"],
//	  "acceptanceCriteria": ["login succeeds with valid credentials"],
//	  "createdAt": "2026-02-11T09:14:02Z",
//	  "updatedAt": "2026-02-11T09:14:02Z"
//	}
//
// Field names are camelCase because the files are shared with the rendering
// layer and the external store, which both speak that convention.
//
// # Snapshots and Graphs
//
// A Snapshot is an immutable, insertion-ordered collection of requirements.
// Ordering matters: the layout engine guarantees byte-identical output for
// identical input, which requires a stable iteration order that Go maps do
// not provide on their own.
//
//	reqs, _ := requirement.ReadAllRequirementFiles("requirements")
//	snap := requirement.NewSnapshot(reqs)
//	g := requirement.BuildGraph(snap)
//
// BuildGraph derives both edge directions from the dependsOn lists. The
// blocks direction is always recomputed by inversion, never taken from the
// input, so the two maps cannot drift apart.
//
// # Design Principles
//
//   - Flat JSON structure, one file per requirement
//   - Reader skips invalid files with a warning instead of failing the load
//   - Snapshot order is file-name order (os.ReadDir sorts), so identical
//     directories load identically
//   - No external validation libraries
package requirement
