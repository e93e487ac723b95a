// Package validate checks the structural health of a requirement dependency
// graph: cycle detection, depth and root statistics, and dangling reference
// reporting. The layout engine tolerates all of these silently; this package
// is what makes them visible to users and to the serving layer.
package validate

import (
	"fmt"
	"strings"

	"github.com/gsdkit/reqgraph/internal/requirement"
)

// Stats holds aggregate counts over the validated graph. RootNodes and
// DanglingRefs are in snapshot order so repeated runs report identically.
type Stats struct {
	NodeCount    int      `json:"nodeCount"`
	EdgeCount    int      `json:"edgeCount"`
	MaxDepth     int      `json:"maxDepth"`
	RootNodes    []string `json:"rootNodes"`
	DanglingRefs []string `json:"danglingRefs,omitempty"`
}

// Result is the outcome of a structural check. Valid is false when the graph
// contains a dependency cycle; Error then carries the cycle path. Dangling
// references and other oddities are reported through Stats without making the
// graph invalid, matching how the layout engine treats them.
type Result struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
	Stats *Stats `json:"stats,omitempty"`
}

// Check validates the dependency structure of a snapshot. It always returns
// a Result, never an error: malformed input is a finding, not a failure.
func Check(snap *requirement.Snapshot, g *requirement.Graph) Result {
	stats := &Stats{
		RootNodes: []string{},
	}
	result := Result{Valid: true, Stats: stats}
	if snap == nil {
		return result
	}

	ids := snap.IDs()
	stats.NodeCount = len(ids)

	// Valid deduped prereq lists, same filtering the layout engine applies.
	prereqs := make(map[string][]string)
	if g != nil {
		for _, dependent := range ids {
			seen := make(map[string]bool)
			for _, prereq := range g.DependsOn[dependent] {
				if !snap.Contains(prereq) || seen[prereq] {
					continue
				}
				seen[prereq] = true
				prereqs[dependent] = append(prereqs[dependent], prereq)
				stats.EdgeCount++
			}
		}
	}

	for _, id := range ids {
		if len(prereqs[id]) == 0 {
			stats.RootNodes = append(stats.RootNodes, id)
		}
	}

	stats.DanglingRefs = danglingRefs(snap, ids)
	stats.MaxDepth = maxDepth(ids, prereqs)

	if cycle := detectCycle(ids, prereqs); cycle != nil {
		result.Valid = false
		result.Error = fmt.Sprintf("dependency cycle: %s", strings.Join(cycle, " -> "))
	}

	return result
}

// danglingRefs collects dependsOn entries that name IDs absent from the
// snapshot. These come from the requirement records rather than the graph,
// because graph construction already filters them out.
func danglingRefs(snap *requirement.Snapshot, ids []string) []string {
	var refs []string
	seen := make(map[string]bool)
	for _, id := range ids {
		r, _ := snap.Get(id)
		for _, dep := range r.DependsOn {
			if dep == "" || snap.Contains(dep) || seen[dep] {
				continue
			}
			seen[dep] = true
			refs = append(refs, dep)
		}
	}
	return refs
}

// maxDepth returns the length of the longest prerequisite chain, counted in
// edges. Nodes on cycles are left out; depth describes the acyclic portion.
func maxDepth(ids []string, prereqs map[string][]string) int {
	// Kahn order over the dependent counts, then a longest-path pass.
	dependents := make(map[string][]string)
	inDegree := make(map[string]int, len(ids))
	for _, id := range ids {
		inDegree[id] = len(prereqs[id])
		for _, p := range prereqs[id] {
			dependents[p] = append(dependents[p], id)
		}
	}

	var queue []string
	for _, id := range ids {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	depth := make(map[string]int, len(ids))
	max := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if depth[id] > max {
			max = depth[id]
		}
		for _, dep := range dependents[id] {
			if depth[id]+1 > depth[dep] {
				depth[dep] = depth[id] + 1
			}
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}
	return max
}

// detectCycle returns one cycle as a closed path (first element repeated at
// the end), or nil when the graph is acyclic. DFS with coloring: white
// (unvisited), gray (in progress), black (done). Traversal follows prereq
// edges in snapshot order, so the same input always reports the same cycle.
func detectCycle(ids []string, prereqs map[string][]string) []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make(map[string]int)
	parent := make(map[string]string)

	var dfs func(node string) []string
	dfs = func(node string) []string {
		color[node] = gray
		for _, next := range prereqs[node] {
			if color[next] == gray {
				cycle := []string{next, node}
				cur := node
				for cur != next {
					cur = parent[cur]
					cycle = append(cycle, cur)
				}
				for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
					cycle[i], cycle[j] = cycle[j], cycle[i]
				}
				return cycle
			}
			if color[next] == white {
				parent[next] = node
				if cycle := dfs(next); cycle != nil {
					return cycle
				}
			}
		}
		color[node] = black
		return nil
	}

	for _, id := range ids {
		if color[id] == white {
			if cycle := dfs(id); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}
