package requirement

// Snapshot is an immutable, ordered view of the requirement set at one point
// in time. Iteration order is insertion order, which gives the layout engine
// the stable ordering it needs to produce identical output for identical
// input. Later duplicates of an ID replace the earlier value but keep the
// original position (last write wins).
type Snapshot struct {
	ids  []string
	byID map[string]Requirement
}

// NewSnapshot builds a Snapshot from a slice of requirements, preserving
// slice order. Requirements with duplicate IDs collapse into one entry at the
// first occurrence's position, holding the last occurrence's value.
func NewSnapshot(reqs []Requirement) *Snapshot {
	s := &Snapshot{
		ids:  make([]string, 0, len(reqs)),
		byID: make(map[string]Requirement, len(reqs)),
	}
	for _, r := range reqs {
		if _, seen := s.byID[r.ID]; !seen {
			s.ids = append(s.ids, r.ID)
		}
		s.byID[r.ID] = r
	}
	return s
}

// IDs returns the requirement IDs in snapshot order. The returned slice is a
// copy; callers may reorder it freely.
func (s *Snapshot) IDs() []string {
	ids := make([]string, len(s.ids))
	copy(ids, s.ids)
	return ids
}

// Get returns the requirement with the given ID, if present.
func (s *Snapshot) Get(id string) (Requirement, bool) {
	r, ok := s.byID[id]
	return r, ok
}

// Contains reports whether the snapshot holds a requirement with the given ID.
func (s *Snapshot) Contains(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// Len returns the number of requirements in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.ids)
}

// Graph holds both directions of the dependency relation.
//
// DependsOn maps a requirement ID to the IDs it depends on (its
// prerequisites). Blocks is the inverse: a requirement ID to the IDs that
// depend on it. Blocks is always derived from DependsOn by inversion, never
// supplied by a caller, so the two maps cannot disagree.
type Graph struct {
	DependsOn map[string][]string `json:"dependsOn"`
	Blocks    map[string][]string `json:"blocks"`
}

// BuildGraph derives the dependency graph from a snapshot's dependsOn lists.
//
// Edges whose prerequisite does not exist in the snapshot are dropped, and
// duplicate (dependent, prereq) pairs collapse to one edge. Self-edges are
// kept; the layout engine places them in the cycle layer and the validator
// reports them. Slice order follows the declaration order in each
// requirement, so the result is deterministic for a given snapshot.
func BuildGraph(snap *Snapshot) *Graph {
	g := &Graph{
		DependsOn: make(map[string][]string, snap.Len()),
		Blocks:    make(map[string][]string),
	}

	for _, id := range snap.ids {
		r := snap.byID[id]
		if len(r.DependsOn) == 0 {
			continue
		}

		seen := make(map[string]bool, len(r.DependsOn))
		for _, prereq := range r.DependsOn {
			if !snap.Contains(prereq) {
				continue
			}
			if seen[prereq] {
				continue
			}
			seen[prereq] = true
			g.DependsOn[id] = append(g.DependsOn[id], prereq)
			g.Blocks[prereq] = append(g.Blocks[prereq], id)
		}
	}

	return g
}
