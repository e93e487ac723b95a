package layout

import (
	"github.com/gsdkit/reqgraph/internal/requirement"
)

// Geometry holds the pixel constants that turn layer/index placement into
// node positions. Values are pixels in the rendering layer's coordinate
// space.
type Geometry struct {
	NodeWidth  float64 `json:"nodeWidth"`
	NodeHeight float64 `json:"nodeHeight"`
	HSpacing   float64 `json:"hSpacing"`
	VSpacing   float64 `json:"vSpacing"`
}

// DefaultGeometry returns the standard node card dimensions and spacing.
func DefaultGeometry() Geometry {
	return Geometry{
		NodeWidth:  220,
		NodeHeight: 90,
		HSpacing:   60,
		VSpacing:   70,
	}
}

// Position is a node's pixel position. Layers are centered around x = 0 and
// stack downward with increasing y.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is one placed requirement. ID is the requirement ID and is stable
// across recomputations, so the rendering layer can diff successive layouts
// on it. IsReady and IsBlocked are derived for display; the stored
// requirement status is never modified.
type Node struct {
	ID           string   `json:"id"`
	Layer        int      `json:"layer"`
	IndexInLayer int      `json:"indexInLayer"`
	Position     Position `json:"position"`
	IsReady      bool     `json:"isReady"`
	IsBlocked    bool     `json:"isBlocked"`
	BlockedBy    []string `json:"blockedBy"`
	Blocks       []string `json:"blocks"`
}

// Edge is one dependency arrow. To depends on From. Animated is true when
// the dependent requirement's stored status is blocked, which the rendering
// layer shows as a flowing edge.
type Edge struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Animated bool   `json:"animated"`
}

// Result is a complete computed layout. Nodes and Edges are never nil; an
// empty snapshot yields empty slices so the encoded form is always
// {"nodes":[],"edges":[]} rather than nulls.
type Result struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Compute lays out the snapshot's requirements using the dependency edges in
// g. Only g.DependsOn is consulted; inverse (blocks) edges are recomputed
// here by inversion so a stale precomputed inverse can never skew the
// output.
//
// Every requirement in the snapshot produces exactly one node, including
// requirements trapped in dependency cycles, which land together in one
// trailing layer. Dependency entries naming IDs absent from the snapshot are
// ignored. Compute never fails and never mutates snap or g.
func Compute(snap *requirement.Snapshot, g *requirement.Graph, geo Geometry) Result {
	result := Result{
		Nodes: []Node{},
		Edges: []Edge{},
	}
	if snap == nil || snap.Len() == 0 {
		return result
	}

	ids := snap.IDs()

	// Forward adjacency prereq -> dependents, in-degree per dependent, and
	// the filtered prereq list per dependent. Iteration follows snapshot
	// order throughout so the result is deterministic.
	adj := make(map[string][]string, len(ids))
	inDegree := make(map[string]int, len(ids))
	prereqs := make(map[string][]string)
	for _, id := range ids {
		inDegree[id] = 0
	}

	if g != nil {
		for _, dependent := range ids {
			declared := g.DependsOn[dependent]
			if len(declared) == 0 {
				continue
			}
			seen := make(map[string]bool, len(declared))
			for _, prereq := range declared {
				if !snap.Contains(prereq) || seen[prereq] {
					continue
				}
				seen[prereq] = true
				adj[prereq] = append(adj[prereq], dependent)
				prereqs[dependent] = append(prereqs[dependent], prereq)
				inDegree[dependent]++
			}
		}
	}

	// Kahn peeling: each pass records the current frontier as one layer and
	// seeds the next frontier with nodes whose last prerequisite was just
	// placed.
	var layers [][]string
	visited := make(map[string]bool, len(ids))

	frontier := make([]string, 0, len(ids))
	for _, id := range ids {
		if inDegree[id] == 0 {
			frontier = append(frontier, id)
			visited[id] = true
		}
	}

	for len(frontier) > 0 {
		layers = append(layers, frontier)

		var next []string
		for _, id := range frontier {
			for _, dependent := range adj[id] {
				inDegree[dependent]--
				if inDegree[dependent] == 0 && !visited[dependent] {
					visited[dependent] = true
					next = append(next, dependent)
				}
			}
		}
		frontier = next
	}

	// Anything never visited sits on a cycle or behind one. One extra layer
	// catches them all, in snapshot order, so cyclic input still renders
	// every node.
	var leftover []string
	for _, id := range ids {
		if !visited[id] {
			leftover = append(leftover, id)
		}
	}
	if len(leftover) > 0 {
		layers = append(layers, leftover)
	}

	for layerIdx, layer := range layers {
		layerWidth := float64(len(layer))*(geo.NodeWidth+geo.HSpacing) - geo.HSpacing
		for i, id := range layer {
			r, _ := snap.Get(id)

			blockedBy := prereqs[id]
			isBlocked := false
			for _, dep := range blockedBy {
				if d, ok := snap.Get(dep); ok && d.Status != requirement.StatusDone {
					isBlocked = true
					break
				}
			}
			isReady := !isBlocked && r.Status == requirement.StatusPending

			node := Node{
				ID:           id,
				Layer:        layerIdx,
				IndexInLayer: i,
				Position: Position{
					X: -layerWidth/2 + float64(i)*(geo.NodeWidth+geo.HSpacing),
					Y: float64(layerIdx) * (geo.NodeHeight + geo.VSpacing),
				},
				IsReady:   isReady,
				IsBlocked: isBlocked,
				BlockedBy: append([]string{}, blockedBy...),
				Blocks:    []string{},
			}
			result.Nodes = append(result.Nodes, node)
		}
	}

	// Inverse edges and the edge list come from the same validated pairs as
	// the adjacency build, dependent-major in snapshot order.
	nodeIdx := make(map[string]int, len(result.Nodes))
	for i, n := range result.Nodes {
		nodeIdx[n.ID] = i
	}
	for _, dependent := range ids {
		r, _ := snap.Get(dependent)
		for _, prereq := range prereqs[dependent] {
			i := nodeIdx[prereq]
			result.Nodes[i].Blocks = append(result.Nodes[i].Blocks, dependent)
			result.Edges = append(result.Edges, Edge{
				From:     prereq,
				To:       dependent,
				Animated: r.Status == requirement.StatusBlocked,
			})
		}
	}

	return result
}
