// Package layout computes a layered 2-D layout for a requirement dependency
// graph.
//
// # Overview
//
// The engine is pure and stateless: given a snapshot of requirements and
// their dependency graph it produces node positions, an edge list, and
// per-node readiness annotations, and nothing else. No I/O, no locks, no
// clocks. Identical input (same values, same snapshot order) produces
// identical output, byte for byte once encoded, which lets the serving layer
// diff generations cheaply and the rendering layer animate between them.
//
// # Algorithm
//
// Layers are topological generations found with Kahn's algorithm. The first
// layer holds every requirement with no prerequisites; each later layer holds
// the requirements whose prerequisites are all in earlier layers. When the
// graph contains a cycle the peeling stalls before every node is placed;
// whatever remains (the cycle members and everything downstream of them) is
// collected into one final catch-all layer in snapshot order. Every
// requirement therefore gets exactly one node, placement always terminates,
// and a cyclic input renders instead of crashing. Flagging the cycle as a
// problem is the validator's job, not this package's.
//
// Within a layer, nodes are placed left to right and the layer is centered
// around x = 0:
//
//	layerWidth = n*(w+hs) - hs
//	x = -layerWidth/2 + i*(w+hs)
//	y = layer*(h+vs)
//
// # Edge cases
//
// Dependency entries that reference IDs absent from the snapshot are silently
// dropped, duplicate edges collapse to one, and an empty snapshot produces
// empty (non-nil) node and edge slices. The engine never raises an error and
// never mutates its inputs.
package layout
