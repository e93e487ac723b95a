package layout

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/gsdkit/reqgraph/internal/requirement"
)

func req(id string, status requirement.Status, deps ...string) requirement.Requirement {
	return requirement.Requirement{
		ID:        id,
		Title:     "Requirement " + id,
		Status:    status,
		DependsOn: deps,
	}
}

func compute(reqs ...requirement.Requirement) Result {
	snap := requirement.NewSnapshot(reqs)
	return Compute(snap, requirement.BuildGraph(snap), DefaultGeometry())
}

func nodeByID(t *testing.T, r Result, id string) Node {
	t.Helper()
	for _, n := range r.Nodes {
		if n.ID == id {
			return n
		}
	}
	t.Fatalf("node %s not found in result", id)
	return Node{}
}

func TestCompute_EveryRequirementGetsOneNode(t *testing.T) {
	tests := []struct {
		name string
		reqs []requirement.Requirement
	}{
		{
			name: "acyclic chain",
			reqs: []requirement.Requirement{
				req("req-a", requirement.StatusDone),
				req("req-b", requirement.StatusPending, "req-a"),
			},
		},
		{
			name: "two node cycle",
			reqs: []requirement.Requirement{
				req("req-a", requirement.StatusPending, "req-b"),
				req("req-b", requirement.StatusPending, "req-a"),
			},
		},
		{
			name: "dangling references",
			reqs: []requirement.Requirement{
				req("req-a", requirement.StatusPending, "req-ghost", "req-phantom"),
				req("req-b", requirement.StatusPending),
			},
		},
		{
			name: "self dependency",
			reqs: []requirement.Requirement{
				req("req-a", requirement.StatusPending, "req-a"),
			},
		},
		{
			name: "cycle plus downstream",
			reqs: []requirement.Requirement{
				req("req-a", requirement.StatusPending, "req-b"),
				req("req-b", requirement.StatusPending, "req-a"),
				req("req-c", requirement.StatusPending, "req-a"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := compute(tt.reqs...)
			if len(result.Nodes) != len(tt.reqs) {
				t.Errorf("Compute() produced %d nodes, want %d", len(result.Nodes), len(tt.reqs))
			}

			seen := make(map[string]int)
			for _, n := range result.Nodes {
				seen[n.ID]++
			}
			for _, r := range tt.reqs {
				if seen[r.ID] != 1 {
					t.Errorf("requirement %s appears %d times in nodes, want 1", r.ID, seen[r.ID])
				}
			}
		})
	}
}

func TestCompute_EdgeEndpointsExist(t *testing.T) {
	result := compute(
		req("req-a", requirement.StatusDone),
		req("req-b", requirement.StatusPending, "req-a", "req-ghost"),
		req("req-c", requirement.StatusPending, "req-b", "req-missing"),
	)

	ids := map[string]bool{"req-a": true, "req-b": true, "req-c": true}
	for _, e := range result.Edges {
		if !ids[e.From] {
			t.Errorf("edge from %q references a missing requirement", e.From)
		}
		if !ids[e.To] {
			t.Errorf("edge to %q references a missing requirement", e.To)
		}
	}
	if len(result.Edges) != 2 {
		t.Errorf("Compute() produced %d edges, want 2 (dangling refs dropped)", len(result.Edges))
	}
}

func TestCompute_DependentsInLaterLayers(t *testing.T) {
	// Diamond with a tail: root -> {left, right} -> join -> tail.
	result := compute(
		req("req-root", requirement.StatusDone),
		req("req-left", requirement.StatusPending, "req-root"),
		req("req-right", requirement.StatusPending, "req-root"),
		req("req-join", requirement.StatusPending, "req-left", "req-right"),
		req("req-tail", requirement.StatusPending, "req-join"),
	)

	layer := make(map[string]int)
	for _, n := range result.Nodes {
		layer[n.ID] = n.Layer
	}

	for _, e := range result.Edges {
		if layer[e.To] <= layer[e.From] {
			t.Errorf("edge %s -> %s: layer(%s)=%d not greater than layer(%s)=%d",
				e.From, e.To, e.To, layer[e.To], e.From, layer[e.From])
		}
	}

	if layer["req-left"] != layer["req-right"] {
		t.Errorf("left and right layers differ: %d vs %d", layer["req-left"], layer["req-right"])
	}
}

func TestCompute_CycleContained(t *testing.T) {
	// A 2-node cycle buried in an otherwise acyclic set must not hang the
	// computation or drop nodes.
	reqs := []requirement.Requirement{
		req("req-root", requirement.StatusDone),
		req("req-x", requirement.StatusPending, "req-root"),
		req("req-cyc1", requirement.StatusPending, "req-cyc2"),
		req("req-cyc2", requirement.StatusPending, "req-cyc1"),
		req("req-y", requirement.StatusPending, "req-x"),
	}

	done := make(chan Result, 1)
	go func() { done <- compute(reqs...) }()

	var result Result
	select {
	case result = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Compute() did not return within 5s for cyclic input")
	}

	if len(result.Nodes) != 5 {
		t.Fatalf("Compute() produced %d nodes, want 5", len(result.Nodes))
	}

	cyc1 := nodeByID(t, result, "req-cyc1")
	cyc2 := nodeByID(t, result, "req-cyc2")

	// Cycle members share the final catch-all layer.
	maxLayer := 0
	for _, n := range result.Nodes {
		if n.Layer > maxLayer {
			maxLayer = n.Layer
		}
	}
	if cyc1.Layer != maxLayer || cyc2.Layer != maxLayer {
		t.Errorf("cycle members in layers %d and %d, want both in final layer %d",
			cyc1.Layer, cyc2.Layer, maxLayer)
	}
}

func TestCompute_DownstreamOfCycleContained(t *testing.T) {
	// req-c is acyclic itself but only reachable through the cycle, so it can
	// never be peeled and lands in the catch-all layer too.
	result := compute(
		req("req-a", requirement.StatusPending, "req-b"),
		req("req-b", requirement.StatusPending, "req-a"),
		req("req-c", requirement.StatusPending, "req-a"),
	)

	if len(result.Nodes) != 3 {
		t.Fatalf("Compute() produced %d nodes, want 3", len(result.Nodes))
	}
	for _, id := range []string{"req-a", "req-b", "req-c"} {
		if n := nodeByID(t, result, id); n.Layer != 0 {
			t.Errorf("node %s in layer %d, want 0 (single catch-all layer)", id, n.Layer)
		}
	}

	// Snapshot order holds inside the catch-all layer.
	wantIdx := map[string]int{"req-a": 0, "req-b": 1, "req-c": 2}
	for id, want := range wantIdx {
		if n := nodeByID(t, result, id); n.IndexInLayer != want {
			t.Errorf("node %s IndexInLayer = %d, want %d", id, n.IndexInLayer, want)
		}
	}
}

func TestCompute_Deterministic(t *testing.T) {
	build := func() Result {
		// Fresh values every call; determinism must not rely on shared
		// references.
		return compute(
			req("req-root", requirement.StatusDone),
			req("req-a", requirement.StatusPending, "req-root"),
			req("req-b", requirement.StatusBlocked, "req-root"),
			req("req-c", requirement.StatusPending, "req-a", "req-b"),
			req("req-cyc1", requirement.StatusPending, "req-cyc2"),
			req("req-cyc2", requirement.StatusPending, "req-cyc1"),
		)
	}

	first := build()
	second := build()

	if !reflect.DeepEqual(first, second) {
		t.Error("Compute() results differ across identical inputs")
	}

	// Byte-level check too, since the serving layer diffs encoded output.
	a, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	b, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(a) != string(b) {
		t.Errorf("encoded layouts differ:\n%s\n%s", a, b)
	}
}

func TestCompute_ReadinessDerivation(t *testing.T) {
	tests := []struct {
		name        string
		depStatus   requirement.Status
		wantReady   bool
		wantBlocked bool
	}{
		{name: "dependency done", depStatus: requirement.StatusDone, wantReady: true, wantBlocked: false},
		{name: "dependency pending", depStatus: requirement.StatusPending, wantReady: false, wantBlocked: true},
		{name: "dependency in progress", depStatus: requirement.StatusInProgress, wantReady: false, wantBlocked: true},
		{name: "dependency blocked", depStatus: requirement.StatusBlocked, wantReady: false, wantBlocked: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := compute(
				req("req-y", tt.depStatus),
				req("req-x", requirement.StatusPending, "req-y"),
			)

			x := nodeByID(t, result, "req-x")
			if x.IsReady != tt.wantReady {
				t.Errorf("IsReady = %v, want %v", x.IsReady, tt.wantReady)
			}
			if x.IsBlocked != tt.wantBlocked {
				t.Errorf("IsBlocked = %v, want %v", x.IsBlocked, tt.wantBlocked)
			}
			if x.IsReady && x.IsBlocked {
				t.Error("node is both ready and blocked")
			}
		})
	}
}

func TestCompute_InProgressNeverReady(t *testing.T) {
	result := compute(
		req("req-a", requirement.StatusDone),
		req("req-b", requirement.StatusInProgress, "req-a"),
		req("req-c", requirement.StatusDone, "req-a"),
	)

	for _, id := range []string{"req-b", "req-c"} {
		if n := nodeByID(t, result, id); n.IsReady {
			t.Errorf("node %s IsReady = true, want false (readiness applies to pending only)", id)
		}
	}
}

func TestCompute_EmptyInput(t *testing.T) {
	result := Compute(requirement.NewSnapshot(nil), &requirement.Graph{}, DefaultGeometry())

	if result.Nodes == nil || len(result.Nodes) != 0 {
		t.Errorf("Compute() Nodes = %v, want empty non-nil slice", result.Nodes)
	}
	if result.Edges == nil || len(result.Edges) != 0 {
		t.Errorf("Compute() Edges = %v, want empty non-nil slice", result.Edges)
	}

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"nodes":[],"edges":[]}` {
		t.Errorf("encoded empty layout = %s, want {\"nodes\":[],\"edges\":[]}", data)
	}
}

func TestCompute_NilGraph(t *testing.T) {
	snap := requirement.NewSnapshot([]requirement.Requirement{req("req-a", requirement.StatusPending)})
	result := Compute(snap, nil, DefaultGeometry())

	if len(result.Nodes) != 1 {
		t.Fatalf("Compute() produced %d nodes, want 1", len(result.Nodes))
	}
	if len(result.Edges) != 0 {
		t.Errorf("Compute() produced %d edges, want 0", len(result.Edges))
	}
}

func TestCompute_ChainScenario(t *testing.T) {
	// A done, B pending on A, C pending on B.
	result := compute(
		req("req-a", requirement.StatusDone),
		req("req-b", requirement.StatusPending, "req-a"),
		req("req-c", requirement.StatusPending, "req-b"),
	)

	a := nodeByID(t, result, "req-a")
	b := nodeByID(t, result, "req-b")
	c := nodeByID(t, result, "req-c")

	if a.Layer != 0 || b.Layer != 1 || c.Layer != 2 {
		t.Errorf("layers = %d/%d/%d, want 0/1/2", a.Layer, b.Layer, c.Layer)
	}

	wantEdges := []Edge{
		{From: "req-a", To: "req-b"},
		{From: "req-b", To: "req-c"},
	}
	if !reflect.DeepEqual(result.Edges, wantEdges) {
		t.Errorf("Edges = %v, want %v", result.Edges, wantEdges)
	}

	if !b.IsReady || b.IsBlocked {
		t.Errorf("req-b IsReady/IsBlocked = %v/%v, want true/false", b.IsReady, b.IsBlocked)
	}
	if c.IsReady || !c.IsBlocked {
		t.Errorf("req-c IsReady/IsBlocked = %v/%v, want false/true", c.IsReady, c.IsBlocked)
	}

	if !reflect.DeepEqual(c.BlockedBy, []string{"req-b"}) {
		t.Errorf("req-c BlockedBy = %v, want [req-b]", c.BlockedBy)
	}
	if !reflect.DeepEqual(a.Blocks, []string{"req-b"}) {
		t.Errorf("req-a Blocks = %v, want [req-b]", a.Blocks)
	}
}

func TestCompute_Geometry(t *testing.T) {
	geo := DefaultGeometry()
	result := compute(
		req("req-a", requirement.StatusPending),
		req("req-b", requirement.StatusPending),
		req("req-c", requirement.StatusPending, "req-a"),
	)

	// Layer 0 holds req-a and req-b: width = 2*(220+60)-60 = 500.
	a := nodeByID(t, result, "req-a")
	b := nodeByID(t, result, "req-b")
	c := nodeByID(t, result, "req-c")

	if a.Position.X != -250 || a.Position.Y != 0 {
		t.Errorf("req-a position = (%v,%v), want (-250,0)", a.Position.X, a.Position.Y)
	}
	if b.Position.X != -250+geo.NodeWidth+geo.HSpacing || b.Position.Y != 0 {
		t.Errorf("req-b position = (%v,%v), want (30,0)", b.Position.X, b.Position.Y)
	}

	// Layer 1 holds req-c alone: width = 220, x = -110, y = 90+70.
	if c.Position.X != -110 || c.Position.Y != geo.NodeHeight+geo.VSpacing {
		t.Errorf("req-c position = (%v,%v), want (-110,160)", c.Position.X, c.Position.Y)
	}
}

func TestCompute_AnimatedEdges(t *testing.T) {
	result := compute(
		req("req-a", requirement.StatusInProgress),
		req("req-b", requirement.StatusBlocked, "req-a"),
		req("req-c", requirement.StatusPending, "req-a"),
	)

	for _, e := range result.Edges {
		switch e.To {
		case "req-b":
			if !e.Animated {
				t.Errorf("edge to blocked requirement %s not animated", e.To)
			}
		case "req-c":
			if e.Animated {
				t.Errorf("edge to pending requirement %s animated", e.To)
			}
		}
	}
}

func TestCompute_DuplicateDependenciesCollapse(t *testing.T) {
	// Duplicate entries in dependsOn collapse to one counted edge, keeping
	// edge list and blockedBy free of repeats.
	snap := requirement.NewSnapshot([]requirement.Requirement{
		req("req-a", requirement.StatusDone),
		req("req-b", requirement.StatusPending, "req-a", "req-a", "req-a"),
	})
	g := &requirement.Graph{
		DependsOn: map[string][]string{"req-b": {"req-a", "req-a", "req-a"}},
	}
	result := Compute(snap, g, DefaultGeometry())

	if len(result.Edges) != 1 {
		t.Errorf("Compute() produced %d edges, want 1", len(result.Edges))
	}
	b := nodeByID(t, result, "req-b")
	if b.Layer != 1 {
		t.Errorf("req-b layer = %d, want 1", b.Layer)
	}
	if !reflect.DeepEqual(b.BlockedBy, []string{"req-a"}) {
		t.Errorf("req-b BlockedBy = %v, want [req-a]", b.BlockedBy)
	}
}

func TestCompute_IgnoresCallerBlocksMap(t *testing.T) {
	// A stale or contradictory caller-supplied inverse map must not leak into
	// the output; blocks is always recomputed from dependsOn.
	snap := requirement.NewSnapshot([]requirement.Requirement{
		req("req-a", requirement.StatusDone),
		req("req-b", requirement.StatusPending, "req-a"),
	})
	g := &requirement.Graph{
		DependsOn: map[string][]string{"req-b": {"req-a"}},
		Blocks:    map[string][]string{"req-b": {"req-a"}}, // wrong direction on purpose
	}
	result := Compute(snap, g, DefaultGeometry())

	a := nodeByID(t, result, "req-a")
	b := nodeByID(t, result, "req-b")
	if !reflect.DeepEqual(a.Blocks, []string{"req-b"}) {
		t.Errorf("req-a Blocks = %v, want [req-b]", a.Blocks)
	}
	if len(b.Blocks) != 0 {
		t.Errorf("req-b Blocks = %v, want empty", b.Blocks)
	}
}

func TestCompute_DoesNotMutateInputs(t *testing.T) {
	reqs := []requirement.Requirement{
		req("req-a", requirement.StatusDone),
		req("req-b", requirement.StatusPending, "req-a"),
	}
	snap := requirement.NewSnapshot(reqs)
	g := requirement.BuildGraph(snap)

	before, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	Compute(snap, g, DefaultGeometry())

	after, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(before) != string(after) {
		t.Errorf("Compute() mutated the input graph:\nbefore %s\nafter  %s", before, after)
	}
}
