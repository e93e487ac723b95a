package requirement

import (
	"reflect"
	"testing"
)

func req(id string, status Status, deps ...string) Requirement {
	return Requirement{
		ID:        id,
		Title:     "Requirement " + id,
		Status:    status,
		DependsOn: deps,
	}
}

func TestNewSnapshot_Order(t *testing.T) {
	snap := NewSnapshot([]Requirement{
		req("req-c", StatusPending),
		req("req-a", StatusDone),
		req("req-b", StatusPending),
	})

	if snap.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", snap.Len())
	}

	want := []string{"req-c", "req-a", "req-b"}
	if got := snap.IDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("IDs() = %v, want %v", got, want)
	}
}

func TestNewSnapshot_DuplicateIDsLastWriteWins(t *testing.T) {
	snap := NewSnapshot([]Requirement{
		{ID: "req-a", Title: "first", Status: StatusPending},
		{ID: "req-b", Title: "other", Status: StatusPending},
		{ID: "req-a", Title: "second", Status: StatusDone},
	})

	if snap.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", snap.Len())
	}

	// Position comes from the first occurrence, value from the last.
	want := []string{"req-a", "req-b"}
	if got := snap.IDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("IDs() = %v, want %v", got, want)
	}

	r, ok := snap.Get("req-a")
	if !ok {
		t.Fatal("Get(req-a) not found")
	}
	if r.Title != "second" || r.Status != StatusDone {
		t.Errorf("Get(req-a) = {%s %s}, want last-written value", r.Title, r.Status)
	}
}

func TestSnapshot_IDsReturnsCopy(t *testing.T) {
	snap := NewSnapshot([]Requirement{req("req-a", StatusPending), req("req-b", StatusPending)})

	ids := snap.IDs()
	ids[0] = "mutated"

	if got := snap.IDs()[0]; got != "req-a" {
		t.Errorf("IDs()[0] = %v after caller mutation, want req-a", got)
	}
}

func TestSnapshot_Get(t *testing.T) {
	snap := NewSnapshot([]Requirement{req("req-a", StatusDone)})

	if _, ok := snap.Get("req-a"); !ok {
		t.Error("Get(req-a) ok = false, want true")
	}
	if _, ok := snap.Get("req-missing"); ok {
		t.Error("Get(req-missing) ok = true, want false")
	}
	if !snap.Contains("req-a") || snap.Contains("req-missing") {
		t.Error("Contains() gave wrong answers")
	}
}

func TestBuildGraph(t *testing.T) {
	tests := []struct {
		name          string
		reqs          []Requirement
		wantDependsOn map[string][]string
		wantBlocks    map[string][]string
	}{
		{
			name: "simple chain",
			reqs: []Requirement{
				req("req-a", StatusDone),
				req("req-b", StatusPending, "req-a"),
				req("req-c", StatusPending, "req-b"),
			},
			wantDependsOn: map[string][]string{
				"req-b": {"req-a"},
				"req-c": {"req-b"},
			},
			wantBlocks: map[string][]string{
				"req-a": {"req-b"},
				"req-b": {"req-c"},
			},
		},
		{
			name: "dangling prereq dropped",
			reqs: []Requirement{
				req("req-a", StatusPending, "req-ghost"),
			},
			wantDependsOn: map[string][]string{},
			wantBlocks:    map[string][]string{},
		},
		{
			name: "duplicate prereqs collapse",
			reqs: []Requirement{
				req("req-a", StatusDone),
				req("req-b", StatusPending, "req-a", "req-a"),
			},
			wantDependsOn: map[string][]string{
				"req-b": {"req-a"},
			},
			wantBlocks: map[string][]string{
				"req-a": {"req-b"},
			},
		},
		{
			name: "self edge kept",
			reqs: []Requirement{
				req("req-a", StatusPending, "req-a"),
			},
			wantDependsOn: map[string][]string{
				"req-a": {"req-a"},
			},
			wantBlocks: map[string][]string{
				"req-a": {"req-a"},
			},
		},
		{
			name: "diamond fan-out order follows snapshot",
			reqs: []Requirement{
				req("req-root", StatusDone),
				req("req-left", StatusPending, "req-root"),
				req("req-right", StatusPending, "req-root"),
				req("req-join", StatusPending, "req-left", "req-right"),
			},
			wantDependsOn: map[string][]string{
				"req-left":  {"req-root"},
				"req-right": {"req-root"},
				"req-join":  {"req-left", "req-right"},
			},
			wantBlocks: map[string][]string{
				"req-root":  {"req-left", "req-right"},
				"req-left":  {"req-join"},
				"req-right": {"req-join"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := BuildGraph(NewSnapshot(tt.reqs))

			if len(g.DependsOn) != len(tt.wantDependsOn) {
				t.Errorf("BuildGraph() DependsOn has %d entries, want %d", len(g.DependsOn), len(tt.wantDependsOn))
			}
			for id, want := range tt.wantDependsOn {
				if got := g.DependsOn[id]; !reflect.DeepEqual(got, want) {
					t.Errorf("DependsOn[%s] = %v, want %v", id, got, want)
				}
			}
			for id, want := range tt.wantBlocks {
				if got := g.Blocks[id]; !reflect.DeepEqual(got, want) {
					t.Errorf("Blocks[%s] = %v, want %v", id, got, want)
				}
			}
		})
	}
}

func TestBuildGraph_DoesNotMutateSnapshot(t *testing.T) {
	reqs := []Requirement{
		req("req-a", StatusDone),
		req("req-b", StatusPending, "req-a", "req-ghost"),
	}
	snap := NewSnapshot(reqs)
	BuildGraph(snap)

	r, _ := snap.Get("req-b")
	if !reflect.DeepEqual(r.DependsOn, []string{"req-a", "req-ghost"}) {
		t.Errorf("snapshot requirement mutated: DependsOn = %v", r.DependsOn)
	}
}
