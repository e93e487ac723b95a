// Package store holds the current requirement snapshot and everything
// derived from it.
//
// The external planning store owns the requirement files; this package owns
// the in-process view of them. Every Replace recomputes the dependency
// graph, validation result, layout, and aggregate stats in one step, bumps a
// generation counter, and fans the new state out to subscribers. The layout
// engine stays pure; the store is the component that calls it.
package store

import (
	"sync"
	"time"

	"github.com/gsdkit/reqgraph/internal/layout"
	"github.com/gsdkit/reqgraph/internal/requirement"
	"github.com/gsdkit/reqgraph/internal/validate"
)

// subscriberBuffer is the per-subscriber channel capacity. A subscriber that
// falls further behind than this starts losing intermediate states; it always
// sees the newest state eventually because later sends follow.
const subscriberBuffer = 16

// Stats aggregates the snapshot for dashboards and the stats line.
type Stats struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"byStatus"`
	Ready    int            `json:"ready"`
	Blocked  int            `json:"blocked"`
}

// State is one derived generation: the layout, validation outcome, and stats
// for a single snapshot. Generation increases by one per Replace, so
// consumers can discard stale updates after a reconnect. ComputeDuration is
// how long the layout pass took, in nanoseconds on the wire.
type State struct {
	Generation      uint64          `json:"generation"`
	Layout          layout.Result   `json:"layout"`
	Validation      validate.Result `json:"validation"`
	Stats           Stats           `json:"stats"`
	ComputeDuration time.Duration   `json:"computeDuration"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Store is the owning component for snapshot state. Safe for concurrent use;
// Replace is the only mutation.
type Store struct {
	mu     sync.RWMutex
	geo    layout.Geometry
	snap   *requirement.Snapshot
	state  State
	subs   map[int]chan State
	nextID int
	closed bool
}

// New creates a Store with an empty snapshot at generation zero.
func New(geo layout.Geometry) *Store {
	s := &Store{
		geo:  geo,
		snap: requirement.NewSnapshot(nil),
		subs: make(map[int]chan State),
	}
	s.state = derive(0, s.snap, geo, time.Time{})
	return s
}

// Replace swaps in a new snapshot, recomputes all derived state, and
// notifies subscribers. Subscribers that cannot keep up are skipped, never
// waited on.
func (s *Store) Replace(snap *requirement.Snapshot) State {
	if snap == nil {
		snap = requirement.NewSnapshot(nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.state
	}

	s.snap = snap
	s.state = derive(s.state.Generation+1, snap, s.geo, time.Now())

	for _, ch := range s.subs {
		select {
		case ch <- s.state:
		default:
		}
	}

	return s.state
}

// State returns the current derived state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Snapshot returns the current snapshot.
func (s *Store) Snapshot() *requirement.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Requirement returns one requirement from the current snapshot by ID.
func (s *Store) Requirement(id string) (*requirement.Requirement, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.snap.Get(id)
	if !ok {
		return nil, false
	}
	return &r, true
}

// Subscribe registers for state updates. The returned channel receives every
// state the subscriber keeps up with, newest last. The cancel function
// unregisters and closes the channel; it is safe to call more than once.
func (s *Store) Subscribe() (<-chan State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan State, subscriberBuffer)
	if s.closed {
		close(ch)
		return ch, func() {}
	}

	id := s.nextID
	s.nextID++
	s.subs[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Close shuts the store down and closes all subscriber channels. Replace
// becomes a no-op afterwards.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

// derive computes the full derived state for a snapshot.
func derive(gen uint64, snap *requirement.Snapshot, geo layout.Geometry, at time.Time) State {
	g := requirement.BuildGraph(snap)

	start := time.Now()
	result := layout.Compute(snap, g, geo)
	elapsed := time.Since(start)

	stats := Stats{
		Total:    snap.Len(),
		ByStatus: make(map[string]int),
	}
	for _, id := range snap.IDs() {
		r, _ := snap.Get(id)
		stats.ByStatus[string(r.Status)]++
	}
	for _, n := range result.Nodes {
		if n.IsReady {
			stats.Ready++
		}
		if n.IsBlocked {
			stats.Blocked++
		}
	}

	return State{
		Generation:      gen,
		Layout:          result,
		Validation:      validate.Check(snap, g),
		Stats:           stats,
		ComputeDuration: elapsed,
		UpdatedAt:       at,
	}
}
