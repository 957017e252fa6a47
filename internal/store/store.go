// Package store provides persistence for tracked matches and run history.
package store

import (
	"time"
)

// Status describes where a match sits in its lifecycle.
type Status string

const (
	// StatusFuture means the match has been seen on the results page but
	// no court has been assigned yet.
	StatusFuture Status = "future"

	// StatusAssigned means a court lookup returned a court for the match.
	// The transition is one-way; an assigned match never goes back.
	StatusAssigned Status = "assigned"
)

// Match is one tracked tournament match, keyed by the UUID extracted
// from its results URL.
type Match struct {
	// ID is the match UUID. It is the sole identity key.
	ID string `json:"id"`

	// URL is the results page link for the match, set at creation.
	URL string `json:"url"`

	// FirstSeen is when the match first appeared on the player page.
	FirstSeen time.Time `json:"first_seen"`

	// LastSeen is updated every run the match is observed.
	LastSeen time.Time `json:"last_seen"`

	// LastChecked is when a court lookup was last issued for the match.
	LastChecked time.Time `json:"last_checked,omitempty"`

	// Status is "future" until a court lookup returns a non-empty court.
	Status Status `json:"status"`

	// Court is the assigned court label, set exactly once at the
	// future->assigned transition.
	Court string `json:"court,omitempty"`

	// Completed marks a match the lookup reported as already played.
	Completed bool `json:"completed,omitempty"`

	// Notified guards against duplicate alerts for the same assignment.
	Notified bool `json:"notified"`

	// NotifiedAt is when the notification was dispatched.
	NotifiedAt time.Time `json:"notified_at,omitempty"`
}

// RunRecord summarizes one execution.
type RunRecord struct {
	RunID     string    `json:"run_id"`
	Timestamp time.Time `json:"timestamp"`

	// Observed is how many match ids the page listed this run.
	Observed int `json:"observed"`

	// New counts ids not previously tracked.
	New int `json:"new"`

	// Checked counts court lookups issued this run.
	Checked int `json:"checked"`

	// Assigned counts court assignments discovered this run.
	Assigned int `json:"assigned"`

	// Notified counts notifications dispatched this run.
	Notified int `json:"notified"`

	// Pruned counts tracked ids removed because they left the page.
	Pruned int `json:"pruned"`
}

// State is the full persisted record: tracked matches plus a capped run
// history, most recent last.
type State struct {
	Matches map[string]*Match `json:"matches"`
	History []RunRecord       `json:"history"`
}

// NewState returns an empty but valid state.
func NewState() *State {
	return &State{
		Matches: make(map[string]*Match),
	}
}

// Normalize repairs a freshly loaded state so the rest of the program can
// rely on its invariants: the map is non-nil, legacy status values are
// migrated, and an assigned match always carries a court.
func (s *State) Normalize() {
	if s.Matches == nil {
		s.Matches = make(map[string]*Match)
	}
	for id, m := range s.Matches {
		if m == nil {
			delete(s.Matches, id)
			continue
		}
		if m.ID == "" {
			m.ID = id
		}
		switch m.Status {
		case "current":
			// Pre-rename status value from older store files.
			m.Status = StatusAssigned
		case "unknown", "":
			m.Status = StatusFuture
		}
		if m.Status == StatusAssigned && m.Court == "" {
			// Cannot be assigned without a court; treat as still pending.
			m.Status = StatusFuture
			m.Notified = false
		}
	}
}

// Counts aggregates per-status totals for status output and run records.
type Counts struct {
	Total    int
	Future   int
	Assigned int
	Notified int
}

// Count tallies the tracked matches by status.
func (s *State) Count() Counts {
	c := Counts{Total: len(s.Matches)}
	for _, m := range s.Matches {
		switch m.Status {
		case StatusFuture:
			c.Future++
		case StatusAssigned:
			c.Assigned++
		}
		if m.Notified {
			c.Notified++
		}
	}
	return c
}

// Store defines the interface for persisting tracker state between runs.
type Store interface {
	// Load returns the persisted state. A missing or corrupt state file is
	// not an error: Load returns an empty valid state so a run can always
	// proceed.
	Load() (*State, error)

	// Save atomically persists the state.
	Save(state *State) error

	// Close releases any resources held by the store.
	Close() error
}
