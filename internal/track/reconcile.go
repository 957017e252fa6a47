// Package track holds the match-status state machine: how observed ids
// move between "seen, no court yet" and "court assigned", when that
// transition fires a notification, and how the store is kept bounded.
package track

import (
	"time"

	"courtwatch/internal/store"
)

// Observation is one match id found on the player page this run, with
// the link it was extracted from. Order matters: events are emitted in
// observation order so notification ordering is stable.
type Observation struct {
	ID  string
	URL string
}

// Assignment is the distilled outcome of a court lookup.
type Assignment struct {
	// Court is the assigned court label, empty if none yet.
	Court string

	// Completed marks a match already played. A completed match is
	// recorded but never notified.
	Completed bool
}

// Event is a notification to dispatch: a match just moved to assigned.
type Event struct {
	ID    string
	URL   string
	Court string
}

// Result summarizes one reconciliation pass.
type Result struct {
	Events   []Event
	New      int
	Assigned int
}

// Eligible returns the observed ids that need a court lookup this run,
// in observation order: ids not yet tracked (created as future during
// reconciliation) and tracked ids still awaiting a court. Ids already
// assigned are excluded: their court is immutable once set, so
// re-checking them is wasted traffic.
func Eligible(st *store.State, observed []Observation) []string {
	var ids []string
	for _, obs := range observed {
		m, ok := st.Matches[obs.ID]
		if !ok || m.Status == store.StatusFuture {
			ids = append(ids, obs.ID)
		}
	}
	return ids
}

// Reconcile applies one run's observations and court-lookup results to
// the state and returns the notification events to emit.
//
// New ids are created as future. An id whose lookup returned a court
// moves to assigned exactly once and emits exactly one event over its
// lifetime; an id with no lookup result (no court yet, lookup failed, or
// lookup skipped) is left untouched and retried next run. last_seen is
// updated for every observed id regardless.
//
// Lookups that failed simply have no entry in lookups, so a transient
// lookup error can never corrupt state or fire an event.
func Reconcile(st *store.State, observed []Observation, lookups map[string]Assignment, now time.Time) Result {
	var res Result

	for _, obs := range observed {
		m, ok := st.Matches[obs.ID]
		if !ok {
			m = &store.Match{
				ID:        obs.ID,
				URL:       obs.URL,
				FirstSeen: now,
				Status:    store.StatusFuture,
			}
			st.Matches[obs.ID] = m
			res.New++
		}
		m.LastSeen = now

		a, checked := lookups[obs.ID]
		if !checked {
			continue
		}
		m.LastChecked = now

		if a.Completed {
			m.Completed = true
		}

		if a.Court == "" || m.Status != store.StatusFuture {
			// No court yet, or already assigned on a previous run.
			continue
		}

		m.Status = store.StatusAssigned
		m.Court = a.Court
		res.Assigned++

		if m.Notified || m.Completed {
			// Already alerted, or the match is over; nothing to announce.
			continue
		}
		res.Events = append(res.Events, Event{ID: m.ID, URL: m.URL, Court: m.Court})
	}

	return res
}

// MarkNotified flips the dedup flag for an id after a notification was
// attempted. Dispatch failures do not reset it: the bias is at-most-once
// delivery, never a duplicate alert.
func MarkNotified(st *store.State, id string, now time.Time) {
	m, ok := st.Matches[id]
	if !ok {
		return
	}
	m.Notified = true
	m.NotifiedAt = now
}
