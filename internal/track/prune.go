package track

import (
	"time"

	"courtwatch/internal/store"
)

// DefaultHistoryCap bounds the run history kept in the store.
const DefaultHistoryCap = 100

// Prune removes tracked matches that are no longer on the page and
// returns how many were dropped.
//
// An assigned, already-notified match gets a short grace window after its
// last sighting: if the page flickers and the id briefly disappears,
// keeping the record (and its notified flag) prevents a duplicate alert
// when it comes back. Beyond the window removal is unconditional.
func Prune(st *store.State, observed []Observation, now time.Time, grace time.Duration) int {
	onPage := make(map[string]bool, len(observed))
	for _, obs := range observed {
		onPage[obs.ID] = true
	}

	pruned := 0
	for id, m := range st.Matches {
		if onPage[id] {
			continue
		}
		if m.Status == store.StatusAssigned && m.Notified && grace > 0 && now.Sub(m.LastSeen) <= grace {
			continue
		}
		delete(st.Matches, id)
		pruned++
	}
	return pruned
}

// TrimHistory appends the current run's record and discards the oldest
// entries beyond cap, most recent kept last.
func TrimHistory(st *store.State, rec store.RunRecord, cap int) {
	if cap <= 0 {
		cap = DefaultHistoryCap
	}
	st.History = append(st.History, rec)
	if len(st.History) > cap {
		st.History = st.History[len(st.History)-cap:]
	}
}
