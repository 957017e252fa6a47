package track

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courtwatch/internal/store"
)

var (
	idA = "aaaaaaaa-1111-2222-3333-444444444444"
	idB = "bbbbbbbb-1111-2222-3333-444444444444"
	idC = "cccccccc-1111-2222-3333-444444444444"
	idD = "dddddddd-1111-2222-3333-444444444444"
)

func obs(ids ...string) []Observation {
	out := make([]Observation, 0, len(ids))
	for _, id := range ids {
		out = append(out, Observation{ID: id, URL: "https://pickleball.com/results/match/" + id})
	}
	return out
}

func TestReconcile_NewMatchesStartFuture(t *testing.T) {
	st := store.NewState()
	now := time.Now().UTC()

	res := Reconcile(st, obs(idA, idB), nil, now)

	assert.Equal(t, 2, res.New)
	assert.Empty(t, res.Events)
	for _, id := range []string{idA, idB} {
		m := st.Matches[id]
		require.NotNil(t, m)
		assert.Equal(t, store.StatusFuture, m.Status)
		assert.Equal(t, now, m.FirstSeen)
		assert.Equal(t, now, m.LastSeen)
		assert.False(t, m.Notified)
	}
}

func TestReconcile_AssignmentEmitsSingleEvent(t *testing.T) {
	// Prior state has A as future; lookup returns SC5 for A and nothing
	// for the two new ids.
	st := store.NewState()
	now := time.Now().UTC()
	Reconcile(st, obs(idA), nil, now.Add(-time.Minute))

	lookups := map[string]Assignment{
		idA: {Court: "SC5"},
		idB: {},
		idC: {},
	}
	res := Reconcile(st, obs(idA, idB, idC), lookups, now)

	require.Len(t, res.Events, 1)
	assert.Equal(t, idA, res.Events[0].ID)
	assert.Equal(t, "SC5", res.Events[0].Court)
	assert.Equal(t, 1, res.Assigned)
	assert.Equal(t, 2, res.New)

	a := st.Matches[idA]
	assert.Equal(t, store.StatusAssigned, a.Status)
	assert.Equal(t, "SC5", a.Court)
	assert.Equal(t, store.StatusFuture, st.Matches[idB].Status)
	assert.Equal(t, store.StatusFuture, st.Matches[idC].Status)
}

func TestReconcile_AssignedNeverReverts(t *testing.T) {
	st := store.NewState()
	base := time.Now().UTC().Add(-time.Hour)
	Reconcile(st, obs(idA), map[string]Assignment{idA: {Court: "SC5"}}, base)
	MarkNotified(st, idA, base)

	// Repeat run observing A with lookup skipped (A is no longer
	// eligible): no event, state unchanged except last_seen.
	later := base.Add(time.Minute)
	res := Reconcile(st, obs(idA), nil, later)

	assert.Empty(t, res.Events)
	m := st.Matches[idA]
	assert.Equal(t, store.StatusAssigned, m.Status)
	assert.Equal(t, "SC5", m.Court)
	assert.True(t, m.Notified)
	assert.Equal(t, later, m.LastSeen)
	assert.Equal(t, base, m.FirstSeen)
}

func TestReconcile_NoDuplicateEventAcrossRuns(t *testing.T) {
	st := store.NewState()
	now := time.Now().UTC()
	lookups := map[string]Assignment{idA: {Court: "GS"}}

	res1 := Reconcile(st, obs(idA), lookups, now)
	require.Len(t, res1.Events, 1)
	MarkNotified(st, idA, now)

	// Identical lookup results on a later run must not re-notify, even
	// if the map still carries the assignment.
	res2 := Reconcile(st, obs(idA), lookups, now.Add(time.Minute))
	assert.Empty(t, res2.Events)
	assert.Equal(t, 0, res2.Assigned)
}

func TestReconcile_LookupFailureLeavesEligible(t *testing.T) {
	st := store.NewState()
	now := time.Now().UTC()

	// D's lookup failed: no entry in the map at all.
	res := Reconcile(st, obs(idD), map[string]Assignment{}, now)

	assert.Empty(t, res.Events)
	m := st.Matches[idD]
	assert.Equal(t, store.StatusFuture, m.Status)
	assert.True(t, m.LastChecked.IsZero())
	assert.Equal(t, []string{idD}, Eligible(st, obs(idD)))
}

func TestReconcile_EventsFollowObservationOrder(t *testing.T) {
	st := store.NewState()
	now := time.Now().UTC()
	lookups := map[string]Assignment{
		idA: {Court: "SC1"},
		idB: {Court: "SC2"},
		idC: {Court: "SC3"},
	}

	res := Reconcile(st, obs(idC, idA, idB), lookups, now)

	require.Len(t, res.Events, 3)
	assert.Equal(t, idC, res.Events[0].ID)
	assert.Equal(t, idA, res.Events[1].ID)
	assert.Equal(t, idB, res.Events[2].ID)
}

func TestReconcile_CompletedMatchNeverNotifies(t *testing.T) {
	st := store.NewState()
	now := time.Now().UTC()
	lookups := map[string]Assignment{idA: {Court: "CC", Completed: true}}

	res := Reconcile(st, obs(idA), lookups, now)

	assert.Empty(t, res.Events)
	m := st.Matches[idA]
	assert.Equal(t, store.StatusAssigned, m.Status)
	assert.Equal(t, "CC", m.Court)
	assert.True(t, m.Completed)
}

func TestEligible(t *testing.T) {
	st := store.NewState()
	now := time.Now().UTC()
	Reconcile(st, obs(idA, idB), map[string]Assignment{idA: {Court: "SC5"}}, now)

	// A is assigned (ineligible), B is still future, C is brand new.
	got := Eligible(st, obs(idA, idB, idC))
	assert.Equal(t, []string{idB, idC}, got)
}

func TestMarkNotified_UnknownIDIsNoop(t *testing.T) {
	st := store.NewState()
	MarkNotified(st, idA, time.Now())
	assert.Empty(t, st.Matches)
}
